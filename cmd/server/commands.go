package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Skufu/MedValidator/internal/prescription"
)

func parseCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "parse [text]",
		Short: "Parse free-text prescriptions into structured entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args, file)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), prescription.Parse(text))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read prescription text from file ('-' for stdin)")
	return cmd
}

func validateCmd() *cobra.Command {
	var (
		file      string
		diagnosis string
		patient   prescription.PatientInfo
	)
	cmd := &cobra.Command{
		Use:   "validate [text]",
		Short: "Validate free-text prescriptions against a diagnosis and patient",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args, file)
			if err != nil {
				return err
			}
			report := prescription.Validate(diagnosis, patient, prescription.Parse(text))
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read prescription text from file ('-' for stdin)")
	cmd.Flags().StringVar(&diagnosis, "diagnosis", "", "medical diagnosis")
	cmd.Flags().StringVar(&patient.Age, "age", "", "patient age in years")
	cmd.Flags().StringVar(&patient.Weight, "weight", "", "patient weight in kg")
	cmd.Flags().StringVar(&patient.Allergies, "allergies", "", "known allergies")
	cmd.Flags().StringVar(&patient.Conditions, "conditions", "", "medical conditions")
	return cmd
}

func rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List validation rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for i, rule := range prescription.Rules() {
				if _, err := fmt.Fprintf(out, "%d. %-30s %-7s %s\n", i+1, rule.ID, rule.Effect, rule.Message); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func readText(cmd *cobra.Command, args []string, file string) (string, error) {
	switch {
	case len(args) == 1 && file != "":
		return "", fmt.Errorf("pass text as an argument or with --file, not both")
	case len(args) == 1:
		return args[0], nil
	case file == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("no prescription text given")
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
