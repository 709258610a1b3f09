// Package ocr turns prescription photographs into medication entries. Text
// extraction is delegated to an external OCR engine; this package only knows
// how to call it and how to read the lines it returns.
package ocr

import (
	"context"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Skufu/MedValidator/internal/prescription"
)

// Extractor returns the raw text found in an image.
type Extractor interface {
	Extract(ctx context.Context, image io.Reader) (string, error)
}

// Medicine is a single line read from OCR output.
type Medicine struct {
	Name   string `json:"name"`
	Dosage int    `json:"dosage"`
	Unit   string `json:"unit"`
}

const defaultUnit = "mg"

var linePattern = regexp.MustCompile(`(?i)([a-z]+)\s*(\d+)\s*(mg|ml|g)?`)

// ParseLines reads at most one medicine per line. Lines without a
// "<name> <number>" shape are dropped.
func ParseLines(text string) []Medicine {
	// Casers keep state, so each call gets its own.
	caser := cases.Title(language.Und)
	medicines := []Medicine{}
	for _, line := range strings.Split(text, "\n") {
		m := linePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		dosage, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		unit := strings.ToLower(m[3])
		if unit == "" {
			unit = defaultUnit
		}
		medicines = append(medicines, Medicine{
			Name:   caser.String(m[1]),
			Dosage: dosage,
			Unit:   unit,
		})
	}
	return medicines
}

// ToEntries converts OCR medicines to entries the validator accepts.
// Frequency and duration are never present in OCR output.
func ToEntries(medicines []Medicine) []prescription.MedicationEntry {
	entries := make([]prescription.MedicationEntry, 0, len(medicines))
	for _, m := range medicines {
		entries = append(entries, prescription.MedicationEntry{
			Medication: m.Name,
			Dosage:     strconv.Itoa(m.Dosage) + m.Unit,
		})
	}
	return entries
}
