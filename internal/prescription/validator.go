package prescription

import (
	"fmt"
	"strconv"
	"strings"
)

const approvedMessage = "Prescription appears appropriate for the given diagnosis"

var (
	antibioticTerms = []string{"antibiotic", "amoxicillin", "penicillin"}
	recommendations = []string{
		"Verify patient allergies before dispensing",
		"Monitor patient for adverse reactions",
		"Ensure proper patient education on medication usage",
		"Schedule appropriate follow-up appointments",
	}
	ruleDB = []Rule{
		{ID: "missing-name", Effect: EffectReject, Message: "Medication name is required", Match: missingName},
		{ID: "missing-dosage", Effect: EffectReject, Message: "Dosage is required", Match: missingDosage},
		{ID: "penicillin-allergy", Effect: EffectReject, Message: "ALLERGY ALERT: Patient is allergic to penicillin", Match: penicillinAllergy},
		{ID: "aspirin-under-16", Effect: EffectWarn, Message: "AGE WARNING: Aspirin not recommended for patients under 16", Match: aspirinUnder16},
		{ID: "ibuprofen-frequency", Effect: EffectWarn, Message: "DOSAGE WARNING: High frequency for ibuprofen, monitor for GI effects", Match: ibuprofenFrequency},
		{ID: "infection-without-antibiotic", Effect: EffectWarn, Message: "INFO: Consider antibiotic for bacterial infection", Match: infectionWithoutAntibiotic},
	}
)

type Effect string

const (
	// EffectReject forces the item to rejected.
	EffectReject Effect = "reject"
	// EffectWarn raises the item to warning unless it is already worse.
	EffectWarn Effect = "warn"
)

// Rule is one row of the validation table. Rules run in table order for each
// medication and every matching rule contributes its message.
type Rule struct {
	ID      string
	Effect  Effect
	Message string
	Match   func(RuleInput) bool
}

// RuleInput is the normalized view a rule sees for a single medication.
type RuleInput struct {
	Medication string
	Dosage     string
	Frequency  string
	Diagnosis  string
	Allergies  string
	Age        int
	AgeKnown   bool
}

// Rules returns the validation table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(ruleDB))
	copy(out, ruleDB)
	return out
}

// Recommendations returns the general advice attached to every report.
func Recommendations() []string {
	out := make([]string, len(recommendations))
	copy(out, recommendations)
	return out
}

// Validate checks each medication against the patient and diagnosis. It never
// fails: missing or malformed input becomes an item-level issue.
func Validate(diagnosis string, patient PatientInfo, meds []MedicationEntry) ValidationReport {
	age, ageKnown := parseAge(patient.Age)
	base := RuleInput{
		Diagnosis: strings.ToLower(diagnosis),
		Allergies: strings.ToLower(patient.Allergies),
		Age:       age,
		AgeKnown:  ageKnown,
	}

	items := make([]ValidationItem, 0, len(meds))
	for i, med := range meds {
		items = append(items, validateEntry(i, med, base))
	}

	return ValidationReport{
		Overall:         OverallStatus(items),
		Items:           items,
		Recommendations: Recommendations(),
	}
}

func validateEntry(index int, med MedicationEntry, base RuleInput) ValidationItem {
	name := strings.TrimSpace(med.Medication)

	in := base
	in.Medication = strings.ToLower(name)
	in.Dosage = strings.TrimSpace(med.Dosage)
	in.Frequency = strings.ToLower(strings.TrimSpace(med.Frequency))

	status := StatusApproved
	issues := []string{}
	for _, rule := range ruleDB {
		if !rule.Match(in) {
			continue
		}
		issues = append(issues, rule.Message)
		switch rule.Effect {
		case EffectReject:
			status = status.Escalate(StatusRejected)
		case EffectWarn:
			status = status.Escalate(StatusWarning)
		}
	}
	if len(issues) == 0 {
		issues = append(issues, approvedMessage)
	}

	label := name
	if label == "" {
		label = fmt.Sprintf("Medication %d", index+1)
	}

	return ValidationItem{
		Medication: label,
		Status:     status,
		Message:    strings.Join(issues, ". "),
	}
}

// OverallStatus is rejected if any item is rejected, otherwise warning if any
// item is a warning, otherwise approved.
func OverallStatus(items []ValidationItem) Status {
	overall := StatusApproved
	for _, item := range items {
		overall = overall.Escalate(item.Status)
	}
	return overall
}

// parseAge accepts only a plain run of ASCII digits. Anything else leaves the
// age unknown and the age rule is skipped.
func parseAge(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	age, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return age, true
}

func missingName(in RuleInput) bool {
	return in.Medication == ""
}

func missingDosage(in RuleInput) bool {
	return in.Dosage == ""
}

func penicillinAllergy(in RuleInput) bool {
	return strings.Contains(in.Medication, "penicillin") && strings.Contains(in.Allergies, "penicillin")
}

func aspirinUnder16(in RuleInput) bool {
	return in.AgeKnown && in.Age < 16 && strings.Contains(in.Medication, "aspirin")
}

func ibuprofenFrequency(in RuleInput) bool {
	return strings.Contains(in.Medication, "ibuprofen") && strings.Contains(in.Frequency, "4 times")
}

func infectionWithoutAntibiotic(in RuleInput) bool {
	if !strings.Contains(in.Diagnosis, "infection") {
		return false
	}
	for _, term := range antibioticTerms {
		if strings.Contains(in.Medication, term) {
			return false
		}
	}
	return true
}
