package prescription

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_EmptyEntryRejected(t *testing.T) {
	report := Validate("", PatientInfo{}, []MedicationEntry{{}})
	require.Len(t, report.Items, 1)

	item := report.Items[0]
	assert.Equal(t, "Medication 1", item.Medication)
	assert.Equal(t, StatusRejected, item.Status)
	assert.Equal(t, "Medication name is required. Dosage is required", item.Message)
	assert.Equal(t, StatusRejected, report.Overall)
}

func TestValidate_PlaceholderUsesPosition(t *testing.T) {
	meds := []MedicationEntry{
		{Medication: "Paracetamol", Dosage: "500mg"},
		{Medication: "   ", Dosage: "10mg"},
	}
	report := Validate("", PatientInfo{}, meds)
	require.Len(t, report.Items, 2)

	assert.Equal(t, "Paracetamol", report.Items[0].Medication)
	assert.Equal(t, "Medication 2", report.Items[1].Medication)
	assert.Equal(t, "Medication name is required", report.Items[1].Message)
}

func TestValidate_PenicillinAllergy(t *testing.T) {
	patient := PatientInfo{Allergies: "penicillin, sulfa"}
	report := Validate("Strep throat", patient, []MedicationEntry{
		{Medication: "Penicillin V", Dosage: "250mg", Frequency: "4 times daily", Duration: "10 days"},
	})

	item := report.Items[0]
	assert.Equal(t, StatusRejected, item.Status)
	assert.Contains(t, item.Message, "ALLERGY ALERT")
	assert.Equal(t, StatusRejected, report.Overall)
}

func TestValidate_PenicillinWithoutAllergyApproved(t *testing.T) {
	report := Validate("", PatientInfo{Allergies: "sulfa"}, []MedicationEntry{
		{Medication: "Penicillin V", Dosage: "250mg"},
	})

	assert.Equal(t, StatusApproved, report.Items[0].Status)
	assert.Equal(t, approvedMessage, report.Items[0].Message)
}

func TestValidate_AspirinAge(t *testing.T) {
	meds := []MedicationEntry{{Medication: "Aspirin", Dosage: "100mg"}}

	young := Validate("", PatientInfo{Age: "10"}, meds)
	assert.Equal(t, StatusWarning, young.Items[0].Status)
	assert.Contains(t, young.Items[0].Message, "AGE WARNING")

	adult := Validate("", PatientInfo{Age: "40"}, meds)
	assert.Equal(t, StatusApproved, adult.Items[0].Status)
	assert.NotContains(t, adult.Items[0].Message, "AGE WARNING")
}

func TestValidate_MalformedAgeSkipsRule(t *testing.T) {
	meds := []MedicationEntry{{Medication: "Aspirin", Dosage: "100mg"}}

	for _, age := range []string{"", "ten", "-5", "12.5", "1 2"} {
		report := Validate("", PatientInfo{Age: age}, meds)
		assert.Equal(t, StatusApproved, report.Items[0].Status, "age %q", age)
	}

	padded := Validate("", PatientInfo{Age: " 12 "}, meds)
	assert.Equal(t, StatusWarning, padded.Items[0].Status)
}

func TestValidate_IbuprofenFrequency(t *testing.T) {
	report := Validate("", PatientInfo{}, []MedicationEntry{
		{Medication: "Ibuprofen", Dosage: "400mg", Frequency: "4 Times daily"},
		{Medication: "Ibuprofen", Dosage: "400mg", Frequency: "twice daily"},
	})

	assert.Equal(t, StatusWarning, report.Items[0].Status)
	assert.Contains(t, report.Items[0].Message, "DOSAGE WARNING")
	assert.Equal(t, StatusApproved, report.Items[1].Status)
	assert.Equal(t, StatusWarning, report.Overall)
}

func TestValidate_InfectionSuggestsAntibiotic(t *testing.T) {
	report := Validate("Bacterial INFECTION", PatientInfo{}, []MedicationEntry{
		{Medication: "Paracetamol", Dosage: "500mg"},
		{Medication: "Amoxicillin", Dosage: "500mg"},
		{Medication: "Broad-spectrum antibiotic", Dosage: "1g"},
	})

	assert.Equal(t, StatusWarning, report.Items[0].Status)
	assert.Equal(t, "INFO: Consider antibiotic for bacterial infection", report.Items[0].Message)
	assert.Equal(t, StatusApproved, report.Items[1].Status)
	assert.Equal(t, StatusApproved, report.Items[2].Status)
}

func TestValidate_RejectionIsNotDowngraded(t *testing.T) {
	report := Validate("ear infection", PatientInfo{Age: "8"}, []MedicationEntry{
		{Medication: "Aspirin", Dosage: ""},
	})

	item := report.Items[0]
	assert.Equal(t, StatusRejected, item.Status)
	assert.Equal(t,
		"Dosage is required. AGE WARNING: Aspirin not recommended for patients under 16. INFO: Consider antibiotic for bacterial infection",
		item.Message)
}

func TestValidate_MessagesFollowRuleOrder(t *testing.T) {
	report := Validate("infection", PatientInfo{Allergies: "Penicillin"}, []MedicationEntry{
		{Medication: "", Dosage: ""},
	})

	msg := report.Items[0].Message
	assert.True(t, strings.Index(msg, "name is required") < strings.Index(msg, "Dosage is required"))
	assert.True(t, strings.Index(msg, "Dosage is required") < strings.Index(msg, "INFO:"))
}

func TestValidate_PreservesOrderAndCount(t *testing.T) {
	meds := []MedicationEntry{
		{Medication: "C", Dosage: "1mg"},
		{Medication: "A", Dosage: "1mg"},
		{Medication: "B"},
	}
	report := Validate("", PatientInfo{}, meds)
	require.Len(t, report.Items, len(meds))
	for i, item := range report.Items {
		assert.Equal(t, meds[i].Medication, item.Medication)
	}
}

func TestValidate_NoMedications(t *testing.T) {
	report := Validate("infection", PatientInfo{}, nil)
	assert.Empty(t, report.Items)
	assert.NotNil(t, report.Items)
	assert.Equal(t, StatusApproved, report.Overall)
	assert.Equal(t, Recommendations(), report.Recommendations)
}

func TestValidate_Deterministic(t *testing.T) {
	patient := PatientInfo{Age: "12", Allergies: "penicillin", Weight: "40"}
	meds := Parse("Aspirin 100mg once daily for 3 days; Penicillin 250mg; Ibuprofen 200mg 4 times daily")

	first, err := json.Marshal(Validate("chest infection", patient, meds))
	require.NoError(t, err)
	second, err := json.Marshal(Validate("chest infection", patient, meds))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestOverallStatus_Precedence(t *testing.T) {
	cases := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusApproved},
		{"all approved", []Status{StatusApproved, StatusApproved}, StatusApproved},
		{"warning", []Status{StatusApproved, StatusWarning}, StatusWarning},
		{"rejected first", []Status{StatusRejected, StatusWarning, StatusApproved}, StatusRejected},
		{"rejected last", []Status{StatusWarning, StatusApproved, StatusRejected}, StatusRejected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items := make([]ValidationItem, 0, len(tc.statuses))
			for _, s := range tc.statuses {
				items = append(items, ValidationItem{Status: s})
			}
			assert.Equal(t, tc.want, OverallStatus(items))
		})
	}
}

func TestStatus_Escalate(t *testing.T) {
	assert.Equal(t, StatusWarning, StatusApproved.Escalate(StatusWarning))
	assert.Equal(t, StatusRejected, StatusWarning.Escalate(StatusRejected))
	assert.Equal(t, StatusRejected, StatusRejected.Escalate(StatusWarning))
	assert.Equal(t, StatusWarning, StatusWarning.Escalate(StatusApproved))
}

func TestRecommendations_ReturnsCopy(t *testing.T) {
	recs := Recommendations()
	require.Len(t, recs, 4)
	recs[0] = "changed"
	assert.Equal(t, "Verify patient allergies before dispensing", Recommendations()[0])
}
