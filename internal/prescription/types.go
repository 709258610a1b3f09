package prescription

// PatientInfo is the patient record entered alongside a prescription. Age is
// kept as text because it comes straight from a form field.
type PatientInfo struct {
	Age        string `json:"age"`
	Weight     string `json:"weight"`
	Allergies  string `json:"allergies"`
	Conditions string `json:"conditions"`
}

type MedicationEntry struct {
	Medication string `json:"medication"`
	Dosage     string `json:"dosage"`
	Frequency  string `json:"frequency"`
	Duration   string `json:"duration"`
}

type Status string

const (
	StatusApproved Status = "approved"
	StatusWarning  Status = "warning"
	StatusRejected Status = "rejected"
)

var statusRank = map[Status]int{
	StatusApproved: 0,
	StatusWarning:  1,
	StatusRejected: 2,
}

// Escalate returns the more severe of s and next. A status never moves back
// down once raised.
func (s Status) Escalate(next Status) Status {
	if statusRank[next] > statusRank[s] {
		return next
	}
	return s
}

type ValidationItem struct {
	Medication string `json:"medication"`
	Status     Status `json:"status"`
	Message    string `json:"message"`
}

type ValidationReport struct {
	Overall         Status           `json:"overall"`
	Items           []ValidationItem `json:"items"`
	Recommendations []string         `json:"recommendations"`
}
