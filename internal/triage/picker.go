package triage

import "math/rand"

type Assessment struct {
	Condition       string   `json:"condition"`
	Confidence      string   `json:"confidence"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
}

var FollowupQuestions = []string{
	"How long have you been experiencing these symptoms?",
	"On a scale of 1-10, how would you rate the severity of your symptoms?",
	"Do you have any fever or temperature changes?",
	"Have you experienced any nausea or vomiting?",
	"Are you taking any medications currently?",
	"Do you have any known allergies or medical conditions?",
	"Have you traveled recently or been exposed to anyone who was sick?",
}

var Assessments = []Assessment{
	{
		Condition:   "Upper Respiratory Infection",
		Confidence:  "85%",
		Description: "Common cold or flu-like symptoms",
		Recommendations: []string{
			"Rest and stay hydrated",
			"Consider over-the-counter pain relievers",
			"Monitor symptoms for 7-10 days",
			"Seek medical attention if symptoms worsen",
		},
	},
	{
		Condition:   "Seasonal Allergies",
		Confidence:  "70%",
		Description: "Allergic reaction to environmental factors",
		Recommendations: []string{
			"Avoid known allergens",
			"Consider antihistamines",
			"Use air purifiers indoors",
			"Consult an allergist if symptoms persist",
		},
	},
	{
		Condition:   "Mild Gastroenteritis",
		Confidence:  "75%",
		Description: "Stomach flu or food-related illness",
		Recommendations: []string{
			"Stay hydrated with clear fluids",
			"Follow the BRAT diet (Bananas, Rice, Applesauce, Toast)",
			"Rest and avoid solid foods temporarily",
			"Seek medical care if symptoms persist over 3 days",
		},
	},
}

// Picker chooses the next follow-up question and the final assessment.
// Callers always pass non-empty slices.
type Picker interface {
	Question(questions []string) string
	Assessment(options []Assessment) Assessment
}

// RandomPicker picks uniformly at random.
type RandomPicker struct{}

func (RandomPicker) Question(questions []string) string {
	return questions[rand.Intn(len(questions))]
}

func (RandomPicker) Assessment(options []Assessment) Assessment {
	return options[rand.Intn(len(options))]
}

// FixedPicker always returns the same positions, wrapping if needed.
type FixedPicker struct {
	QuestionIndex   int
	AssessmentIndex int
}

func (p FixedPicker) Question(questions []string) string {
	return questions[p.QuestionIndex%len(questions)]
}

func (p FixedPicker) Assessment(options []Assessment) Assessment {
	return options[p.AssessmentIndex%len(options)]
}
