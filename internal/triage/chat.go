// Package triage is the scripted symptom chat. It asks a few follow-up
// questions and then answers with one of a small set of canned assessments;
// there is no inference behind it.
package triage

import (
	"fmt"
	"strings"
	"time"
)

type Stage string

const (
	StageInitial   Stage = "initial"
	StageFollowup  Stage = "followup"
	StageDiagnosis Stage = "diagnosis"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// symptomsBeforeDiagnosis is how many user messages are collected before the
// chat answers with an assessment.
const symptomsBeforeDiagnosis = 3

const (
	greeting      = "Hello! I'm your AI medical assistant. I'll help you understand your symptoms better. Please describe your main symptoms, and I'll ask follow-up questions to narrow down possible conditions."
	restartReply  = "Let's start a new consultation. Please describe your main symptoms."
	idleReply     = "I can help you with symptom analysis. Type 'new consultation' to start over, or switch to the Prescription Checker tab if you need prescription validation."
	diagnosisNote = "⚠️ **Important:** This is an AI assessment only. Please consult with a healthcare professional for proper diagnosis and treatment.\n\nWould you like to start a new consultation or check a prescription?"
)

type Symptom struct {
	Name     string `json:"name"`
	Severity int    `json:"severity"`
	Duration string `json:"duration"`
}

type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the whole state of one conversation. Callers own it and pass it
// back in on every turn.
type Session struct {
	ID       string    `json:"id"`
	Stage    Stage     `json:"stage"`
	Symptoms []Symptom `json:"symptoms"`
	Messages []Message `json:"messages"`
}

// Assistant drives sessions through the initial → followup → diagnosis
// stages. Picker decides which question or assessment is used.
type Assistant struct {
	picker Picker
	now    func() time.Time
}

type Option func(*Assistant)

func WithClock(now func() time.Time) Option {
	return func(a *Assistant) { a.now = now }
}

func NewAssistant(picker Picker, opts ...Option) *Assistant {
	a := &Assistant{picker: picker, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start returns a fresh session containing only the greeting.
func (a *Assistant) Start(id string) *Session {
	s := &Session{ID: id, Stage: StageInitial, Symptoms: []Symptom{}}
	a.appendMessage(s, SenderBot, greeting)
	return s
}

// Reply records the user's message, advances the session and returns the
// bot's answer. Blank input is ignored and returns an empty reply.
func (a *Assistant) Reply(s *Session, input string) Message {
	input = strings.TrimSpace(input)
	if input == "" {
		return Message{}
	}
	a.appendMessage(s, SenderUser, input)

	var response string
	switch s.Stage {
	case StageInitial:
		s.Symptoms = []Symptom{newSymptom(input)}
		s.Stage = StageFollowup
		response = a.picker.Question(FollowupQuestions)
	case StageFollowup:
		s.Symptoms = append(s.Symptoms, newSymptom(input))
		if len(s.Symptoms) >= symptomsBeforeDiagnosis {
			s.Stage = StageDiagnosis
			response = FormatAssessment(a.picker.Assessment(Assessments))
		} else {
			response = a.picker.Question(FollowupQuestions)
		}
	default:
		lower := strings.ToLower(input)
		if strings.Contains(lower, "new") || strings.Contains(lower, "start") {
			s.Stage = StageInitial
			s.Symptoms = []Symptom{}
			response = restartReply
		} else {
			response = idleReply
		}
	}

	return a.appendMessage(s, SenderBot, response)
}

func (a *Assistant) appendMessage(s *Session, sender Sender, content string) Message {
	msg := Message{
		ID:        fmt.Sprintf("%s-%d", s.ID, len(s.Messages)+1),
		Sender:    sender,
		Content:   content,
		Timestamp: a.now(),
	}
	s.Messages = append(s.Messages, msg)
	return msg
}

func newSymptom(name string) Symptom {
	return Symptom{Name: name, Severity: 5, Duration: "recent"}
}

// FormatAssessment renders an assessment as the markdown reply shown to the
// user.
func FormatAssessment(a Assessment) string {
	var b strings.Builder
	b.WriteString("Based on your symptoms, here's my assessment:\n\n")
	fmt.Fprintf(&b, "**Likely Condition:** %s\n", a.Condition)
	fmt.Fprintf(&b, "**Confidence Level:** %s\n", a.Confidence)
	fmt.Fprintf(&b, "**Description:** %s\n\n", a.Description)
	b.WriteString("**Recommendations:**\n")
	for _, rec := range a.Recommendations {
		fmt.Fprintf(&b, "• %s\n", rec)
	}
	b.WriteString("\n")
	b.WriteString(diagnosisNote)
	return b.String()
}
