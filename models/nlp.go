package models

// Intent is the coarse category of what the user is trying to do.
type Intent string

const (
	IntentBookAppointment   Intent = "book_appointment"
	IntentCheckAppointment  Intent = "check_appointment"
	IntentCancelAppointment Intent = "cancel_appointment"
	IntentGetInfo           Intent = "get_info"
	IntentGreeting          Intent = "greeting"
	IntentUnknown           Intent = "unknown"
)

// EntitySet holds the medical entities detected in one message. The first
// element of each list is the preferred match.
type EntitySet struct {
	Specialties      []string           `json:"specialties"`
	Symptoms         []string           `json:"symptoms"`
	Urgency          []string           `json:"urgency"`
	Doctors          []string           `json:"doctors"`
	ConfidenceScores map[string]float64 `json:"confidence_scores"`
}

// IntentResult is the classifier output.
type IntentResult struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// DerivedContext carries flags computed from the entities.
type DerivedContext struct {
	NeedsSpecialty       bool     `json:"needs_specialty"`
	HasUrgency           bool     `json:"has_urgency"`
	SuggestedSpecialties []string `json:"suggested_specialties"`
	DetectedSymptoms     []string `json:"detected_symptoms"`
	IsEmergency          bool     `json:"is_emergency"`
}

// NLPResult is produced fresh for every message and never persisted.
type NLPResult struct {
	Text       string         `json:"text"`
	Intent     Intent         `json:"intent"`
	Confidence float64        `json:"confidence"`
	Entities   EntitySet      `json:"entities"`
	Context    DerivedContext `json:"context"`
}
