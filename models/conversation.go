package models

import (
	"strings"
	"time"
)

// ConversationState is the closed set of dialogue states a session can be in.
type ConversationState int

const (
	StateIdle ConversationState = iota
	StateCollectingSpecialty
	StateCollectingDoctor
	StateCollectingPatientName
	StateCollectingPhone
	StateCollectingDateTime
	StateConfirming
	StateCheckingAppointment
	StateHandlingEmergency
)

func (s ConversationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollectingSpecialty:
		return "collecting_specialty"
	case StateCollectingDoctor:
		return "collecting_doctor"
	case StateCollectingPatientName:
		return "collecting_patient_name"
	case StateCollectingPhone:
		return "collecting_phone"
	case StateCollectingDateTime:
		return "collecting_date_time"
	case StateConfirming:
		return "confirming"
	case StateCheckingAppointment:
		return "checking_appointment"
	case StateHandlingEmergency:
		return "handling_emergency"
	default:
		return "unknown"
	}
}

// MarshalText lets states travel as their snake_case names in JSON and BSON.
func (s ConversationState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsCollecting reports whether the state waits for a booking slot value.
func (s ConversationState) IsCollecting() bool {
	_, ok := s.Slot()
	return ok
}

// InBookingFlow reports whether the state belongs to the booking flow,
// including the confirmation step.
func (s ConversationState) InBookingFlow() bool {
	return s.IsCollecting() || s == StateConfirming
}

// Slot returns the booking slot a collecting state waits for.
func (s ConversationState) Slot() (Slot, bool) {
	switch s {
	case StateCollectingSpecialty:
		return SlotSpecialty, true
	case StateCollectingDoctor:
		return SlotDoctor, true
	case StateCollectingPatientName:
		return SlotPatientName, true
	case StateCollectingPhone:
		return SlotPatientPhone, true
	case StateCollectingDateTime:
		return SlotTime, true
	}
	return 0, false
}

// Slot is a named field of the in-progress booking that must be filled
// before confirmation.
type Slot int

const (
	SlotSpecialty Slot = iota
	SlotDoctor
	SlotPatientName
	SlotPatientPhone
	SlotTime
)

// SlotOrder is the fixed slot-filling order of the booking flow.
var SlotOrder = []Slot{SlotSpecialty, SlotDoctor, SlotPatientName, SlotPatientPhone, SlotTime}

func (s Slot) String() string {
	switch s {
	case SlotSpecialty:
		return "specialty"
	case SlotDoctor:
		return "doctor"
	case SlotPatientName:
		return "patient_name"
	case SlotPatientPhone:
		return "patient_phone"
	case SlotTime:
		return "time"
	default:
		return "unknown"
	}
}

func (s Slot) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CollectingState is the state that asks for the slot.
func (s Slot) CollectingState() ConversationState {
	switch s {
	case SlotSpecialty:
		return StateCollectingSpecialty
	case SlotDoctor:
		return StateCollectingDoctor
	case SlotPatientName:
		return StateCollectingPatientName
	case SlotPatientPhone:
		return StateCollectingPhone
	case SlotTime:
		return StateCollectingDateTime
	default:
		return StateIdle
	}
}

// BookingData accumulates slot values for one booking. A value is never
// overwritten once set; only Reset clears it.
type BookingData struct {
	Specialty    string `json:"specialty,omitempty" bson:"specialty,omitempty"`
	Doctor       string `json:"doctor,omitempty" bson:"doctor,omitempty"`
	PatientName  string `json:"patient_name,omitempty" bson:"patient_name,omitempty"`
	PatientPhone string `json:"patient_phone,omitempty" bson:"patient_phone,omitempty"`
	Date         string `json:"date,omitempty" bson:"date,omitempty"`
	Time         string `json:"time,omitempty" bson:"time,omitempty"`
	Symptoms     string `json:"symptoms,omitempty" bson:"symptoms,omitempty"`
}

func (b *BookingData) field(slot Slot) *string {
	switch slot {
	case SlotSpecialty:
		return &b.Specialty
	case SlotDoctor:
		return &b.Doctor
	case SlotPatientName:
		return &b.PatientName
	case SlotPatientPhone:
		return &b.PatientPhone
	case SlotTime:
		return &b.Time
	}
	return nil
}

// Has reports whether the slot is filled.
func (b *BookingData) Has(slot Slot) bool {
	return b.Value(slot) != ""
}

// Value returns the slot value, or "" when unfilled.
func (b *BookingData) Value(slot Slot) string {
	if f := b.field(slot); f != nil {
		return *f
	}
	return ""
}

// Fill sets an unfilled slot and reports whether it did.
func (b *BookingData) Fill(slot Slot, value string) bool {
	value = strings.TrimSpace(value)
	f := b.field(slot)
	if f == nil || *f != "" || value == "" {
		return false
	}
	*f = value
	return true
}

// FillSymptoms records symptoms once.
func (b *BookingData) FillSymptoms(symptoms []string) bool {
	if b.Symptoms != "" || len(symptoms) == 0 {
		return false
	}
	b.Symptoms = strings.Join(symptoms, ", ")
	return true
}

// NextSlot returns the first unfilled slot in SlotOrder.
func (b *BookingData) NextSlot() (Slot, bool) {
	for _, slot := range SlotOrder {
		if !b.Has(slot) {
			return slot, true
		}
	}
	return 0, false
}

// IsEmpty reports whether nothing has been collected yet.
func (b *BookingData) IsEmpty() bool {
	return *b == BookingData{}
}

// Complete reports whether every slot is filled.
func (b *BookingData) Complete() bool {
	_, missing := b.NextSlot()
	return !missing
}

// DerivedState rebuilds the booking-flow state from slot fullness.
func (b *BookingData) DerivedState() ConversationState {
	if slot, ok := b.NextSlot(); ok {
		return slot.CollectingState()
	}
	return StateConfirming
}

// Reset clears every slot.
func (b *BookingData) Reset() {
	*b = BookingData{}
}

// TurnRole marks who produced a turn.
type TurnRole string

const (
	RoleUser TurnRole = "user"
	RoleBot  TurnRole = "bot"
)

// Turn is one entry of a session's append-only history.
type Turn struct {
	Role         TurnRole     `json:"role"`
	Text         string       `json:"text"`
	ResponseType ResponseType `json:"response_type,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
}

// SessionSummary is a read-only snapshot of a session.
type SessionSummary struct {
	SessionID          string            `json:"session_id"`
	State              ConversationState `json:"state"`
	ConversationLength int               `json:"conversation_length"`
	BookingData        BookingData       `json:"booking_data"`
	CreatedAt          time.Time         `json:"created_at"`
	LastActivity       time.Time         `json:"last_activity"`
}
