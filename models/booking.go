package models

import (
	"errors"
	"time"
)

// ErrAppointmentNotFound is returned by stores when no appointment has the
// requested id.
var ErrAppointmentNotFound = errors.New("appointment not found")

// Doctor is a catalog entry. Read-only for the conversation engine.
type Doctor struct {
	Name           string   `json:"name" bson:"name" yaml:"name"`
	Specialty      string   `json:"specialty" bson:"specialty" yaml:"specialty"`
	AvailableDays  []string `json:"available_days" bson:"available_days" yaml:"available_days"`
	AvailableTimes []string `json:"available_times" bson:"available_times" yaml:"available_times"`
}

// BookingRequest is the data handed to the scheduling store on confirmation.
type BookingRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Doctor    string `json:"doctor"`
	Specialty string `json:"specialty"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Symptoms  string `json:"symptoms,omitempty"`
	Urgency   string `json:"urgency"`
}

// BookingResult is the outcome of a confirmation attempt.
type BookingResult struct {
	Success       bool   `json:"success"`
	AppointmentID int64  `json:"appointment_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

func BookingSucceeded(id int64) BookingResult {
	return BookingResult{Success: true, AppointmentID: id}
}

func BookingFailed(err error) BookingResult {
	return BookingResult{Success: false, Error: err.Error()}
}

// AppointmentStatus values.
const (
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
)

// Appointment is a persisted booking.
type Appointment struct {
	ID           int64     `json:"id" bson:"appointment_id"`
	PatientName  string    `json:"patient_name" bson:"patient_name"`
	PatientPhone string    `json:"patient_phone" bson:"patient_phone"`
	Doctor       string    `json:"doctor" bson:"doctor_name"`
	Specialty    string    `json:"specialty" bson:"specialty"`
	Date         string    `json:"date" bson:"appointment_date"`
	Time         string    `json:"time" bson:"appointment_time"`
	Symptoms     string    `json:"symptoms,omitempty" bson:"symptoms,omitempty"`
	Urgency      string    `json:"urgency" bson:"urgency"`
	Status       string    `json:"status" bson:"status"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// NewAppointment builds a confirmed appointment from a booking request.
func NewAppointment(id int64, req BookingRequest, createdAt time.Time) Appointment {
	return Appointment{
		ID:           id,
		PatientName:  req.Name,
		PatientPhone: req.Phone,
		Doctor:       req.Doctor,
		Specialty:    req.Specialty,
		Date:         req.Date,
		Time:         req.Time,
		Symptoms:     req.Symptoms,
		Urgency:      req.Urgency,
		Status:       AppointmentConfirmed,
		CreatedAt:    createdAt,
	}
}

// ClinicInfo is the static clinic profile used in replies.
type ClinicInfo struct {
	Name           string
	Phone          string
	Address        string
	BillingPhone   string
	InsurancePhone string
	Email          string
}
