package services

import (
	"context"

	"clinic-booking-chatbot/models"
)

// SchedulingGateway is the doctor catalog and appointment store the
// conversation engine books through. An empty doctor list is a valid answer,
// never an error.
type SchedulingGateway interface {
	GetAvailableDoctors(ctx context.Context, specialty string) ([]models.Doctor, error)
	BookAppointment(ctx context.Context, req models.BookingRequest) (int64, error)
	GetAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	FindAppointments(ctx context.Context, patientName string) ([]models.Appointment, error)
	CancelAppointment(ctx context.Context, id int64) error
}
