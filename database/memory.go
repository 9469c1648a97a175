package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"clinic-booking-chatbot/models"
)

// MemoryStore keeps the catalog and appointments in process memory.
// Appointment ids start at 1.
type MemoryStore struct {
	mu           sync.RWMutex
	doctors      []models.Doctor
	appointments map[int64]models.Appointment
	nextID       int64
}

func NewMemoryStore(doctors []models.Doctor) *MemoryStore {
	if doctors == nil {
		doctors = DefaultCatalog()
	}
	return &MemoryStore{
		doctors:      doctors,
		appointments: make(map[int64]models.Appointment),
	}
}

func (s *MemoryStore) GetAvailableDoctors(_ context.Context, specialty string) ([]models.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doctors := []models.Doctor{}
	for _, d := range s.doctors {
		if matchesSpecialty(d.Specialty, specialty) {
			doctors = append(doctors, copyDoctor(d))
		}
	}
	return doctors, nil
}

func (s *MemoryStore) BookAppointment(_ context.Context, req models.BookingRequest) (int64, error) {
	if err := validateBooking(req); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.appointments[s.nextID] = models.NewAppointment(s.nextID, req, time.Now().UTC())
	return s.nextID, nil
}

func (s *MemoryStore) GetAppointment(_ context.Context, id int64) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	appt, ok := s.appointments[id]
	if !ok {
		return nil, models.ErrAppointmentNotFound
	}
	return &appt, nil
}

func (s *MemoryStore) FindAppointments(_ context.Context, patientName string) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Appointment{}
	for _, a := range s.appointments {
		if strings.EqualFold(a.PatientName, strings.TrimSpace(patientName)) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CancelAppointment(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.appointments[id]
	if !ok {
		return models.ErrAppointmentNotFound
	}
	appt.Status = models.AppointmentCancelled
	s.appointments[id] = appt
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close(context.Context) error { return nil }
