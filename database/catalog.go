package database

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"clinic-booking-chatbot/models"
)

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// DefaultCatalog is the built-in doctor roster.
func DefaultCatalog() []models.Doctor {
	return []models.Doctor{
		{Name: "Dr. Garcia", Specialty: "cardiology", AvailableDays: weekdays, AvailableTimes: []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"}},
		{Name: "Dr. Martinez", Specialty: "cardiology", AvailableDays: []string{"Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}, AvailableTimes: []string{"08:00", "09:00", "10:00", "13:00", "14:00", "15:00"}},
		{Name: "Dr. Rodriguez", Specialty: "dermatology", AvailableDays: []string{"Monday", "Wednesday", "Friday"}, AvailableTimes: []string{"10:00", "11:00", "12:00", "15:00", "16:00", "17:00"}},
		{Name: "Dr. Lopez", Specialty: "dermatology", AvailableDays: []string{"Tuesday", "Thursday", "Saturday"}, AvailableTimes: []string{"09:00", "10:00", "11:00", "14:00", "15:00"}},
		{Name: "Dr. Gonzalez", Specialty: "pediatrics", AvailableDays: weekdays, AvailableTimes: []string{"08:00", "09:00", "10:00", "11:00", "14:00", "15:00"}},
		{Name: "Dr. Fernandez", Specialty: "neurology", AvailableDays: []string{"Monday", "Wednesday", "Friday"}, AvailableTimes: []string{"10:00", "11:00", "14:00", "15:00", "16:00"}},
		{Name: "Dr. Sanchez", Specialty: "orthopedics", AvailableDays: []string{"Tuesday", "Thursday", "Saturday"}, AvailableTimes: []string{"09:00", "10:00", "11:00", "13:00", "14:00"}},
		{Name: "Dr. Ramirez", Specialty: "gynecology", AvailableDays: []string{"Monday", "Tuesday", "Wednesday", "Thursday"}, AvailableTimes: []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"}},
		{Name: "Dr. Torres", Specialty: "psychiatry", AvailableDays: []string{"Monday", "Wednesday", "Friday"}, AvailableTimes: []string{"10:00", "11:00", "14:00", "15:00", "16:00", "17:00"}},
		{Name: "Dr. Flores", Specialty: "internal_medicine", AvailableDays: weekdays, AvailableTimes: []string{"08:00", "09:00", "10:00", "11:00", "13:00", "14:00", "15:00"}},
	}
}

type catalogFile struct {
	Doctors []models.Doctor `yaml:"doctors"`
}

// LoadCatalog reads a YAML catalog of the form
//
//	doctors:
//	  - name: Dr. Garcia
//	    specialty: cardiology
//	    available_days: [Monday, Tuesday]
//	    available_times: ["09:00", "10:00"]
//
// An empty path returns the default catalog.
func LoadCatalog(path string) ([]models.Doctor, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) ([]models.Doctor, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i, d := range file.Doctors {
		if strings.TrimSpace(d.Name) == "" || strings.TrimSpace(d.Specialty) == "" {
			return nil, fmt.Errorf("catalog entry %d: name and specialty are required", i)
		}
		file.Doctors[i].Specialty = strings.ToLower(strings.TrimSpace(d.Specialty))
	}
	if len(file.Doctors) == 0 {
		return nil, fmt.Errorf("catalog has no doctors")
	}
	return file.Doctors, nil
}

// matchesSpecialty reports whether a catalog specialty answers a query:
// equal, or containing the query.
func matchesSpecialty(specialty, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return false
	}
	specialty = strings.ToLower(specialty)
	return specialty == query || strings.Contains(specialty, query)
}

func validateBooking(req models.BookingRequest) error {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return fmt.Errorf("patient name is required")
	case strings.TrimSpace(req.Phone) == "":
		return fmt.Errorf("patient phone is required")
	case strings.TrimSpace(req.Doctor) == "":
		return fmt.Errorf("doctor is required")
	case strings.TrimSpace(req.Time) == "":
		return fmt.Errorf("appointment time is required")
	}
	return nil
}

func copyDoctor(d models.Doctor) models.Doctor {
	d.AvailableDays = append([]string(nil), d.AvailableDays...)
	d.AvailableTimes = append([]string(nil), d.AvailableTimes...)
	return d
}
