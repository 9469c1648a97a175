package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"clinic-booking-chatbot/config"
	"clinic-booking-chatbot/models"
	"clinic-booking-chatbot/utils"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore is the PostgreSQL scheduling store.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStore wraps an open database. The caller owns migrations.
func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: utils.OrNop(logger)}
}

// ConnectPostgres opens the database, applies the schema and seeds the
// doctor catalog when it is empty.
func ConnectPostgres(ctx context.Context, cfg *config.Config, doctors []models.Doctor, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.BuildDatabaseURI())
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.MinConnections)
	db.SetConnMaxIdleTime(cfg.Database.MaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	s := NewPostgresStore(db, logger)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.SeedDoctors(ctx, doctors); err != nil {
		db.Close()
		return nil, err
	}
	s.logger.Info("Connected to PostgreSQL", zap.String("database", cfg.Database.Name))
	return s, nil
}

// Migrate applies schema.sql. Every statement is idempotent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SeedDoctors inserts the catalog when the doctors table is empty.
func (s *PostgresStore) SeedDoctors(ctx context.Context, doctors []models.Doctor) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&n); err != nil {
		return fmt.Errorf("count doctors: %w", err)
	}
	if n > 0 || len(doctors) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed doctors: %w", err)
	}
	defer tx.Rollback()

	for _, d := range doctors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO doctors (name, specialty, available_days, available_times)
             VALUES ($1, $2, $3, $4)`,
			d.Name, d.Specialty, pq.Array(d.AvailableDays), pq.Array(d.AvailableTimes),
		); err != nil {
			return fmt.Errorf("seed doctor %s: %w", d.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed doctors: %w", err)
	}
	s.logger.Info("Seeded doctor catalog", zap.Int("doctors", len(doctors)))
	return nil
}

func (s *PostgresStore) GetAvailableDoctors(ctx context.Context, specialty string) ([]models.Doctor, error) {
	doctors := []models.Doctor{}
	specialty = strings.ToLower(strings.TrimSpace(specialty))
	if specialty == "" {
		return doctors, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, specialty, available_days, available_times
         FROM doctors
         WHERE specialty = $1 OR specialty LIKE '%' || $1 || '%'
         ORDER BY id`,
		specialty,
	)
	if err != nil {
		return nil, fmt.Errorf("query doctors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d models.Doctor
		if err := rows.Scan(&d.Name, &d.Specialty, pq.Array(&d.AvailableDays), pq.Array(&d.AvailableTimes)); err != nil {
			return nil, fmt.Errorf("scan doctor: %w", err)
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}

func (s *PostgresStore) BookAppointment(ctx context.Context, req models.BookingRequest) (int64, error) {
	if err := validateBooking(req); err != nil {
		return 0, err
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO appointments
             (patient_name, patient_phone, doctor_name, specialty, appointment_date, appointment_time, symptoms, urgency, status)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
         RETURNING id`,
		req.Name, req.Phone, req.Doctor, req.Specialty, req.Date, req.Time, req.Symptoms, req.Urgency, models.AppointmentConfirmed,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			s.logger.Error("Appointment insert rejected", zap.String("code", string(pqErr.Code)), zap.String("detail", pqErr.Detail))
		}
		return 0, fmt.Errorf("insert appointment: %w", err)
	}
	return id, nil
}

const appointmentColumns = `id, patient_name, patient_phone, doctor_name, specialty, appointment_date,
                appointment_time, symptoms, urgency, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (models.Appointment, error) {
	var a models.Appointment
	err := row.Scan(&a.ID, &a.PatientName, &a.PatientPhone, &a.Doctor, &a.Specialty, &a.Date,
		&a.Time, &a.Symptoms, &a.Urgency, &a.Status, &a.CreatedAt)
	return a, err
}

func (s *PostgresStore) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	a, err := scanAppointment(s.db.QueryRowContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return &a, nil
}

func (s *PostgresStore) FindAppointments(ctx context.Context, patientName string) ([]models.Appointment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE lower(patient_name) = lower($1) ORDER BY id`,
		strings.TrimSpace(patientName))
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	appointments := []models.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

func (s *PostgresStore) CancelAppointment(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE appointments SET status = $1 WHERE id = $2`, models.AppointmentCancelled, id)
	if err != nil {
		return fmt.Errorf("cancel appointment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancel appointment: %w", err)
	}
	if n == 0 {
		return models.ErrAppointmentNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close(context.Context) error {
	return s.db.Close()
}
