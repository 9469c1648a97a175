package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-booking-chatbot/models"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db, nil), mock
}

func TestPostgresMigrate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS doctors").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSeedDoctors(t *testing.T) {
	store, mock := newMockStore(t)
	doctors := DefaultCatalog()[:2]

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	for _, d := range doctors {
		mock.ExpectExec("INSERT INTO doctors").
			WithArgs(d.Name, d.Specialty, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, store.SeedDoctors(context.Background(), doctors))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSeedSkipsPopulatedTable(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))

	require.NoError(t, store.SeedDoctors(context.Background(), DefaultCatalog()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetAvailableDoctors(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT name, specialty, available_days, available_times").
		WithArgs("cardiology").
		WillReturnRows(sqlmock.NewRows([]string{"name", "specialty", "available_days", "available_times"}).
			AddRow("Dr. Garcia", "cardiology", "{Monday,Tuesday}", "{09:00,10:00}").
			AddRow("Dr. Martinez", "cardiology", "{Friday}", "{08:00}"))

	doctors, err := store.GetAvailableDoctors(context.Background(), " Cardiology ")
	require.NoError(t, err)
	require.Len(t, doctors, 2)
	assert.Equal(t, "Dr. Garcia", doctors[0].Name)
	assert.Equal(t, []string{"Monday", "Tuesday"}, doctors[0].AvailableDays)
	assert.Equal(t, []string{"09:00", "10:00"}, doctors[0].AvailableTimes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetAvailableDoctorsEmptySpecialty(t *testing.T) {
	store, mock := newMockStore(t)

	doctors, err := store.GetAvailableDoctors(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, doctors)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookAppointment(t *testing.T) {
	store, mock := newMockStore(t)
	req := janeDoe()

	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(req.Name, req.Phone, req.Doctor, req.Specialty, req.Date, req.Time, req.Symptoms, req.Urgency, models.AppointmentConfirmed).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := store.BookAppointment(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookAppointmentFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO appointments").
		WillReturnError(errors.New("connection reset"))

	_, err := store.BookAppointment(context.Background(), janeDoe())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetAppointment(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	columns := []string{"id", "patient_name", "patient_phone", "doctor_name", "specialty", "appointment_date",
		"appointment_time", "symptoms", "urgency", "status", "created_at"}

	mock.ExpectQuery("FROM appointments WHERE id").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(7), "Jane Doe", "786-595-3900", "Dr. Garcia", "cardiology", "2024-02-15",
				"10:00", "", "normal", "confirmed", created))
	mock.ExpectQuery("FROM appointments WHERE id").
		WithArgs(int64(8)).
		WillReturnError(sql.ErrNoRows)

	appt, err := store.GetAppointment(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", appt.PatientName)
	assert.Equal(t, "Dr. Garcia", appt.Doctor)
	assert.Equal(t, created, appt.CreatedAt)

	_, err = store.GetAppointment(context.Background(), 8)
	assert.ErrorIs(t, err, models.ErrAppointmentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCancelAppointment(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE appointments SET status").
		WithArgs(models.AppointmentCancelled, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE appointments SET status").
		WithArgs(models.AppointmentCancelled, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.CancelAppointment(context.Background(), 7))
	assert.ErrorIs(t, store.CancelAppointment(context.Background(), 99), models.ErrAppointmentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
