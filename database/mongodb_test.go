package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"clinic-booking-chatbot/models"
)

func newMockMongo(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func mockStore(mt *mtest.T) *MongoStore {
	return &MongoStore{client: mt.Client, db: mt.DB, logger: zap.NewNop()}
}

func commandNames(mt *mtest.T) []string {
	var names []string
	for _, evt := range mt.GetAllStartedEvents() {
		names = append(names, evt.CommandName)
	}
	return names
}

func TestOpenMongoStore(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("seeds empty catalog", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, "test.doctors", mtest.FirstBatch),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 10}),
		)

		store, err := openMongoStore(context.Background(), mt.Client, "test", DefaultCatalog(), nil)
		require.NoError(mt, err)
		require.NotNil(mt, store)
		assert.Equal(mt, []string{"createIndexes", "createIndexes", "createIndexes", "aggregate", "insert"}, commandNames(mt))
	})

	mt.Run("skips seeding populated catalog", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, "test.doctors", mtest.FirstBatch, bson.D{{Key: "n", Value: int64(10)}}),
		)

		_, err := openMongoStore(context.Background(), mt.Client, "test", DefaultCatalog(), nil)
		require.NoError(mt, err)
		assert.NotContains(mt, commandNames(mt), "insert")
	})

	mt.Run("disconnects when indexes fail", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized on test",
		}))
		core, logs := observer.New(zapcore.InfoLevel)

		store, err := openMongoStore(context.Background(), mt.Client, "test", DefaultCatalog(), zap.New(core))
		require.Error(mt, err)
		assert.Nil(mt, store)
		assert.Contains(mt, err.Error(), "failed to create indexes")
		assert.Equal(mt, 1, logs.FilterMessage("Disconnected from MongoDB").Len())
	})
}

func TestMongoStoreBookAppointment(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("uses the counter for ids", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: appointmentCounterID},
				{Key: "seq", Value: int64(7)},
			}}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		id, err := mockStore(mt).BookAppointment(context.Background(), janeDoe())
		require.NoError(mt, err)
		assert.Equal(mt, int64(7), id)
		assert.Equal(mt, []string{"findAndModify", "insert"}, commandNames(mt))
	})

	mt.Run("rejects incomplete requests", func(mt *mtest.T) {
		req := janeDoe()
		req.Phone = ""

		_, err := mockStore(mt).BookAppointment(context.Background(), req)
		require.Error(mt, err)
		assert.Empty(mt, commandNames(mt))
	})

	mt.Run("surfaces insert failures", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{{Key: "seq", Value: int64(8)}}}),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}),
		)

		_, err := mockStore(mt).BookAppointment(context.Background(), janeDoe())
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "insert appointment")
	})
}

func TestMongoStoreLookups(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("find appointments by patient", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.appointments", mtest.FirstBatch,
			bson.D{
				{Key: "appointment_id", Value: int64(1)},
				{Key: "patient_name", Value: "Jane Doe"},
				{Key: "doctor_name", Value: "Dr. Garcia"},
				{Key: "appointment_time", Value: "10:00"},
				{Key: "status", Value: models.AppointmentConfirmed},
			},
			bson.D{
				{Key: "appointment_id", Value: int64(2)},
				{Key: "patient_name", Value: "jane doe"},
				{Key: "doctor_name", Value: "Dr. Martinez"},
				{Key: "appointment_time", Value: "14:00"},
			},
		))

		appts, err := mockStore(mt).FindAppointments(context.Background(), " Jane Doe ")
		require.NoError(mt, err)
		require.Len(mt, appts, 2)
		assert.Equal(mt, int64(1), appts[0].ID)
		assert.Equal(mt, "Dr. Garcia", appts[0].Doctor)
		assert.Equal(mt, "14:00", appts[1].Time)
	})

	mt.Run("missing appointment", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.appointments", mtest.FirstBatch))

		_, err := mockStore(mt).GetAppointment(context.Background(), 99)
		assert.ErrorIs(mt, err, models.ErrAppointmentNotFound)
	})

	mt.Run("doctors for specialty", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.doctors", mtest.FirstBatch,
			bson.D{
				{Key: "name", Value: "Dr. Garcia"},
				{Key: "specialty", Value: "cardiology"},
				{Key: "available_times", Value: bson.A{"09:00", "10:00"}},
			},
		))

		doctors, err := mockStore(mt).GetAvailableDoctors(context.Background(), "Cardiology")
		require.NoError(mt, err)
		require.Len(mt, doctors, 1)
		assert.Equal(mt, []string{"09:00", "10:00"}, doctors[0].AvailableTimes)
	})

	mt.Run("blank specialty skips the query", func(mt *mtest.T) {
		doctors, err := mockStore(mt).GetAvailableDoctors(context.Background(), "  ")
		require.NoError(mt, err)
		assert.Empty(mt, doctors)
		assert.Empty(mt, commandNames(mt))
	})
}

func TestMongoStoreCancelAppointment(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("cancelled", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))
		assert.NoError(mt, mockStore(mt).CancelAppointment(context.Background(), 1))
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))
		assert.ErrorIs(mt, mockStore(mt).CancelAppointment(context.Background(), 5), models.ErrAppointmentNotFound)
	})
}

func TestMongoStoreSaveMessage(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("assigns an id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		msg := &models.Message{SessionID: "web-1", UserMessage: "hello", Channel: models.ChannelWeb}
		require.NoError(mt, mockStore(mt).SaveMessage(context.Background(), msg))
		assert.False(mt, msg.ID.IsZero())
	})
}
