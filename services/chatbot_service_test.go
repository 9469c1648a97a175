package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-booking-chatbot/models"
)

type recordingLog struct {
	mu       sync.Mutex
	messages []*models.Message
	err      error
}

func (l *recordingLog) SaveMessage(_ context.Context, m *models.Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, m)
	return l.err
}

func newTestChatbot(t *testing.T, log MessageLog) (*ChatbotService, *fakeGateway) {
	t.Helper()
	gateway := newFakeGateway(nil)
	engine := newTestEngine(t, gateway)
	return NewChatbotService(engine, gateway, log, nil), gateway
}

func TestChatbotServiceProcessMessage(t *testing.T) {
	log := &recordingLog{}
	svc, _ := newTestChatbot(t, log)

	resp, err := svc.ProcessMessage(context.Background(), models.ChatRequest{Message: "  hello ", SessionID: "web-1"})
	require.NoError(t, err)
	assert.Equal(t, models.ResponseGreeting, resp.Type)
	assert.Equal(t, "web-1", resp.SessionID)
	assert.Len(t, resp.Actions, len(mainMenu))

	require.Len(t, log.messages, 1)
	saved := log.messages[0]
	assert.Equal(t, "hello", saved.UserMessage)
	assert.Equal(t, models.ChannelWeb, saved.Channel)
	assert.Equal(t, models.ResponseGreeting, saved.ResponseType)
	assert.Equal(t, "idle", saved.State)
}

func TestChatbotServiceBookingRoundTrip(t *testing.T) {
	svc, _ := newTestChatbot(t, nil)
	ctx := context.Background()

	var resp *models.ChatResponse
	for _, m := range []string{"cardiology", "Dr. Garcia", "Jane Doe", "786-595-3900", "10:00"} {
		var err error
		resp, err = svc.ProcessMessage(ctx, models.ChatRequest{Message: m, SessionID: "web-2", Channel: models.ChannelWebSocket})
		require.NoError(t, err)
	}

	require.Equal(t, models.ResponseBookingConfirmation, resp.Type)
	require.NotNil(t, resp.AppointmentID)

	appt, err := svc.GetAppointment(ctx, *resp.AppointmentID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", appt.PatientName)

	_, err = svc.GetAppointment(ctx, 999)
	assert.ErrorIs(t, err, models.ErrAppointmentNotFound)
}

func TestChatbotServiceValidation(t *testing.T) {
	svc, _ := newTestChatbot(t, nil)

	_, err := svc.ProcessMessage(context.Background(), models.ChatRequest{Message: "   ", SessionID: "x"})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.ProcessMessage(context.Background(), models.ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, ErrEmptySessionID)
}

func TestChatbotServiceIgnoresLogFailures(t *testing.T) {
	log := &recordingLog{err: errors.New("disk full")}
	svc, _ := newTestChatbot(t, log)

	resp, err := svc.ProcessMessage(context.Background(), models.ChatRequest{Message: "hello", SessionID: "web-3"})
	require.NoError(t, err)
	assert.Equal(t, models.ResponseGreeting, resp.Type)
}

func TestChatbotServiceSessions(t *testing.T) {
	svc, _ := newTestChatbot(t, nil)
	ctx := context.Background()

	_, err := svc.ProcessMessage(ctx, models.ChatRequest{Message: "cardiology", SessionID: "web-4"})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.ActiveSessions())

	summary, ok := svc.SessionSummary("web-4")
	require.True(t, ok)
	assert.Equal(t, models.StateCollectingDoctor, summary.State)

	assert.True(t, svc.ResetSession("web-4"))
	_, ok = svc.SessionSummary("web-4")
	assert.False(t, ok)
	assert.Equal(t, 0, svc.ActiveSessions())
}
