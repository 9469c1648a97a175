package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"clinic-booking-chatbot/database"
	"clinic-booking-chatbot/models"
)

var testClinic = models.ClinicInfo{
	Name:           "Test Clinic",
	Phone:          "786-595-3900",
	Address:        "1 Test Way",
	BillingPhone:   "786-596-6507",
	InsurancePhone: "786-662-7667",
	Email:          "billing@test.example",
}

// fakeGateway counts gateway traffic on top of the in-memory store and can
// be told to fail bookings.
type fakeGateway struct {
	*database.MemoryStore

	mu         sync.Mutex
	lookups    int
	bookings   int
	bookErr    error
	doctorsErr error
}

func newFakeGateway(doctors []models.Doctor) *fakeGateway {
	return &fakeGateway{MemoryStore: database.NewMemoryStore(doctors)}
}

func (g *fakeGateway) GetAvailableDoctors(ctx context.Context, specialty string) ([]models.Doctor, error) {
	g.mu.Lock()
	g.lookups++
	err := g.doctorsErr
	g.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return g.MemoryStore.GetAvailableDoctors(ctx, specialty)
}

func (g *fakeGateway) BookAppointment(ctx context.Context, req models.BookingRequest) (int64, error) {
	g.mu.Lock()
	g.bookings++
	err := g.bookErr
	g.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return g.MemoryStore.BookAppointment(ctx, req)
}

func (g *fakeGateway) calls() (lookups, bookings int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lookups, g.bookings
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T, gateway SchedulingGateway, opts ...SessionStoreOption) *ConversationEngine {
	t.Helper()
	store := NewSessionStore(DefaultSessionTimeout, opts...)
	return NewConversationEngine(gateway, store, EngineOptions{Clinic: testClinic})
}

// send runs each message in order and returns the replies.
func send(t *testing.T, engine *ConversationEngine, sessionID string, messages ...string) []models.Response {
	t.Helper()
	replies := make([]models.Response, 0, len(messages))
	for _, m := range messages {
		resp, err := engine.ProcessMessage(context.Background(), m, sessionID)
		require.NoError(t, err, m)
		replies = append(replies, resp)
	}
	return replies
}

func last(replies []models.Response) models.Response {
	return replies[len(replies)-1]
}

func sessionOf(t *testing.T, engine *ConversationEngine, id string) models.SessionSummary {
	t.Helper()
	summary, ok := engine.Sessions().Summary(id)
	require.True(t, ok, "session %s not found", id)
	return summary
}
