package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"clinic-booking-chatbot/metrics"
	"clinic-booking-chatbot/models"
	"clinic-booking-chatbot/utils"
)

// DefaultSessionTimeout is the idle period after which a session starts over.
const DefaultSessionTimeout = 180 * time.Second

var (
	ErrEmptySessionID = errors.New("session id is required")
	ErrSessionClosed  = errors.New("session was reset while a message was being processed")
)

// Session is one conversation. Fields other than lastActivity are guarded
// by mu and mutated only by the conversation engine.
type Session struct {
	mu sync.Mutex

	ID        string
	State     models.ConversationState
	Booking   models.BookingData
	Urgency   string
	Attempts  int
	History   []models.Turn
	CreatedAt time.Time

	lastActivity time.Time // guarded by SessionStore.mu
	closed       atomic.Bool
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		State:        models.StateIdle,
		CreatedAt:    now,
		lastActivity: now,
	}
}

// reset returns the session to IDLE with no collected data.
func (s *Session) reset() {
	s.State = models.StateIdle
	s.Booking.Reset()
	s.Urgency = ""
	s.Attempts = 0
}

func (s *Session) appendTurn(role models.TurnRole, text string, rt models.ResponseType, at time.Time) {
	s.History = append(s.History, models.Turn{Role: role, Text: text, ResponseType: rt, Timestamp: at})
}

// SessionStore maps session ids to sessions. The map is the only state
// shared across conversations.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	timeout  time.Duration
	now      func() time.Time
	metrics  *metrics.ChatbotMetrics
	logger   *zap.Logger
}

type SessionStoreOption func(*SessionStore)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) SessionStoreOption {
	return func(s *SessionStore) { s.now = now }
}

func WithSessionMetrics(m *metrics.ChatbotMetrics) SessionStoreOption {
	return func(s *SessionStore) { s.metrics = m }
}

func WithSessionLogger(l *zap.Logger) SessionStoreOption {
	return func(s *SessionStore) { s.logger = utils.OrNop(l) }
}

// NewSessionStore creates a store. A non-positive timeout falls back to
// DefaultSessionTimeout.
func NewSessionStore(timeout time.Duration, opts ...SessionStoreOption) *SessionStore {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	s := &SessionStore{
		sessions: make(map[string]*Session),
		timeout:  timeout,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStore) expired(sess *Session, now time.Time) bool {
	return now.Sub(sess.lastActivity) > s.timeout
}

// GetOrCreate returns the live session for id, creating an IDLE one on first
// access or after the previous one went idle past the timeout. Every call
// counts as activity.
func (s *SessionStore) GetOrCreate(id string) (*Session, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if ok && s.expired(sess, now) {
		s.logger.Debug("Session expired, starting over", zap.String("session_id", id))
		sess.closed.Store(true)
		ok = false
	}
	if !ok {
		sess = newSession(id, now)
		s.sessions[id] = sess
		s.metrics.SetActiveSessions(len(s.sessions))
	}
	sess.lastActivity = now
	return sess, nil
}

// Get returns a live session without touching it.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess, s.now()) {
		return nil, false
	}
	return sess, true
}

// Reset discards the session. The next message starts a fresh conversation.
func (s *SessionStore) Reset(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.closed.Store(true)
	delete(s.sessions, id)
	s.metrics.SetActiveSessions(len(s.sessions))
	return true
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Summary snapshots a live session.
func (s *SessionStore) Summary(id string) (models.SessionSummary, bool) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok || s.expired(sess, s.now()) {
		s.mu.Unlock()
		return models.SessionSummary{}, false
	}
	lastActivity := sess.lastActivity
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return models.SessionSummary{
		SessionID:          sess.ID,
		State:              sess.State,
		ConversationLength: len(sess.History),
		BookingData:        sess.Booking,
		CreatedAt:          sess.CreatedAt,
		LastActivity:       lastActivity,
	}, true
}

// Sweep evicts every expired session and returns how many it removed.
func (s *SessionStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			sess.closed.Store(true)
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.metrics.SetActiveSessions(len(s.sessions))
	}
	return removed
}

// RunJanitor sweeps expired sessions every interval until ctx is done.
func (s *SessionStore) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("Evicted idle sessions", zap.Int("count", n), zap.Int("remaining", s.Len()))
			}
		}
	}
}
