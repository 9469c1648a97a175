package services

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"clinic-booking-chatbot/metrics"
	"clinic-booking-chatbot/models"
	"clinic-booking-chatbot/utils"
)

// DefaultPlaceholderDate is booked when no date is collected.
const DefaultPlaceholderDate = "2024-02-15"

var (
	appointmentRefPattern  = regexp.MustCompile(`(?:#\s*|\b(?:id|cancel|appointment)\s+#?)(\d+)\b`)
	bareAppointmentPattern = regexp.MustCompile(`^#?\s*(\d+)$`)
)

// EngineOptions configures a ConversationEngine. Zero values select the
// built-in lexicon, an empty clinic profile and the default placeholder date.
type EngineOptions struct {
	Lexicon         *utils.Lexicon
	Clinic          models.ClinicInfo
	PlaceholderDate string
	FAQs            []FAQEntry
	Metrics         *metrics.ChatbotMetrics
	Logger          *zap.Logger
}

// ConversationEngine is the booking state machine. It is safe for
// concurrent use; messages of one session are processed one at a time.
type ConversationEngine struct {
	nlp             *utils.NLPPipeline
	lexicon         *utils.Lexicon
	sessions        *SessionStore
	gateway         SchedulingGateway
	replies         replyBuilder
	faqs            []FAQEntry
	placeholderDate string
	metrics         *metrics.ChatbotMetrics
	logger          *zap.Logger
}

func NewConversationEngine(gateway SchedulingGateway, sessions *SessionStore, opts EngineOptions) *ConversationEngine {
	lexicon := opts.Lexicon
	if lexicon == nil {
		lexicon = utils.DefaultLexicon()
	}
	date := opts.PlaceholderDate
	if date == "" {
		date = DefaultPlaceholderDate
	}
	faqs := opts.FAQs
	if faqs == nil {
		faqs = defaultFAQs(opts.Clinic)
	}
	return &ConversationEngine{
		nlp:             utils.NewNLPPipeline(lexicon),
		lexicon:         lexicon,
		sessions:        sessions,
		gateway:         gateway,
		replies:         replyBuilder{clinic: opts.Clinic, lexicon: lexicon},
		faqs:            faqs,
		placeholderDate: date,
		metrics:         opts.Metrics,
		logger:          utils.OrNop(opts.Logger),
	}
}

// Sessions exposes the store the engine reads and writes.
func (e *ConversationEngine) Sessions() *SessionStore {
	return e.sessions
}

// ProcessMessage runs one turn. Every conversational outcome, including
// invalid input and booking failures, is a Response; an error is returned
// only for an empty session id or a session reset mid-turn.
func (e *ConversationEngine) ProcessMessage(ctx context.Context, text, sessionID string) (models.Response, error) {
	sess, err := e.sessions.GetOrCreate(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed.Load() {
		return nil, ErrSessionClosed
	}

	result := e.nlp.Process(text)
	sess.appendTurn(models.RoleUser, text, "", e.sessions.now())

	from := sess.State
	resp := e.route(ctx, sess, result)

	sess.appendTurn(models.RoleBot, resp.Text(), resp.Type(), e.sessions.now())
	e.metrics.ObserveTurn(string(resp.Type()))
	e.logger.Debug("Processed message",
		zap.String("session_id", sessionID),
		zap.String("intent", string(result.Intent)),
		zap.Stringer("from", from),
		zap.Stringer("state", sess.State),
		zap.String("type", string(resp.Type())),
	)
	return resp, nil
}

func (e *ConversationEngine) route(ctx context.Context, sess *Session, result models.NLPResult) models.Response {
	if result.Context.IsEmergency {
		sess.State = models.StateHandlingEmergency
		e.metrics.ObserveEmergency()
		e.logger.Warn("Emergency detected",
			zap.String("session_id", sess.ID),
			zap.Strings("urgency", result.Entities.Urgency),
		)
		return e.replies.emergency()
	}

	if result.Intent == models.IntentGreeting {
		sess.reset()
		return e.replies.welcome()
	}

	switch sess.State {
	case models.StateCollectingSpecialty, models.StateCollectingDoctor, models.StateCollectingPatientName,
		models.StateCollectingPhone, models.StateCollectingDateTime:
		return e.continueBooking(ctx, sess, result, true)
	case models.StateConfirming:
		// Only a failed booking leaves a session here; a cancel drops it
		// instead of re-submitting.
		if result.Intent == models.IntentCancelAppointment {
			sess.reset()
			return e.replies.bookingAbandoned()
		}
		return e.continueBooking(ctx, sess, result, false)
	case models.StateCheckingAppointment:
		return e.lookupAppointments(ctx, sess, result.Text)
	case models.StateHandlingEmergency:
		if !sess.Booking.IsEmpty() {
			return e.continueBooking(ctx, sess, result, false)
		}
		sess.State = models.StateIdle
		return e.routeIdle(ctx, sess, result)
	case models.StateIdle:
		return e.routeIdle(ctx, sess, result)
	}

	e.logger.Error("Session in unknown state, resetting", zap.String("session_id", sess.ID), zap.Stringer("state", sess.State))
	sess.reset()
	return e.replies.fallback()
}

func (e *ConversationEngine) routeIdle(ctx context.Context, sess *Session, result models.NLPResult) models.Response {
	switch result.Intent {
	case models.IntentBookAppointment:
		return e.startBooking(ctx, sess, result)
	case models.IntentCheckAppointment:
		sess.State = models.StateCheckingAppointment
		return e.replies.checkPrompt()
	case models.IntentCancelAppointment:
		return e.cancelAppointment(ctx, result.Text)
	case models.IntentGetInfo:
		return e.replies.info(result.Text)
	}

	if len(result.Entities.Specialties) > 0 || len(result.Entities.Doctors) > 0 {
		return e.startBooking(ctx, sess, result)
	}
	if containsAny(strings.ToLower(result.Text), faqMenuKeyword) {
		return faqMenu(e.faqs)
	}
	if faq, ok := matchFAQ(e.faqs, result.Text); ok {
		return faqAnswer(faq)
	}
	return e.replies.fallback()
}

func (e *ConversationEngine) startBooking(ctx context.Context, sess *Session, result models.NLPResult) models.Response {
	sess.Attempts = 0
	return e.continueBooking(ctx, sess, result, false)
}

// lookupAppointments answers the CHECKING_APPOINTMENT prompt with either an
// appointment id or a patient name, then returns to IDLE.
func (e *ConversationEngine) lookupAppointments(ctx context.Context, sess *Session, text string) models.Response {
	text = strings.TrimSpace(text)

	if id, ok := parseID(bareAppointmentPattern, text); ok {
		sess.State = models.StateIdle
		appt, err := e.gateway.GetAppointment(ctx, id)
		if err != nil {
			if errors.Is(err, models.ErrAppointmentNotFound) {
				return e.replies.appointmentNotFound(id)
			}
			e.logger.Error("Appointment lookup failed", zap.Int64("appointment_id", id), zap.Error(err))
			return e.replies.lookupFailed(err)
		}
		return e.replies.appointmentList(appt.PatientName, []models.Appointment{*appt})
	}

	if len([]rune(text)) <= 1 {
		sess.Attempts++
		return e.replies.retry(models.SlotPatientName, nil, sess.Attempts)
	}

	sess.State = models.StateIdle
	sess.Attempts = 0
	appointments, err := e.gateway.FindAppointments(ctx, text)
	if err != nil {
		e.logger.Error("Appointment search failed", zap.String("session_id", sess.ID), zap.Error(err))
		return e.replies.lookupFailed(err)
	}
	return e.replies.appointmentList(text, appointments)
}

func (e *ConversationEngine) cancelAppointment(ctx context.Context, text string) models.Response {
	id, ok := parseID(appointmentRefPattern, strings.ToLower(text))
	if !ok {
		return e.replies.cancelInstructions()
	}
	if err := e.gateway.CancelAppointment(ctx, id); err != nil {
		if errors.Is(err, models.ErrAppointmentNotFound) {
			return e.replies.appointmentNotFound(id)
		}
		e.logger.Error("Cancellation failed", zap.Int64("appointment_id", id), zap.Error(err))
		return e.replies.lookupFailed(err)
	}
	e.logger.Info("Appointment cancelled", zap.Int64("appointment_id", id))
	return e.replies.cancelled(id)
}

// parseID extracts the appointment id captured by pattern.
func parseID(pattern *regexp.Regexp, text string) (int64, bool) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
