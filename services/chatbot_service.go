package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"clinic-booking-chatbot/models"
	"clinic-booking-chatbot/utils"
)

// MessageLog records chat exchanges for audit.
type MessageLog interface {
	SaveMessage(ctx context.Context, message *models.Message) error
}

// ErrEmptyMessage rejects a request whose message is blank.
var ErrEmptyMessage = errors.New("message is required")

// ChatbotService is the transport-facing entry point to the engine.
type ChatbotService struct {
	engine  *ConversationEngine
	gateway SchedulingGateway
	log     MessageLog
	logger  *zap.Logger
}

// NewChatbotService wires the facade. messageLog may be nil.
func NewChatbotService(engine *ConversationEngine, gateway SchedulingGateway, messageLog MessageLog, logger *zap.Logger) *ChatbotService {
	return &ChatbotService{
		engine:  engine,
		gateway: gateway,
		log:     messageLog,
		logger:  utils.OrNop(logger),
	}
}

func (s *ChatbotService) ProcessMessage(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return nil, ErrEmptyMessage
	}
	if req.SessionID == "" {
		return nil, ErrEmptySessionID
	}
	if req.Channel == "" {
		req.Channel = models.ChannelWeb
	}

	resp, err := s.engine.ProcessMessage(ctx, req.Message, req.SessionID)
	if err != nil {
		return nil, err
	}

	out := models.ToChatResponse(resp)
	out.SessionID = req.SessionID

	if s.log != nil {
		state := ""
		if summary, ok := s.engine.Sessions().Summary(req.SessionID); ok {
			state = summary.State.String()
		}
		message := &models.Message{
			SessionID:    req.SessionID,
			UserMessage:  req.Message,
			BotResponse:  out.Response,
			ResponseType: out.Type,
			State:        state,
			Timestamp:    time.Now(),
			UserID:       req.UserID,
			Channel:      req.Channel,
		}
		if err := s.log.SaveMessage(ctx, message); err != nil {
			s.logger.Warn("Failed to record message", zap.String("session_id", req.SessionID), zap.Error(err))
		}
	}
	return out, nil
}

func (s *ChatbotService) SessionSummary(sessionID string) (models.SessionSummary, bool) {
	return s.engine.Sessions().Summary(sessionID)
}

func (s *ChatbotService) ResetSession(sessionID string) bool {
	return s.engine.Sessions().Reset(sessionID)
}

func (s *ChatbotService) ActiveSessions() int {
	return s.engine.Sessions().Len()
}

func (s *ChatbotService) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	appt, err := s.gateway.GetAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment %d: %w", id, err)
	}
	return appt, nil
}
