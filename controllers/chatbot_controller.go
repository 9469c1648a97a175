package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clinic-booking-chatbot/models"
	"clinic-booking-chatbot/services"
	"clinic-booking-chatbot/utils"
)

type ChatbotController struct {
	chatbotService *services.ChatbotService
	logger         *zap.Logger
}

func NewChatbotController(chatbotService *services.ChatbotService, logger *zap.Logger) *ChatbotController {
	return &ChatbotController{
		chatbotService: chatbotService,
		logger:         utils.OrNop(logger),
	}
}

// HandleChat processes chat messages
func (cc *ChatbotController) HandleChat(c *gin.Context) {
	var req models.ChatRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}
	if req.Channel == "" {
		req.Channel = models.ChannelWeb
	}

	response, err := cc.chatbotService.ProcessMessage(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, services.ErrEmptyMessage), errors.Is(err, services.ErrEmptySessionID):
			status = http.StatusBadRequest
		case errors.Is(err, services.ErrSessionClosed):
			status = http.StatusConflict
		}
		if status == http.StatusInternalServerError {
			cc.logger.Error("Failed to process message", zap.String("session_id", req.SessionID), zap.Error(err))
		}
		c.JSON(status, gin.H{
			"error":   "Failed to process message",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetSession returns a snapshot of a live conversation.
func (cc *ChatbotController) GetSession(c *gin.Context) {
	summary, ok := cc.chatbotService.SessionSummary(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ResetSession discards a conversation so the next message starts over.
func (cc *ChatbotController) ResetSession(c *gin.Context) {
	id := c.Param("id")
	if !cc.chatbotService.ResetSession(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session reset", "session_id": id})
}

func (cc *ChatbotController) GetAppointment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment id"})
		return
	}

	appt, err := cc.chatbotService.GetAppointment(c.Request.Context(), id)
	if errors.Is(err, models.ErrAppointmentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		return
	}
	if err != nil {
		cc.logger.Error("Appointment lookup failed", zap.Int64("appointment_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve appointment"})
		return
	}
	c.JSON(http.StatusOK, appt)
}

// GetSupportedIntents returns list of supported intents
func (cc *ChatbotController) GetSupportedIntents(c *gin.Context) {
	intents := []gin.H{
		{
			"intent":      models.IntentBookAppointment,
			"description": "Book an appointment with a specialist",
			"examples":    []string{"I want to book an appointment", "I need to see a cardiologist", "Dr. Garcia please"},
		},
		{
			"intent":      models.IntentCheckAppointment,
			"description": "Look up existing appointments by name or ID",
			"examples":    []string{"Check my appointment", "Show appointments"},
		},
		{
			"intent":      models.IntentCancelAppointment,
			"description": "Cancel an appointment by ID",
			"examples":    []string{"Cancel appointment #12", "I need to cancel"},
		},
		{
			"intent":      models.IntentGetInfo,
			"description": "Hospital hours, location, contact and billing information",
			"examples":    []string{"What are your hours?", "Where are you located?", "Do you take insurance?"},
		},
		{
			"intent":      models.IntentGreeting,
			"description": "Start over and show the main menu",
			"examples":    []string{"Hello", "Start over"},
		},
	}

	c.JSON(http.StatusOK, gin.H{
		"intents": intents,
	})
}
