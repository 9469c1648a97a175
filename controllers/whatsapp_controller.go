package controllers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clinic-booking-chatbot/models"
	"clinic-booking-chatbot/services"
	"clinic-booking-chatbot/utils"
)

const (
	whatsappSessionPrefix = "whatsapp:"
	webhookTimeout        = 30 * time.Second
)

const unsupportedMessageReply = "Sorry, I can only read text messages and button replies. Please type your request."

type WhatsAppController struct {
	whatsappService *services.WhatsAppService
	chatbotService  *services.ChatbotService
	verifyToken     string
	logger          *zap.Logger

	inflight sync.WaitGroup
}

func NewWhatsAppController(whatsappService *services.WhatsAppService, chatbotService *services.ChatbotService, verifyToken string, logger *zap.Logger) *WhatsAppController {
	return &WhatsAppController{
		whatsappService: whatsappService,
		chatbotService:  chatbotService,
		verifyToken:     verifyToken,
		logger:          utils.OrNop(logger),
	}
}

// VerifyWebhook handles the webhook verification request from WhatsApp
func (wc *WhatsAppController) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && wc.verifyToken != "" && token == wc.verifyToken {
		wc.logger.Info("WhatsApp webhook verified")
		c.String(http.StatusOK, challenge)
		return
	}

	wc.logger.Warn("WhatsApp webhook verification failed", zap.String("mode", mode))
	c.JSON(http.StatusForbidden, gin.H{"error": "Verification failed"})
}

// HandleWebhook acknowledges the delivery at once and answers the messages
// in the background.
func (wc *WhatsAppController) HandleWebhook(c *gin.Context) {
	var webhookData models.WhatsAppWebhookData

	if err := c.ShouldBindJSON(&webhookData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook data"})
		return
	}

	wc.inflight.Add(1)
	go func() {
		defer wc.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
		defer cancel()
		wc.processWebhookData(ctx, webhookData)
	}()

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

// Wait blocks until every webhook being processed has been answered.
func (wc *WhatsAppController) Wait() {
	wc.inflight.Wait()
}

func (wc *WhatsAppController) processWebhookData(ctx context.Context, webhookData models.WhatsAppWebhookData) {
	for _, entry := range webhookData.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			for _, message := range change.Value.Messages {
				wc.handleIncomingMessage(ctx, message)
			}
			for _, status := range change.Value.Statuses {
				wc.handleStatusUpdate(status)
			}
		}
	}
}

// handleIncomingMessage runs a WhatsApp message through the conversation
// engine. Each sender number is its own session.
func (wc *WhatsAppController) handleIncomingMessage(ctx context.Context, message models.WhatsAppMessage) {
	userID := message.From
	logger := wc.logger.With(zap.String("from", userID), zap.String("message_id", message.ID))

	if err := wc.whatsappService.MarkMessageAsRead(ctx, message.ID); err != nil {
		logger.Debug("Failed to mark message as read", zap.Error(err))
	}

	body := message.Body()
	if body == "" {
		logger.Info("Unsupported WhatsApp message type", zap.String("type", message.Type))
		if err := wc.whatsappService.SendTextMessage(ctx, userID, unsupportedMessageReply); err != nil {
			logger.Error("Failed to send reply", zap.Error(err))
		}
		return
	}

	response, err := wc.chatbotService.ProcessMessage(ctx, models.ChatRequest{
		Message:   body,
		SessionID: whatsappSessionPrefix + userID,
		UserID:    userID,
		Channel:   models.ChannelWhatsApp,
	})
	if err != nil {
		logger.Error("Failed to process WhatsApp message", zap.Error(err))
		return
	}

	if err := wc.whatsappService.SendChatResponse(ctx, userID, response); err != nil {
		logger.Error("Failed to send reply", zap.Error(err))
	}
}

func (wc *WhatsAppController) handleStatusUpdate(status models.WhatsAppStatus) {
	wc.logger.Debug("WhatsApp delivery status",
		zap.String("message_id", status.ID),
		zap.String("recipient", status.RecipientID),
		zap.String("status", status.Status),
	)
	for _, err := range status.Errors {
		wc.logger.Warn("WhatsApp delivery error",
			zap.String("message_id", status.ID),
			zap.Int("code", err.Code),
			zap.String("title", err.Title),
			zap.String("message", err.Message),
		)
	}
}

// SendMessage sends a message to a specific WhatsApp number (for notifications)
func (wc *WhatsAppController) SendMessage(c *gin.Context) {
	var req struct {
		To      string `json:"to" binding:"required"`
		Message string `json:"message" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	to := utils.NormalizeWhatsAppNumber(req.To)
	if !utils.IsPhoneNumber(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
		return
	}

	if err := wc.whatsappService.SendTextMessage(c.Request.Context(), to, req.Message); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to send message",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "sent",
		"to":     to,
	})
}

// GetStatus returns WhatsApp service status
func (wc *WhatsAppController) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, wc.whatsappService.GetStatus(wc.chatbotService.ActiveSessions()))
}
