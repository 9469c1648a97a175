package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clinic-booking-chatbot/services"
	"clinic-booking-chatbot/utils"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	store          Pinger
	chatbotService *services.ChatbotService
	whatsapp       *services.WhatsAppService
	logger         *zap.Logger
}

func NewHealthController(store Pinger, chatbotService *services.ChatbotService, whatsapp *services.WhatsAppService, logger *zap.Logger) *HealthController {
	return &HealthController{
		store:          store,
		chatbotService: chatbotService,
		whatsapp:       whatsapp,
		logger:         utils.OrNop(logger),
	}
}

// Health answers 200 when the store responds and 503 otherwise.
func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code, storeStatus := "ok", http.StatusOK, "ok"
	if err := hc.store.Ping(ctx); err != nil {
		hc.logger.Warn("Health check failed", zap.Error(err))
		status, code, storeStatus = "degraded", http.StatusServiceUnavailable, err.Error()
	}

	c.JSON(code, gin.H{
		"status":              status,
		"timestamp":           time.Now(),
		"store":               storeStatus,
		"active_sessions":     hc.chatbotService.ActiveSessions(),
		"whatsapp_configured": hc.whatsapp.Enabled(),
	})
}
