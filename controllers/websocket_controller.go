package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"clinic-booking-chatbot/models"
	"clinic-booking-chatbot/services"
	"clinic-booking-chatbot/utils"
)

// wsMessage is one client frame.
type wsMessage struct {
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

type WebSocketController struct {
	chatbotService *services.ChatbotService
	upgrader       websocket.Upgrader
	logger         *zap.Logger
}

// NewWebSocketController accepts connections from allowedOrigins; "*" or
// an empty list accepts any origin.
func NewWebSocketController(chatbotService *services.ChatbotService, allowedOrigins []string, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{
		chatbotService: chatbotService,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
		logger: utils.OrNop(logger),
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// HandleWebSocket runs one conversation over a socket. Without a
// session_id query parameter a fresh id is issued in the first frame.
func (wc *WebSocketController) HandleWebSocket(c *gin.Context) {
	conn, err := wc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		wc.logger.Warn("WebSocket upgrade error", zap.Error(err))
		return
	}
	defer conn.Close()

	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	if err := conn.WriteJSON(gin.H{"session_id": sessionID}); err != nil {
		return
	}

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				wc.logger.Warn("WebSocket read error", zap.String("session_id", sessionID), zap.Error(err))
			}
			return
		}

		response, err := wc.chatbotService.ProcessMessage(c.Request.Context(), models.ChatRequest{
			Message:   msg.Message,
			SessionID: sessionID,
			UserID:    msg.UserID,
			Channel:   models.ChannelWebSocket,
		})
		if err != nil {
			if werr := conn.WriteJSON(gin.H{"error": "Failed to process message", "details": err.Error()}); werr != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(response); err != nil {
			wc.logger.Warn("WebSocket write error", zap.String("session_id", sessionID), zap.Error(err))
			return
		}
	}
}
