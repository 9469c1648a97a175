package routes

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-booking-chatbot/controllers"
	"clinic-booking-chatbot/database"
	"clinic-booking-chatbot/metrics"
	"clinic-booking-chatbot/middleware"
	"clinic-booking-chatbot/services"
)

const appSecret = "shh"

func newRouter(t *testing.T, limiter *middleware.RateLimiter) (*gin.Engine, *controllers.WhatsAppController) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	m := metrics.NewChatbotMetrics(reg)

	store := database.NewMemoryStore(nil)
	engine := services.NewConversationEngine(store, services.NewSessionStore(0, services.WithSessionMetrics(m)), services.EngineOptions{Metrics: m})
	chatbot := services.NewChatbotService(engine, store, nil, nil)
	// Unconfigured client: replies fail and are only logged.
	wa := services.NewWhatsAppService(services.WhatsAppOptions{}, nil)
	whatsapp := controllers.NewWhatsAppController(wa, chatbot, "verify-me", nil)

	router := gin.New()
	SetupRoutes(router, Dependencies{
		Chatbot:     controllers.NewChatbotController(chatbot, nil),
		WebSocket:   controllers.NewWebSocketController(chatbot, nil, nil),
		WhatsApp:    whatsapp,
		Health:      controllers.NewHealthController(store, chatbot, wa, nil),
		RateLimiter: limiter,
		AppSecret:   appSecret,
		Gatherer:    reg,
	})
	return router, whatsapp
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func chatRequest(message string) *http.Request {
	body := `{"message":"` + message + `","session_id":"r1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestMetricsEndpointReportsTurns(t *testing.T) {
	router, _ := newRouter(t, nil)

	require.Equal(t, http.StatusOK, serve(router, chatRequest("hello")).Code)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `clinic_chatbot_turns_total{type="greeting"} 1`)
	assert.Contains(t, w.Body.String(), "clinic_chatbot_active_sessions 1")
}

func TestNoRoute(t *testing.T) {
	router, _ := newRouter(t, nil)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Route not found")
}

func sign(body []byte) string {
	h := hmac.New(sha256.New, []byte(appSecret))
	h.Write(body)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}

func TestWebhookRequiresSignature(t *testing.T) {
	router, whatsapp := newRouter(t, nil)
	body := []byte(`{"object":"whatsapp_business_account","entry":[]}`)

	req := httptest.NewRequest(http.MethodPost, "/api/whatsapp/webhook", bytes.NewReader(body))
	assert.Equal(t, http.StatusUnauthorized, serve(router, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/api/whatsapp/webhook", bytes.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", "sha256=deadbeef")
	assert.Equal(t, http.StatusUnauthorized, serve(router, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/api/whatsapp/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Hub-Signature-256", sign(body))
	assert.Equal(t, http.StatusOK, serve(router, req).Code)
	whatsapp.Wait()
}

func TestPublicRoutesAreRateLimited(t *testing.T) {
	router, _ := newRouter(t, middleware.NewRateLimiter(1, 2))

	assert.Equal(t, http.StatusOK, serve(router, chatRequest("hello")).Code)
	assert.Equal(t, http.StatusOK, serve(router, chatRequest("hello")).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(router, chatRequest("hello")).Code)

	// Health and the webhook sit outside the limited groups.
	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := serve(router, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
