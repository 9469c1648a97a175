package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"clinic-booking-chatbot/controllers"
	"clinic-booking-chatbot/middleware"
)

// Dependencies bundles what the HTTP layer needs.
type Dependencies struct {
	Chatbot   *controllers.ChatbotController
	WebSocket *controllers.WebSocketController
	WhatsApp  *controllers.WhatsAppController
	Health    *controllers.HealthController

	RateLimiter    *middleware.RateLimiter
	AppSecret      string
	AllowedOrigins []string
	Gatherer       prometheus.Gatherer
	Logger         *zap.Logger
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: !containsWildcard(origins),
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RequestLogger(deps.Logger))

	router.GET("/health", deps.Health.Health)
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Public routes
	public := router.Group("/api/v1")
	if deps.RateLimiter != nil {
		public.Use(deps.RateLimiter.Middleware(deps.Logger))
	}
	{
		public.POST("/chat", deps.Chatbot.HandleChat)
		public.GET("/intents", deps.Chatbot.GetSupportedIntents)
		public.GET("/sessions/:id", deps.Chatbot.GetSession)
		public.DELETE("/sessions/:id", deps.Chatbot.ResetSession)
		public.GET("/appointments/:id", deps.Chatbot.GetAppointment)

		// WebSocket for real-time chat
		public.GET("/ws", deps.WebSocket.HandleWebSocket)
	}

	// WhatsApp routes
	whatsapp := router.Group("/api/whatsapp")
	{
		whatsapp.GET("/webhook", deps.WhatsApp.VerifyWebhook)
		whatsapp.POST("/webhook", middleware.VerifyWhatsAppSignature(deps.AppSecret, deps.Logger), deps.WhatsApp.HandleWebhook)

		admin := whatsapp.Group("/admin")
		if deps.RateLimiter != nil {
			admin.Use(deps.RateLimiter.Middleware(deps.Logger))
		}
		admin.POST("/send", deps.WhatsApp.SendMessage)
		admin.GET("/status", deps.WhatsApp.GetStatus)
	}

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Route not found",
			"path":  c.Request.URL.Path,
		})
	})
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
