package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"clinic-booking-chatbot/config"
	"clinic-booking-chatbot/controllers"
	"clinic-booking-chatbot/database"
	"clinic-booking-chatbot/metrics"
	"clinic-booking-chatbot/middleware"
	"clinic-booking-chatbot/models"
	"clinic-booking-chatbot/routes"
	"clinic-booking-chatbot/services"
	"clinic-booking-chatbot/utils"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := config.Get()

	utils.InitializeLogger(cfg.Environment)
	logger := utils.GetLogger()
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	store, err := database.Connect(connectCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("type", cfg.Database.Type), zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	chatbotMetrics := metrics.NewChatbotMetrics(registry)

	sessions := services.NewSessionStore(cfg.Session.Timeout,
		services.WithSessionMetrics(chatbotMetrics),
		services.WithSessionLogger(logger),
	)
	go sessions.RunJanitor(ctx, cfg.Session.SweepInterval)

	engine := services.NewConversationEngine(store, sessions, services.EngineOptions{
		Clinic: models.ClinicInfo{
			Name:           cfg.Clinic.Name,
			Phone:          cfg.Clinic.Phone,
			Address:        cfg.Clinic.Address,
			BillingPhone:   cfg.Clinic.BillingPhone,
			InsurancePhone: cfg.Clinic.InsurancePhone,
			Email:          cfg.Clinic.Email,
		},
		PlaceholderDate: cfg.Clinic.PlaceholderDate,
		Metrics:         chatbotMetrics,
		Logger:          logger,
	})

	var messageLog services.MessageLog
	if rec, ok := database.MessageRecorderOf(store); ok {
		messageLog = rec
	}
	chatbotService := services.NewChatbotService(engine, store, messageLog, logger)

	whatsappService := services.NewWhatsAppService(services.WhatsAppOptions{
		APIURL:        cfg.WhatsApp.APIURL,
		APIVersion:    cfg.WhatsApp.APIVersion,
		AccessToken:   cfg.WhatsApp.AccessToken,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		ClinicName:    cfg.Clinic.Name,
	}, logger)
	if !whatsappService.Enabled() || cfg.WhatsApp.VerifyToken == "" {
		logger.Warn("WhatsApp integration is not fully configured",
			zap.Bool("credentials", whatsappService.Enabled()),
			zap.Bool("verify_token", cfg.WhatsApp.VerifyToken != ""),
		)
	}
	whatsappController := controllers.NewWhatsAppController(whatsappService, chatbotService, cfg.WhatsApp.VerifyToken, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		logger.Fatal("Invalid TRUSTED_PROXIES", zap.Error(err))
	}
	rateLimiter := middleware.NewRateLimiter(cfg.Security.RateLimitPerMin, cfg.Security.RateLimitBurst)
	go rateLimiter.RunJanitor(ctx, time.Minute)

	routes.SetupRoutes(router, routes.Dependencies{
		Chatbot:        controllers.NewChatbotController(chatbotService, logger),
		WebSocket:      controllers.NewWebSocketController(chatbotService, cfg.Security.AllowedOrigins, logger),
		WhatsApp:       whatsappController,
		Health:         controllers.NewHealthController(store, chatbotService, whatsappService, logger),
		RateLimiter:    rateLimiter,
		AppSecret:      cfg.WhatsApp.AppSecret,
		AllowedOrigins: cfg.Security.AllowedOrigins,
		Gatherer:       registry,
		Logger:         logger,
	})

	for _, route := range router.Routes() {
		logger.Debug("Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("database", cfg.Database.Type),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	whatsappController.Wait()

	logger.Info("Server exited", zap.Int("open_sessions", sessions.Len()))
}
