package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"clinic-booking-chatbot/config"
	"clinic-booking-chatbot/models"
	"clinic-booking-chatbot/utils"
)

// Store is a scheduling store with a lifecycle.
type Store interface {
	GetAvailableDoctors(ctx context.Context, specialty string) ([]models.Doctor, error)
	BookAppointment(ctx context.Context, req models.BookingRequest) (int64, error)
	GetAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	FindAppointments(ctx context.Context, patientName string) ([]models.Appointment, error)
	CancelAppointment(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Connect opens the store selected by the configuration and, when a redis
// address is configured, wraps it in the catalog cache.
func Connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	logger = utils.OrNop(logger)
	doctors, err := LoadCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}

	var store Store
	switch cfg.Database.Type {
	case config.DatabaseMemory:
		store = NewMemoryStore(doctors)
	case config.DatabaseMongoDB:
		store, err = ConnectMongoDB(ctx, cfg, doctors, logger)
	case config.DatabasePostgres:
		store, err = ConnectPostgres(ctx, cfg, doctors, logger)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Redis.Addr == "" {
		return store, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, catalog cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		client.Close()
		return store, nil
	}
	cached := NewCachedStore(store, client, cfg.Redis.CacheTTL, logger)
	// The catalog was just loaded; lists cached by an earlier run may be stale.
	if err := cached.Invalidate(ctx); err != nil {
		logger.Warn("Failed to clear catalog cache", zap.Error(err))
	}
	return cached, nil
}

// MessageRecorder is implemented by stores that keep chat transcripts.
type MessageRecorder interface {
	SaveMessage(ctx context.Context, message *models.Message) error
}

// MessageRecorderOf returns the transcript sink behind store, looking
// through the catalog cache.
func MessageRecorderOf(store Store) (MessageRecorder, bool) {
	if cached, ok := store.(*CachedStore); ok {
		store = cached.Store
	}
	rec, ok := store.(MessageRecorder)
	return rec, ok
}
