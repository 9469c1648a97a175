package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"clinic-booking-chatbot/models"
	"clinic-booking-chatbot/utils"
)

const doctorsKeyPrefix = "clinic:doctors:"

// CachedStore serves doctor lookups from redis and delegates everything
// else to the wrapped store. Redis failures fall through to the store.
type CachedStore struct {
	Store
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedStore{Store: inner, client: client, ttl: ttl, logger: utils.OrNop(logger)}
}

func doctorsKey(specialty string) string {
	return fmt.Sprintf("%s%s", doctorsKeyPrefix, strings.ToLower(strings.TrimSpace(specialty)))
}

func (c *CachedStore) GetAvailableDoctors(ctx context.Context, specialty string) ([]models.Doctor, error) {
	key := doctorsKey(specialty)

	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var doctors []models.Doctor
		if err := json.Unmarshal([]byte(val), &doctors); err == nil {
			return doctors, nil
		}
		c.logger.Warn("Discarding corrupt catalog cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	doctors, err := c.Store.GetAvailableDoctors(ctx, specialty)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(doctors)
	if err != nil {
		return doctors, nil
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
	return doctors, nil
}

// Invalidate drops every cached doctor list.
func (c *CachedStore) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, doctorsKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Ping checks both redis and the wrapped store.
func (c *CachedStore) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return c.Store.Ping(ctx)
}

func (c *CachedStore) Close(ctx context.Context) error {
	err := c.Store.Close(ctx)
	if cerr := c.client.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
