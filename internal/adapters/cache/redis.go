// Package cache keeps computed forecasts in Redis, keyed by request
// fingerprint.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/model"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/metrics"
)

const (
	defaultTTL    = time.Hour
	defaultPrefix = "geodash:forecast:"
)

// ErrCacheMiss is returned by Get when no forecast is cached for a fingerprint.
var ErrCacheMiss = errors.New("forecast not cached")

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Redis is a forecast cache.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis creates a cache client. It does not dial until the first command.
func NewRedis(cfg Config) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	return NewRedisWithClient(rdb, cfg.TTL)
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{client: client, ttl: ttl, prefix: defaultPrefix}
}

func (c *Redis) key(fingerprint string) string { return c.prefix + fingerprint }

// Get returns the cached forecast for fingerprint.
func (c *Redis) Get(ctx context.Context, fingerprint string) (model.ForecastResult, error) {
	raw, err := c.client.Get(ctx, c.key(fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheRequest("miss")
		return model.ForecastResult{}, ErrCacheMiss
	}
	if err != nil {
		metrics.RecordCacheRequest("error")
		return model.ForecastResult{}, fmt.Errorf("redis get: %w", err)
	}

	var res model.ForecastResult
	if err := json.Unmarshal(raw, &res); err != nil {
		metrics.RecordCacheRequest("error")
		return model.ForecastResult{}, fmt.Errorf("decode cached forecast: %w", err)
	}
	metrics.RecordCacheRequest("hit")
	return res, nil
}

// Set caches res for the configured TTL.
func (c *Redis) Set(ctx context.Context, fingerprint string, res model.ForecastResult) error { //nolint:gocritic // hugeParam: value semantics
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode forecast: %w", err)
	}
	if err := c.client.Set(ctx, c.key(fingerprint), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping tests the Redis connection.
func (c *Redis) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *Redis) Close() error {
	return c.client.Close()
}
