package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/model"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), ttl)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedis_GetSet(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, err := c.Get(ctx, "fp-1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	want := model.ForecastResult{
		Points: []model.ForecastPoint{{Year: 2024, Price: 1_000_000}, {Year: 2025, Price: 1_640_000}},
		Score:  0.6,
		Mode:   model.ModeFallback,
	}
	require.NoError(t, c.Set(ctx, "fp-1", want))
	assert.True(t, mr.Exists("geodash:forecast:fp-1"))
	assert.Equal(t, time.Minute, mr.TTL("geodash:forecast:fp-1"))

	got, err := c.Get(ctx, "fp-1")
	require.NoError(t, err)
	assert.Equal(t, want.Points, got.Points)
	assert.Equal(t, model.ModeFallback, got.Mode)

	mr.FastForward(2 * time.Minute)
	_, err = c.Get(ctx, "fp-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedis_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t, 0)
	require.NoError(t, mr.Set("geodash:forecast:bad", "not-json"))

	_, err := c.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestRedis_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	c := NewRedisWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}), 0)
	defer c.Close()
	mr.Close()

	assert.Error(t, c.Ping(context.Background()))
	_, err = c.Get(context.Background(), "fp")
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
