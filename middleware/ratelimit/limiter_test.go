package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 10, cfg.Limit)
	assert.Equal(t, time.Minute, cfg.Window)
	assert.Equal(t, "ratelimit:", cfg.KeyPrefix)
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	for _, opt := range []Option{
		WithRedisAddr("redis.example.com:6380"),
		WithRedisPassword("secret123"),
		WithRedisDB(5),
		WithLimit(3, 10*time.Second),
		WithKeyPrefix("tm:"),
	} {
		opt(&cfg)
	}

	assert.Equal(t, "redis.example.com:6380", cfg.RedisAddr)
	assert.Equal(t, "secret123", cfg.RedisPassword)
	assert.Equal(t, 5, cfg.RedisDB)
	assert.Equal(t, 3, cfg.Limit)
	assert.Equal(t, 10*time.Second, cfg.Window)
	assert.Equal(t, "tm:", cfg.KeyPrefix)
}

// TestLimiter_Allow needs a Redis server; set TEST_REDIS_ADDR to run it.
func TestLimiter_Allow(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())

	limiter := NewLimiter(client, "test:"+uuid.NewString()+":")

	for i := 0; i < 3; i++ {
		result, err := limiter.Allow(ctx, "client", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should be allowed", i)
		assert.Equal(t, 2-i, result.Remaining)
	}

	result, err := limiter.Allow(ctx, "client", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.WithinDuration(t, time.Now().Add(time.Minute), result.ResetAt, 5*time.Second)

	// The window slides.
	limiter.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	result, err = limiter.Allow(ctx, "client", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}
