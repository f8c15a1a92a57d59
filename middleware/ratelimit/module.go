package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Module owns the Redis connection used by the limiter.
type Module struct {
	config  Config
	client  *redis.Client
	limiter *Limiter
	log     zerolog.Logger
}

// Compile-time interface checks
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a rate limiting module.
func NewModule(log zerolog.Logger, opts ...Option) *Module {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Module{
		config: config,
		log:    log.With().Str("module", "rate-limit").Logger(),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "rate-limit"
}

// Start connects to Redis.
func (m *Module) Start(ctx context.Context) error {
	m.client = redis.NewClient(&redis.Options{
		Addr:         m.config.RedisAddr,
		Password:     m.config.RedisPassword,
		DB:           m.config.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", m.config.RedisAddr, err)
	}

	m.limiter = NewLimiter(m.client, m.config.KeyPrefix)
	m.log.Info().
		Str("redis", m.config.RedisAddr).
		Int("limit", m.config.Limit).
		Dur("window", m.config.Window).
		Msg("Rate limiting started")
	return nil
}

// Stop closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			m.log.Error().Err(err).Msg("Failed to close Redis connection")
			return err
		}
	}
	m.log.Info().Msg("Rate limiting stopped")
	return nil
}

// Health pings Redis.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.client == nil {
		return mono.HealthStatus{Healthy: false, Message: "redis client not initialized"}
	}
	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("redis ping failed: %v", err)}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"redis": m.config.RedisAddr},
	}
}

// Handler returns the Fiber middleware backed by this module's limiter. It is
// resolved per request so it may be built before Start.
func (m *Module) Handler() fiber.Handler {
	return Handler(lazyLimiter{m}, m.config.Limit, m.config.Window, m.log)
}

type lazyLimiter struct {
	m *Module
}

func (l lazyLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	if l.m.limiter == nil {
		return nil, fmt.Errorf("rate limiter not started")
	}
	return l.m.limiter.Allow(ctx, key, limit, window)
}
