package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLimiter admits the first limit calls per key.
type countingLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	err    error
}

func (l *countingLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts == nil {
		l.counts = make(map[string]int)
	}
	current := l.counts[key]
	if current >= limit {
		return &Result{Allowed: false, Limit: limit, ResetAt: time.Now().Add(window)}, nil
	}
	l.counts[key] = current + 1
	return &Result{Allowed: true, Remaining: limit - current - 1, Limit: limit, ResetAt: time.Now().Add(window)}, nil
}

func newTestApp(limiter Allower, limit int) *fiber.App {
	app := fiber.New()
	app.Post("/login", Handler(limiter, limit, time.Minute, zerolog.Nop()), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Post("/register", Handler(limiter, limit, time.Minute, zerolog.Nop()), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestHandler_LimitsPerPath(t *testing.T) {
	app := newTestApp(&countingLimiter{}, 2)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(1-i), resp.Header.Get("X-RateLimit-Remaining"))
	}

	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))

	var body ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "rate_limited", body.Error)

	// Another path has its own budget.
	resp, err = app.Test(httptest.NewRequest("POST", "/register", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHandler_FailsOpen(t *testing.T) {
	app := newTestApp(&countingLimiter{err: errors.New("redis down")}, 1)

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestModule_HandlerBeforeStartFailsOpen(t *testing.T) {
	m := NewModule(zerolog.Nop(), WithLimit(1, time.Minute))

	app := fiber.New()
	app.Post("/login", m.Handler(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	assert.False(t, m.Health(context.Background()).Healthy)
}
