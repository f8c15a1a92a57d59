package ratelimit

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Allower decides whether a request identified by key may proceed.
type Allower interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// ErrorBody is the JSON body of a rejected request.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// maxClientIDLength limits key length to prevent abuse.
const maxClientIDLength = 128

// Handler returns a Fiber middleware that limits requests per client IP and
// path. Limiter errors let the request through.
func Handler(limiter Allower, limit int, window time.Duration, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientID := clientKey(c)
		key := c.Path() + ":" + clientID

		result, err := limiter.Allow(c.UserContext(), key, limit, window)
		if err != nil {
			log.Error().Err(err).Str("client_id", clientID).Str("path", c.Path()).Msg("Rate limit check failed")
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(math.Ceil(time.Until(result.ResetAt).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))

			log.Warn().
				Str("client_id", clientID).
				Str("path", c.Path()).
				Int("limit", result.Limit).
				Time("reset_at", result.ResetAt).
				Msg("Rate limit exceeded")

			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorBody{
				Error:   "rate_limited",
				Message: "Too many requests, please try again later",
			})
		}

		return c.Next()
	}
}

func clientKey(c *fiber.Ctx) string {
	id := c.IP()
	if id == "" {
		return "anonymous"
	}
	if len(id) > maxClientIDLength {
		id = id[:maxClientIDLength]
	}
	return id
}
