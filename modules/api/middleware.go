package api

import (
	"strings"
	"time"

	"github.com/example/taskmanager/domain/user"
	"github.com/example/taskmanager/modules/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// ProtectedHandler is a route handler that runs for an authenticated caller.
type ProtectedHandler func(c *fiber.Ctx, identity user.Identity) error

// Authenticated verifies the bearer token and calls next with the resolved
// identity. Requests without a valid token never reach next.
func Authenticated(authPort auth.AuthPort, next ProtectedHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required")
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthorized(c, "Invalid authorization header format. Use: Bearer <token>")
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return unauthorized(c, "Token is required")
		}

		identity, err := authPort.VerifyToken(c.UserContext(), token)
		if err != nil || identity.UserID == "" {
			return unauthorized(c, "Invalid or expired token")
		}

		return next(c, identity)
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthorized",
		Message: message,
	})
}

// accessLog writes one line per request.
func accessLog(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		event := log.Info()
		if status >= fiber.StatusInternalServerError || err != nil {
			event = log.Error().Err(err)
		}
		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("HTTP request")
		return err
	}
}
