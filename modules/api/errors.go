package api

import (
	"errors"

	"github.com/example/taskmanager/apperr"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindConflict, apperr.KindNotFoundOrForbidden:
		return fiber.StatusBadRequest
	case apperr.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func codeFor(kind apperr.Kind) string {
	switch kind {
	case apperr.KindValidation:
		return "validation_error"
	case apperr.KindConflict:
		return "conflict"
	case apperr.KindUnauthenticated:
		return "unauthorized"
	case apperr.KindNotFoundOrForbidden, apperr.KindNotFound:
		return "not_found"
	default:
		return "internal_error"
	}
}

// writeError renders err as an ErrorResponse. Internal causes are logged and
// replaced by a generic message.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	return writeErrorStatus(c, log, err, 0)
}

// writeErrorStatus is writeError with the status of unauthenticated errors
// replaced by unauthenticatedStatus when it is non-zero.
func writeErrorStatus(c *fiber.Ctx, log zerolog.Logger, err error, unauthenticatedStatus int) error {
	appErr := apperr.From(err)
	status := statusFor(appErr.Kind)
	if appErr.Kind == apperr.KindUnauthenticated && unauthenticatedStatus != 0 {
		status = unauthenticatedStatus
	}
	if appErr.Kind == apperr.KindInternal {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("Request failed")
	}
	return c.Status(status).JSON(ErrorResponse{
		Error:   codeFor(appErr.Kind),
		Message: appErr.Message,
		Errors:  appErr.Fields,
	})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: "Invalid request body",
	})
}

// errorHandler renders errors that escaped a handler, including recovered
// panics and unmatched routes.
func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := "server_error"
			if fe.Code == fiber.StatusNotFound {
				code = "not_found"
			}
			return c.Status(fe.Code).JSON(ErrorResponse{
				Error:   code,
				Message: fe.Message,
			})
		}
		return writeError(c, log, err)
	}
}
