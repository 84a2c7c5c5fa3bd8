package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dtroode/numbook-server/internal/api/http/middleware"
	"github.com/dtroode/numbook-server/internal/logger"
	"github.com/dtroode/numbook-server/internal/model"
	"github.com/dtroode/numbook-server/internal/service"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}

// handleError maps domain errors to HTTP errors. Validation messages are
// passed through, everything unexpected becomes a generic 500.
func handleError(err error) error {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe
	case errors.Is(err, model.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrUnauthenticated):
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	case errors.Is(err, model.ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, model.ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, "Admin access required")
	case errors.Is(err, model.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Not found")
	case errors.Is(err, model.ErrDuplicateUsername):
		return fiber.NewError(fiber.StatusConflict, "Username already exists")
	case errors.Is(err, model.ErrLastAdmin):
		return fiber.NewError(fiber.StatusConflict, "Cannot remove the last administrator")
	case errors.Is(err, service.ErrBackupDisabled):
		return fiber.NewError(fiber.StatusServiceUnavailable, "Backup storage is not configured")
	default:
		return &internalError{err: err}
	}
}

// internalError keeps the cause for logging while the client only sees a
// generic message.
type internalError struct {
	err error
}

func (e *internalError) Error() string { return e.err.Error() }
func (e *internalError) Unwrap() error { return e.err }

// ErrorHandler writes errors returned by handlers and middleware as JSON.
func ErrorHandler(logger *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else {
			logger.Error("HTTP handler failed",
				"request_id", middleware.RequestID(c),
				"method", c.Method(),
				"path", c.Path(),
				"error", err.Error())
		}

		return c.Status(code).JSON(ErrorResponse{Message: message})
	}
}
