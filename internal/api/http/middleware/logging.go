package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/dtroode/numbook-server/internal/logger"
)

const (
	// HeaderRequestID echoes the request id back to the client.
	HeaderRequestID = "X-Request-ID"
	requestIDKey    = "request_id"
)

// Logging logs every request with a request id. Error causes are logged by
// the application error handler.
type Logging struct {
	logger *logger.Logger
}

func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

func (l *Logging) Handle(c *fiber.Ctx) error {
	start := time.Now()

	requestID := c.Get(HeaderRequestID)
	if _, err := uuid.Parse(requestID); err != nil {
		requestID = uuid.NewString()
	}
	c.Locals(requestIDKey, requestID)
	c.Set(HeaderRequestID, requestID)

	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
	}

	l.logger.Info("HTTP request completed",
		"request_id", requestID,
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration_ms", time.Since(start).Milliseconds())

	return err
}

// RequestID returns the id assigned by Logging.
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}
