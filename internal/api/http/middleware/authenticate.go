package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dtroode/numbook-server/internal/logger"
	"github.com/dtroode/numbook-server/internal/model"
)

// Authenticator resolves claims from session tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.Claims, error)
}

// Authenticate validates the session token and injects claims into the
// request context.
type Authenticate struct {
	authenticator  Authenticator
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuthenticate(authenticator Authenticator, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{authenticator: authenticator, contextManager: contextManager, logger: logger}
}

// Handle rejects requests without a valid token.
func (m *Authenticate) Handle(c *fiber.Ctx) error {
	token := TokenFromRequest(c)
	if token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	}

	claims, err := m.authenticator.Authenticate(c.UserContext(), token)
	if errors.Is(err, model.ErrUnauthenticated) {
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	}
	if err != nil {
		m.logger.Error("Authenticate: failed to verify token",
			"path", c.Path(),
			"error", err.Error())
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to verify user")
	}

	c.SetUserContext(m.contextManager.SetClaimsToContext(c.UserContext(), claims))

	return c.Next()
}

// RequireAdmin must run after Handle.
func (m *Authenticate) RequireAdmin(c *fiber.Ctx) error {
	claims, ok := m.contextManager.GetClaimsFromContext(c.UserContext())
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	}
	if !claims.IsAdmin() {
		m.logger.Info("Authenticate: admin access denied",
			"user_id", claims.UserID,
			"path", c.Path())
		return fiber.NewError(fiber.StatusForbidden, "Admin access required")
	}

	return c.Next()
}
