package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtroode/numbook-server/internal/logger"
	"github.com/dtroode/numbook-server/internal/model"
)

// UserResolver looks up the live record behind a token.
type UserResolver interface {
	GetUserByID(ctx context.Context, id int64) (model.User, error)
}

// TokenService issues session tokens and verifies them against the
// credential store, so deleted accounts lose access before expiry.
type TokenService struct {
	manager model.TokenManager
	users   UserResolver
	logger  *logger.Logger
}

func NewTokenService(manager model.TokenManager, users UserResolver, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, users: users, logger: logger}
}

func (s *TokenService) Issue(claims model.Claims) (string, error) {
	token, err := s.manager.Generate(claims)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Verify returns the current claims of the token's user. Malformed, forged,
// expired and revoked tokens all yield ErrUnauthenticated.
func (s *TokenService) Verify(ctx context.Context, token string) (model.Claims, error) {
	claims, err := s.manager.Parse(token)
	if err != nil {
		s.logger.Debug("Token service: token rejected", "error", err.Error())
		return model.Claims{}, model.ErrUnauthenticated
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, model.ErrNotFound) {
		s.logger.Debug("Token service: token user no longer exists", "user_id", claims.UserID)
		return model.Claims{}, model.ErrUnauthenticated
	}
	if err != nil {
		return model.Claims{}, fmt.Errorf("failed to resolve token user: %w", err)
	}

	return user.Claims(), nil
}
