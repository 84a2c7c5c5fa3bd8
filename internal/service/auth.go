package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtroode/numbook-server/internal/logger"
	"github.com/dtroode/numbook-server/internal/model"
)

const (
	minUsernameLength = 3
	minPasswordLength = 6
)

// Auth implements login and account management on top of the credential
// store and the token service.
type Auth struct {
	userStore    model.UserStore
	tokenService *TokenService
	logger       *logger.Logger
}

func NewAuth(userStore model.UserStore, tokenService *TokenService, logger *logger.Logger) *Auth {
	return &Auth{
		userStore:    userStore,
		tokenService: tokenService,
		logger:       logger,
	}
}

// Login validates the password and issues a session token.
func (a *Auth) Login(ctx context.Context, username, password string) (string, model.UserInfo, error) {
	a.logger.Debug("Auth service: login attempt", "username", username)

	if username == "" || password == "" {
		return "", model.UserInfo{}, fmt.Errorf("%w: username and password are required", model.ErrValidation)
	}

	user, err := a.userStore.ValidatePassword(ctx, username, password)
	if errors.Is(err, model.ErrInvalidCredentials) {
		a.logger.Info("Auth service: login rejected", "username", username)
		return "", model.UserInfo{}, err
	}
	if err != nil {
		a.logger.Error("Auth service: failed to validate password",
			"username", username,
			"error", err.Error())
		return "", model.UserInfo{}, fmt.Errorf("failed to validate password: %w", err)
	}

	token, err := a.tokenService.Issue(user.Claims())
	if err != nil {
		return "", model.UserInfo{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: login succeeded",
		"user_id", user.ID,
		"username", user.Username)

	return token, user.Info(), nil
}

// Authenticate resolves the claims of a presented token.
func (a *Auth) Authenticate(ctx context.Context, token string) (model.Claims, error) {
	if token == "" {
		return model.Claims{}, model.ErrUnauthenticated
	}
	return a.tokenService.Verify(ctx, token)
}

// ChangeCredentials changes the password and, if different, the username of
// userID in one store write, and returns a fresh token for the updated account.
func (a *Auth) ChangeCredentials(ctx context.Context, userID int64, currentPassword, newUsername, newPassword string) (string, error) {
	if currentPassword == "" {
		return "", fmt.Errorf("%w: current password is required", model.ErrValidation)
	}
	if err := validateUsername(newUsername); err != nil {
		return "", err
	}
	if err := validatePassword(newPassword); err != nil {
		return "", err
	}

	user, err := a.userStore.ChangeCredentials(ctx, userID, currentPassword, newUsername, newPassword)
	if errors.Is(err, model.ErrInvalidCredentials) || errors.Is(err, model.ErrDuplicateUsername) {
		a.logger.Info("Auth service: credential change rejected",
			"user_id", userID,
			"error", err.Error())
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("failed to change credentials: %w", err)
	}

	token, err := a.tokenService.Issue(user.Claims())
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: credentials changed",
		"user_id", userID,
		"username", user.Username)

	return token, nil
}

// CreateUser adds an account after validating its fields.
func (a *Auth) CreateUser(ctx context.Context, username, password string, role model.Role) (model.UserInfo, error) {
	if err := validateUsername(username); err != nil {
		return model.UserInfo{}, err
	}
	if err := validatePassword(password); err != nil {
		return model.UserInfo{}, err
	}
	if !role.Valid() {
		return model.UserInfo{}, fmt.Errorf("%w: role must be either 'admin' or 'user'", model.ErrValidation)
	}

	user, err := a.userStore.CreateUser(ctx, username, password, role)
	if err != nil {
		if !errors.Is(err, model.ErrDuplicateUsername) {
			a.logger.Error("Auth service: failed to create user",
				"username", username,
				"error", err.Error())
		}
		return model.UserInfo{}, err
	}

	return user.Info(), nil
}

func (a *Auth) ListUsers(ctx context.Context) ([]model.UserInfo, error) {
	return a.userStore.GetAllUsers(ctx)
}

// DeleteUser removes an account. Administrators cannot delete themselves.
func (a *Auth) DeleteUser(ctx context.Context, actor model.Claims, id int64) error {
	if actor.UserID == id {
		return fmt.Errorf("%w: cannot delete your own account", model.ErrValidation)
	}

	if err := a.userStore.DeleteUser(ctx, id); err != nil {
		return err
	}

	a.logger.Info("Auth service: user deleted",
		"user_id", id,
		"deleted_by", actor.UserID)

	return nil
}

func validateUsername(username string) error {
	if len(username) < minUsernameLength {
		return fmt.Errorf("%w: username must be at least %d characters", model.ErrValidation, minUsernameLength)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", model.ErrValidation, minPasswordLength)
	}
	return nil
}
