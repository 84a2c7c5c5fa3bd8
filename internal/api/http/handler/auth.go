package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dtroode/numbook-server/internal/api/http/middleware"
	"github.com/dtroode/numbook-server/internal/logger"
	"github.com/dtroode/numbook-server/internal/model"
)

// AuthService is the account API used by the handlers.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, model.UserInfo, error)
	Authenticate(ctx context.Context, token string) (model.Claims, error)
	ChangeCredentials(ctx context.Context, userID int64, currentPassword, newUsername, newPassword string) (string, error)
	CreateUser(ctx context.Context, username, password string, role model.Role) (model.UserInfo, error)
	ListUsers(ctx context.Context) ([]model.UserInfo, error)
	DeleteUser(ctx context.Context, actor model.Claims, id int64) error
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	User    model.UserInfo `json:"user"`
}

type meResponse struct {
	IsAuthenticated bool       `json:"isAuthenticated"`
	UserID          int64      `json:"userId,omitempty"`
	Username        string     `json:"username,omitempty"`
	Role            model.Role `json:"role,omitempty"`
}

type changeCredentialsRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewUsername     string `json:"newUsername"`
	NewPassword     string `json:"newPassword"`
}

type createUserRequest struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

type createUserResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	User    model.UserInfo `json:"user"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Auth struct {
	service        AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuth(service AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{service: service, contextManager: contextManager, logger: logger}
}

func (h *Auth) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request data")
	}

	tok, user, err := h.service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return handleError(err)
	}

	setTokenCookie(c, tok)

	return c.JSON(loginResponse{Success: true, Message: "Login successful", User: user})
}

func (h *Auth) Logout(c *fiber.Ctx) error {
	clearTokenCookie(c)
	return c.JSON(messageResponse{Success: true, Message: "Logged out successfully"})
}

// Me reports the current session. An invalid or missing token is not an
// error here.
func (h *Auth) Me(c *fiber.Ctx) error {
	tok := middleware.TokenFromRequest(c)
	if tok == "" {
		return c.JSON(meResponse{IsAuthenticated: false})
	}

	claims, err := h.service.Authenticate(c.UserContext(), tok)
	if errors.Is(err, model.ErrUnauthenticated) {
		return c.JSON(meResponse{IsAuthenticated: false})
	}
	if err != nil {
		h.logger.Error("Auth handler: failed to verify user", "error", err.Error())
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to verify user")
	}

	return c.JSON(meResponse{
		IsAuthenticated: true,
		UserID:          claims.UserID,
		Username:        claims.Username,
		Role:            claims.Role,
	})
}

func (h *Auth) ChangeCredentials(c *fiber.Ctx) error {
	claims, ok := h.contextManager.GetClaimsFromContext(c.UserContext())
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	}

	var req changeCredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request data")
	}

	tok, err := h.service.ChangeCredentials(c.UserContext(), claims.UserID, req.CurrentPassword, req.NewUsername, req.NewPassword)
	if errors.Is(err, model.ErrInvalidCredentials) {
		return fiber.NewError(fiber.StatusBadRequest, "Current password is incorrect")
	}
	if err != nil {
		return handleError(err)
	}

	setTokenCookie(c, tok)

	return c.JSON(messageResponse{Success: true, Message: "Credentials updated successfully"})
}

func (h *Auth) CreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request data")
	}
	if req.Username == "" || req.Password == "" || req.Role == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Username, password, and role are required")
	}

	user, err := h.service.CreateUser(c.UserContext(), req.Username, req.Password, req.Role)
	if err != nil {
		return handleError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(createUserResponse{
		Success: true,
		Message: "User created successfully",
		User:    user,
	})
}

func (h *Auth) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext())
	if err != nil {
		return handleError(err)
	}
	return c.JSON(users)
}

func (h *Auth) DeleteUser(c *fiber.Ctx) error {
	claims, ok := h.contextManager.GetClaimsFromContext(c.UserContext())
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid user ID")
	}

	if err := h.service.DeleteUser(c.UserContext(), claims, int64(id)); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return handleError(err)
	}

	return c.JSON(messageResponse{Success: true, Message: "User deleted successfully"})
}
