package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dtroode/numbook-server/internal/logger"
	"github.com/dtroode/numbook-server/internal/model"
)

// NumberService is the numbers API used by the handlers.
type NumberService interface {
	List(ctx context.Context) ([]model.Number, error)
	Add(ctx context.Context, number string, note *string) (model.Number, error)
	Delete(ctx context.Context, id int64) error
	Export(ctx context.Context, claims model.Claims) (model.Export, error)
}

type addNumberRequest struct {
	Number string  `json:"number"`
	Note   *string `json:"note"`
}

type Number struct {
	service        NumberService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewNumber(service NumberService, contextManager model.ContextManager, logger *logger.Logger) *Number {
	return &Number{service: service, contextManager: contextManager, logger: logger}
}

func (h *Number) List(c *fiber.Ctx) error {
	numbers, err := h.service.List(c.UserContext())
	if err != nil {
		return handleError(err)
	}
	return c.JSON(numbers)
}

func (h *Number) Add(c *fiber.Ctx) error {
	var req addNumberRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid number data")
	}

	number, err := h.service.Add(c.UserContext(), req.Number, req.Note)
	if err != nil {
		return handleError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(number)
}

func (h *Number) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid number ID")
	}

	if err := h.service.Delete(c.UserContext(), int64(id)); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Number not found")
		}
		return handleError(err)
	}

	return c.JSON(messageResponse{Success: true, Message: "Number deleted successfully"})
}

func (h *Number) Export(c *fiber.Ctx) error {
	claims, ok := h.contextManager.GetClaimsFromContext(c.UserContext())
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	}

	export, err := h.service.Export(c.UserContext(), claims)
	if err != nil {
		return handleError(err)
	}

	return c.JSON(export)
}
