package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/dtroode/numbook-server/internal/logger"
)

// BackupService runs manual backups.
type BackupService interface {
	Trigger(ctx context.Context) ([]string, error)
}

type triggerBackupResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Files   []string `json:"files"`
}

type Backup struct {
	service BackupService
	logger  *logger.Logger
}

func NewBackup(service BackupService, logger *logger.Logger) *Backup {
	return &Backup{service: service, logger: logger}
}

func (h *Backup) Trigger(c *fiber.Ctx) error {
	files, err := h.service.Trigger(c.UserContext())
	if err != nil {
		return handleError(err)
	}

	return c.JSON(triggerBackupResponse{
		Success: true,
		Message: "Backup completed successfully",
		Files:   files,
	})
}
