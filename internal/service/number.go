package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/dtroode/numbook-server/internal/clock"
	"github.com/dtroode/numbook-server/internal/logger"
	"github.com/dtroode/numbook-server/internal/model"
)

// NumbersBackupName is the backup name hint for the numbers snapshot.
const NumbersBackupName = "database_backup.json"

// UserLister lists accounts for exports.
type UserLister interface {
	GetAllUsers(ctx context.Context) ([]model.UserInfo, error)
}

// Number manages the phone number list.
type Number struct {
	numberStore model.NumberStore
	users       UserLister
	notifier    model.Notifier
	clock       clock.Clock
	logger      *logger.Logger

	// notifyMu keeps snapshots and notifications in the same order.
	notifyMu sync.Mutex
}

func NewNumber(numberStore model.NumberStore, users UserLister, notifier model.Notifier, clk clock.Clock, logger *logger.Logger) *Number {
	return &Number{
		numberStore: numberStore,
		users:       users,
		notifier:    notifier,
		clock:       clk,
		logger:      logger,
	}
}

// List returns numbers, most recent first.
func (s *Number) List(ctx context.Context) ([]model.Number, error) {
	numbers, err := s.numberStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list numbers: %w", err)
	}
	return numbers, nil
}

func (s *Number) Add(ctx context.Context, number string, note *string) (model.Number, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return model.Number{}, fmt.Errorf("%w: number is required", model.ErrValidation)
	}
	if note != nil {
		trimmed := strings.TrimSpace(*note)
		note = &trimmed
		if trimmed == "" {
			note = nil
		}
	}

	created, err := s.numberStore.Create(ctx, model.Number{Number: number, Note: note})
	if err != nil {
		s.logger.Error("Number service: failed to create number", "error", err.Error())
		return model.Number{}, fmt.Errorf("failed to create number: %w", err)
	}

	s.logger.Info("Number service: number added", "number_id", created.ID)
	s.notify(ctx)

	return created, nil
}

func (s *Number) Delete(ctx context.Context, id int64) error {
	if err := s.numberStore.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Number service: number deleted", "number_id", id)
	s.notify(ctx)

	return nil
}

// Export returns all numbers and, for administrators, the account list.
func (s *Number) Export(ctx context.Context, claims model.Claims) (model.Export, error) {
	numbers, err := s.List(ctx)
	if err != nil {
		return model.Export{}, err
	}

	users := []model.UserInfo{}
	if claims.IsAdmin() {
		users, err = s.users.GetAllUsers(ctx)
		if err != nil {
			return model.Export{}, fmt.Errorf("failed to list users: %w", err)
		}
	}

	return model.Export{
		Numbers:    numbers,
		Users:      users,
		ExportedAt: s.clock.Now().UTC(),
	}, nil
}

// Snapshot serializes the number list for backups.
func (s *Number) Snapshot(ctx context.Context) (string, []byte, error) {
	numbers, err := s.List(ctx)
	if err != nil {
		return "", nil, err
	}

	data, err := json.MarshalIndent(model.Export{
		Numbers:    numbers,
		Users:      []model.UserInfo{},
		ExportedAt: s.clock.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal numbers snapshot: %w", err)
	}

	return NumbersBackupName, data, nil
}

func (s *Number) notify(ctx context.Context) {
	if s.notifier == nil {
		return
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	name, data, err := s.Snapshot(ctx)
	if err != nil {
		s.logger.Error("Number service: failed to take backup snapshot", "error", err.Error())
		return
	}

	s.notifier.Notify(name, data)
}
