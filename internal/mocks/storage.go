package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/numbook-server/internal/model"
)

// Storage is a mock type for the Storage type
type Storage struct {
	mock.Mock
}

// Upload provides a mock function with given fields: ctx, key, reader
func (_m *Storage) Upload(ctx context.Context, key string, reader io.Reader) error {
	ret := _m.Called(ctx, key, reader)
	return ret.Error(0)
}

// Notifier is a mock type for the Notifier type
type Notifier struct {
	mock.Mock
}

// Notify provides a mock function with given fields: name, data
func (_m *Notifier) Notify(name string, data []byte) {
	_m.Called(name, data)
}

var (
	_ model.Storage  = (*Storage)(nil)
	_ model.Notifier = (*Notifier)(nil)
)
