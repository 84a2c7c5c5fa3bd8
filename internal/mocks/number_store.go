package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/numbook-server/internal/model"
)

// NumberStore is a mock type for the NumberStore type
type NumberStore struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, number
func (_m *NumberStore) Create(ctx context.Context, number model.Number) (model.Number, error) {
	ret := _m.Called(ctx, number)
	return ret.Get(0).(model.Number), ret.Error(1)
}

// Delete provides a mock function with given fields: ctx, id
func (_m *NumberStore) Delete(ctx context.Context, id int64) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

// List provides a mock function with given fields: ctx
func (_m *NumberStore) List(ctx context.Context) ([]model.Number, error) {
	ret := _m.Called(ctx)
	var r0 []model.Number
	if v := ret.Get(0); v != nil {
		r0 = v.([]model.Number)
	}
	return r0, ret.Error(1)
}

var _ model.NumberStore = (*NumberStore)(nil)
