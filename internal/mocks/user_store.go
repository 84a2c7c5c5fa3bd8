// Package mocks holds testify mocks for the store, storage and service
// interfaces. They are maintained by hand.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/numbook-server/internal/model"
)

// UserStore is a mock type for the UserStore type
type UserStore struct {
	mock.Mock
}

// ChangePassword provides a mock function with given fields: ctx, id, currentPassword, newPassword
func (_m *UserStore) ChangePassword(ctx context.Context, id int64, currentPassword string, newPassword string) (bool, error) {
	ret := _m.Called(ctx, id, currentPassword, newPassword)
	return ret.Bool(0), ret.Error(1)
}

// ChangeCredentials provides a mock function with given fields: ctx, id, currentPassword, newUsername, newPassword
func (_m *UserStore) ChangeCredentials(ctx context.Context, id int64, currentPassword string, newUsername string, newPassword string) (model.User, error) {
	ret := _m.Called(ctx, id, currentPassword, newUsername, newPassword)
	return ret.Get(0).(model.User), ret.Error(1)
}

// CreateUser provides a mock function with given fields: ctx, username, password, role
func (_m *UserStore) CreateUser(ctx context.Context, username string, password string, role model.Role) (model.User, error) {
	ret := _m.Called(ctx, username, password, role)
	return ret.Get(0).(model.User), ret.Error(1)
}

// DeleteUser provides a mock function with given fields: ctx, id
func (_m *UserStore) DeleteUser(ctx context.Context, id int64) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

// GetAllUsers provides a mock function with given fields: ctx
func (_m *UserStore) GetAllUsers(ctx context.Context) ([]model.UserInfo, error) {
	ret := _m.Called(ctx)
	var r0 []model.UserInfo
	if v := ret.Get(0); v != nil {
		r0 = v.([]model.UserInfo)
	}
	return r0, ret.Error(1)
}

// GetUserByID provides a mock function with given fields: ctx, id
func (_m *UserStore) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	ret := _m.Called(ctx, id)
	return ret.Get(0).(model.User), ret.Error(1)
}

// GetUserByUsername provides a mock function with given fields: ctx, username
func (_m *UserStore) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	ret := _m.Called(ctx, username)
	return ret.Get(0).(model.User), ret.Error(1)
}

// UpdateUser provides a mock function with given fields: ctx, id, update
func (_m *UserStore) UpdateUser(ctx context.Context, id int64, update model.UserUpdate) (model.User, error) {
	ret := _m.Called(ctx, id, update)
	return ret.Get(0).(model.User), ret.Error(1)
}

// ValidatePassword provides a mock function with given fields: ctx, username, password
func (_m *UserStore) ValidatePassword(ctx context.Context, username string, password string) (model.User, error) {
	ret := _m.Called(ctx, username, password)
	return ret.Get(0).(model.User), ret.Error(1)
}

var _ model.UserStore = (*UserStore)(nil)
