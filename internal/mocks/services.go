package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/numbook-server/internal/model"
)

// AuthService is a mock type for the AuthService type
type AuthService struct {
	mock.Mock
}

// Authenticate provides a mock function with given fields: ctx, token
func (_m *AuthService) Authenticate(ctx context.Context, token string) (model.Claims, error) {
	ret := _m.Called(ctx, token)
	return ret.Get(0).(model.Claims), ret.Error(1)
}

// ChangeCredentials provides a mock function with given fields: ctx, userID, currentPassword, newUsername, newPassword
func (_m *AuthService) ChangeCredentials(ctx context.Context, userID int64, currentPassword string, newUsername string, newPassword string) (string, error) {
	ret := _m.Called(ctx, userID, currentPassword, newUsername, newPassword)
	return ret.String(0), ret.Error(1)
}

// CreateUser provides a mock function with given fields: ctx, username, password, role
func (_m *AuthService) CreateUser(ctx context.Context, username string, password string, role model.Role) (model.UserInfo, error) {
	ret := _m.Called(ctx, username, password, role)
	return ret.Get(0).(model.UserInfo), ret.Error(1)
}

// DeleteUser provides a mock function with given fields: ctx, actor, id
func (_m *AuthService) DeleteUser(ctx context.Context, actor model.Claims, id int64) error {
	ret := _m.Called(ctx, actor, id)
	return ret.Error(0)
}

// ListUsers provides a mock function with given fields: ctx
func (_m *AuthService) ListUsers(ctx context.Context) ([]model.UserInfo, error) {
	ret := _m.Called(ctx)
	var r0 []model.UserInfo
	if v := ret.Get(0); v != nil {
		r0 = v.([]model.UserInfo)
	}
	return r0, ret.Error(1)
}

// Login provides a mock function with given fields: ctx, username, password
func (_m *AuthService) Login(ctx context.Context, username string, password string) (string, model.UserInfo, error) {
	ret := _m.Called(ctx, username, password)
	return ret.String(0), ret.Get(1).(model.UserInfo), ret.Error(2)
}

// NumberService is a mock type for the NumberService type
type NumberService struct {
	mock.Mock
}

// Add provides a mock function with given fields: ctx, number, note
func (_m *NumberService) Add(ctx context.Context, number string, note *string) (model.Number, error) {
	ret := _m.Called(ctx, number, note)
	return ret.Get(0).(model.Number), ret.Error(1)
}

// Delete provides a mock function with given fields: ctx, id
func (_m *NumberService) Delete(ctx context.Context, id int64) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

// Export provides a mock function with given fields: ctx, claims
func (_m *NumberService) Export(ctx context.Context, claims model.Claims) (model.Export, error) {
	ret := _m.Called(ctx, claims)
	return ret.Get(0).(model.Export), ret.Error(1)
}

// List provides a mock function with given fields: ctx
func (_m *NumberService) List(ctx context.Context) ([]model.Number, error) {
	ret := _m.Called(ctx)
	var r0 []model.Number
	if v := ret.Get(0); v != nil {
		r0 = v.([]model.Number)
	}
	return r0, ret.Error(1)
}

// BackupService is a mock type for the BackupService type
type BackupService struct {
	mock.Mock
}

// Trigger provides a mock function with given fields: ctx
func (_m *BackupService) Trigger(ctx context.Context) ([]string, error) {
	ret := _m.Called(ctx)
	var r0 []string
	if v := ret.Get(0); v != nil {
		r0 = v.([]string)
	}
	return r0, ret.Error(1)
}
