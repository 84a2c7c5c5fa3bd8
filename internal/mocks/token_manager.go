package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/numbook-server/internal/model"
)

// TokenManager is a mock type for the TokenManager type
type TokenManager struct {
	mock.Mock
}

// Generate provides a mock function with given fields: claims
func (_m *TokenManager) Generate(claims model.Claims) (string, error) {
	ret := _m.Called(claims)
	return ret.String(0), ret.Error(1)
}

// Parse provides a mock function with given fields: token
func (_m *TokenManager) Parse(token string) (model.Claims, error) {
	ret := _m.Called(token)
	return ret.Get(0).(model.Claims), ret.Error(1)
}

var _ model.TokenManager = (*TokenManager)(nil)
