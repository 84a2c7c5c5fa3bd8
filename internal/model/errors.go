package model

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrForbidden          = errors.New("admin access required")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrIntegrity          = errors.New("credential file integrity check failed")
	ErrLastAdmin          = errors.New("cannot remove the last administrator")
	ErrValidation         = errors.New("invalid request data")
)
