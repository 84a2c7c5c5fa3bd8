package model

import (
	"context"
	"time"
)

// Role is an account privilege level.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// UserStore defines persistence operations for user credentials.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (User, error)
	GetUserByID(ctx context.Context, id int64) (User, error)
	ValidatePassword(ctx context.Context, username, password string) (User, error)
	CreateUser(ctx context.Context, username, password string, role Role) (User, error)
	UpdateUser(ctx context.Context, id int64, update UserUpdate) (User, error)
	ChangePassword(ctx context.Context, id int64, currentPassword, newPassword string) (bool, error)
	ChangeCredentials(ctx context.Context, id int64, currentPassword, newUsername, newPassword string) (User, error)
	GetAllUsers(ctx context.Context) ([]UserInfo, error)
	DeleteUser(ctx context.Context, id int64) error
}

// User represents a stored user with authentication material.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	Role         Role      `json:"role"`
	Salt         string    `json:"salt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Info returns the user without password material.
func (u User) Info() UserInfo {
	return UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Claims returns the token claims for the user.
func (u User) Claims() Claims {
	return Claims{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// UserInfo is a user safe for listing.
type UserInfo struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserUpdate holds optional user fields to change. Nil fields are left as is.
type UserUpdate struct {
	Username *string
	Role     *Role
}
