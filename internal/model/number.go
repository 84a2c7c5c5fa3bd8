package model

import (
	"context"
	"time"
)

// NumberStore defines persistence operations for phone numbers.
type NumberStore interface {
	List(ctx context.Context) ([]Number, error)
	Create(ctx context.Context, number Number) (Number, error)
	Delete(ctx context.Context, id int64) error
}

// Number is a stored phone number with an optional note.
type Number struct {
	ID        int64     `json:"id"`
	Number    string    `json:"number"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}

// Export is a snapshot of the stored data.
type Export struct {
	Numbers    []Number   `json:"numbers"`
	Users      []UserInfo `json:"users"`
	ExportedAt time.Time  `json:"exportedAt"`
}
