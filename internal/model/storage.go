package model

import (
	"context"
	"io"
)

// Storage is an object store used as a backup destination.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
}

// Notifier receives a snapshot after every successful mutation.
// name is a file name hint such as "users.enc".
type Notifier interface {
	Notify(name string, data []byte)
}
