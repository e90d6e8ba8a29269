package repository

import (
	"context"
	"errors"
)

// ErrReadOnly is returned when a write is attempted inside a View transaction.
var ErrReadOnly = errors.New("read-only transaction")

// KVTx reads and writes JSON documents within a single transaction.
type KVTx interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// KVStore persists JSON text under string keys. Update transactions are
// serialised; either every write of fn is applied or none is.
type KVStore interface {
	Init(ctx context.Context) error
	View(ctx context.Context, fn func(tx KVTx) error) error
	Update(ctx context.Context, fn func(tx KVTx) error) error
}
