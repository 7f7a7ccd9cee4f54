package core

import (
	"context"
	"errors"
)

var (
	// ErrKeyNotFound is returned by KVStore.Get when nothing is stored under the key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrQuotaExceeded is returned by backends that refuse a write for lack of space.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// KVStore is a durable string-keyed byte store.
// One value is stored per entity collection, so implementations only need whole-value writes.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
