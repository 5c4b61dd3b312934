package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a key does not exist or has expired.
	ErrNotFound = errors.New("store: key not found")
	// ErrConflict is returned when an Update lost its optimistic-concurrency
	// race too many times in a row.
	ErrConflict = errors.New("store: too many concurrent updates")
)

// UpdateFunc transforms the current value of a key into its next value.
// Returning an error aborts the update and surfaces the error unchanged.
type UpdateFunc func(old []byte) ([]byte, error)

// Store is the key-value contract the room service runs against. Values are
// opaque blobs; every write refreshes the key's TTL.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Update performs an atomic read-modify-write of a single key. The
	// implementation guarantees that between reading the old value and
	// writing fn's result no other writer touched the key, retrying
	// internally when one did. A missing or expired key aborts with
	// ErrNotFound before fn runs.
	Update(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) error

	Delete(ctx context.Context, key string) error
	Close() error
}
