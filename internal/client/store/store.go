package store

import (
	"context"
	"errors"

	"github.com/tandahq/tanda/pkg/idx"
)

// ErrNotFound reports a key with no stored record.
var ErrNotFound = errors.New("store: not found")

// Store is the durable local state of this install: the persisted session
// subset plus install metadata. Concrete drivers (sqlite) implement this.
// Records are namespaced key-value blobs; callers own the encoding.
type Store interface {
	// Get returns the record stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any existing record.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the record under key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// InstallID returns this install's stable device identifier,
	// generating and persisting one on first call.
	InstallID(ctx context.Context) (idx.ID, error)

	// ApplyMigrations brings the local schema up to date.
	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}
