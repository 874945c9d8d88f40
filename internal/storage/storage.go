// Package storage defines the persisted key-value surface that backs the
// storefront's write-through caches (cart, favorites, menu, session).
//
// A Store is constructed once at startup and passed to the repositories that
// need it. Drivers live in subpackages: memory (tests and ephemeral runs),
// file (a JSON snapshot rewritten on every mutation) and postgres.
package storage

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned by Get when the key has never been written or was
// deleted.
var ErrNotFound = errors.New("key not found")

// Store is a string-keyed byte store. Writes are synchronous: when Set or
// Delete returns nil the value is as durable as the driver can make it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by drivers backed by an external service.
type Pinger interface {
	Ping(ctx context.Context) error
}
