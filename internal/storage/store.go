// Package storage provides the local key-value store backing all persisted
// collections.
//
// A Store maps fixed string keys to opaque byte values. There is no
// indexing, no transactions and no schema: callers replace whole values.
//
// Drivers:
//   - sqlite: single-file database, the default for a local install
//   - redis: a shared Redis instance, keys optionally prefixed
//   - memory: process-local map, used by tests and ephemeral runs
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("storage: unknown driver")

// ErrLocked is returned by Locker.Lock when the lock stays held by another
// process until the context ends.
var ErrLocked = errors.New("storage: key is locked")

// Locker is implemented by stores that several processes may write to at
// once. The returned unlock func must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Store is a synchronous key-value store.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying connection.
	Close() error
}

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config selects and configures a driver.
type Config struct {
	Driver string

	// Path is the sqlite database file.
	Path string

	// RedisAddr and RedisPrefix configure the redis driver.
	RedisAddr   string
	RedisPrefix string
}

// Open returns a Store for cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverSQLite, "":
		return OpenSQLite(ctx, cfg.Path)
	case DriverRedis:
		return OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPrefix)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
