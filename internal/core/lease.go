package core

import (
	"context"
	"time"
)

// LeaseStore grants time-bounded exclusive ownership of a key.
// Implementations include lease.MemoryStore (single instance) and lease.RueidisStore (Redis).
type LeaseStore interface {
	// Acquire takes the key for owner until ttl elapses.
	// Returns false without error when someone else holds it.
	Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)

	// Release drops the key only if owner still holds it
	Release(ctx context.Context, key, owner string) error

	// Close releases resources held by the store
	Close() error

	// Health checks if the backing store is reachable
	Health(ctx context.Context) error
}
