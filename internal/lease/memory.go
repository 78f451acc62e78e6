package lease

import (
	"context"
	"sync"
	"time"

	"github.com/go-authgate/mailbridge/internal/core"
)

type holder struct {
	owner     string
	expiresAt time.Time
}

// Compile-time interface check.
var _ core.LeaseStore = (*MemoryStore)(nil)

// sweepInterval bounds how often Acquire scans for expired leases
const sweepInterval = time.Minute

// MemoryStore implements LeaseStore in process memory.
// Expired leases are swept from Acquire at most once per sweepInterval,
// so keys that are never acquired again do not accumulate.
// Suitable for single-instance deployments.
type MemoryStore struct {
	mu        sync.Mutex
	leases    map[string]holder
	now       func() time.Time
	nextSweep time.Time
}

// NewMemoryStore creates a new in-memory lease store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		leases: make(map[string]holder),
		now:    time.Now,
	}
}

// Acquire takes key for owner unless a live lease exists.
// Re-acquiring a key you already hold extends it.
func (m *MemoryStore) Acquire(
	ctx context.Context,
	key, owner string,
	ttl time.Duration,
) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !now.Before(m.nextSweep) {
		m.sweepLocked(now)
	}
	if current, ok := m.leases[key]; ok && now.Before(current.expiresAt) && current.owner != owner {
		return false, nil
	}
	m.leases[key] = holder{owner: owner, expiresAt: now.Add(ttl)}
	return true, nil
}

// sweepLocked removes every expired lease. Caller must hold m.mu.
func (m *MemoryStore) sweepLocked(now time.Time) {
	for key, current := range m.leases {
		if !now.Before(current.expiresAt) {
			delete(m.leases, key)
		}
	}
	m.nextSweep = now.Add(sweepInterval)
}

// Release drops key if owner still holds it.
func (m *MemoryStore) Release(ctx context.Context, key, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.leases[key]; ok && current.owner == owner {
		delete(m.leases, key)
	}
	return nil
}

// Close clears all leases.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leases = make(map[string]holder)
	return nil
}

// Health always returns nil for memory store.
func (m *MemoryStore) Health(ctx context.Context) error {
	return nil
}
