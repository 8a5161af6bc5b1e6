package cache

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/store"
)

// InMemoryStatusCache implements store.StatusCache with a map. Suitable for
// single-instance deployments and tests.
type InMemoryStatusCache struct {
	mu    sync.RWMutex
	flags map[uuid.UUID]bool
}

// NewInMemoryStatusCache creates a new in-memory status cache
func NewInMemoryStatusCache() *InMemoryStatusCache {
	return &InMemoryStatusCache{flags: make(map[uuid.UUID]bool)}
}

// MarkInitialSyncComplete records that a store finished its first full sync
func (c *InMemoryStatusCache) MarkInitialSyncComplete(ctx context.Context, storeID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flags[storeID] = true
	return nil
}

// InitialSyncComplete reports (known, complete)
func (c *InMemoryStatusCache) InitialSyncComplete(ctx context.Context, storeID uuid.UUID) (bool, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	complete, known := c.flags[storeID]
	return known, complete, nil
}

// Invalidate drops the cached flag for a store
func (c *InMemoryStatusCache) Invalidate(ctx context.Context, storeID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.flags, storeID)
	return nil
}

// Close releases resources
func (c *InMemoryStatusCache) Close() error {
	return nil
}

// Ensure InMemoryStatusCache implements store.StatusCache
var _ store.StatusCache = (*InMemoryStatusCache)(nil)
