package store

import (
	"context"

	"github.com/google/uuid"
)

// StatusCache is a fast-path cache over the stores table for the
// initial-sync-completed flag. A miss means "ask the database", never "not
// complete": dispatch gating must not flip on cache eviction.
type StatusCache interface {
	// MarkInitialSyncComplete records that a store finished its first full sync
	MarkInitialSyncComplete(ctx context.Context, storeID uuid.UUID) error

	// InitialSyncComplete reports (known, complete). known=false means the
	// cache has no answer and the caller should fall back to the repository.
	InitialSyncComplete(ctx context.Context, storeID uuid.UUID) (bool, bool, error)

	// Invalidate drops the cached flag for a store
	Invalidate(ctx context.Context, storeID uuid.UUID) error

	// Close releases resources
	Close() error
}
