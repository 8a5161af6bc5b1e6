package store

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for store persistence
type Repository interface {
	// FindByID finds a store by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Store, error)

	// FindByShopDomain finds a store by its shop domain
	FindByShopDomain(ctx context.Context, shopDomain string) (*Store, error)

	// FindActiveByTenant finds the single active store for a tenant
	FindActiveByTenant(ctx context.Context, tenantID uuid.UUID) (*Store, error)

	// FindByTenant finds all stores (active or not) for a tenant
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]Store, error)

	// Save creates or updates a store
	Save(ctx context.Context, s *Store) error

	// SaveWithLock saves a store with optimistic locking (version check)
	SaveWithLock(ctx context.Context, s *Store) error

	// Delete hard-deletes a store row. Only valid once all dependent rows
	// across the purge tables are gone.
	Delete(ctx context.Context, id uuid.UUID) error
}
