package partner

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByPlatformIDs performs batched point lookups by platform ID
	FindByPlatformIDs(ctx context.Context, storeID uuid.UUID, platformIDs []string) ([]Customer, error)

	// FindByPlatformID finds a single customer by platform ID
	FindByPlatformID(ctx context.Context, storeID uuid.UUID, platformID string) (*Customer, error)

	// Save creates or updates a customer
	Save(ctx context.Context, c *Customer) error

	// Insert creates a customer, failing with shared.ErrAlreadyExists on a
	// concurrent duplicate
	Insert(ctx context.Context, c *Customer) error

	// DeleteByPlatformID removes a customer mirror row. Orders keep their weak
	// back-reference; deleting a customer never cascades to orders.
	DeleteByPlatformID(ctx context.Context, storeID uuid.UUID, platformID string) error

	// DeletePageForStore deletes up to limit rows for a store
	DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error)

	// CountForStore counts remaining rows for a store
	CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error)
}
