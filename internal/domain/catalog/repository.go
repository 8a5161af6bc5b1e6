package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByPlatformIDs performs batched point lookups by platform ID
	FindByPlatformIDs(ctx context.Context, storeID uuid.UUID, platformIDs []string) ([]Product, error)

	// FindByPlatformID finds a single product by its platform ID
	FindByPlatformID(ctx context.Context, storeID uuid.UUID, platformID string) (*Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, p *Product) error

	// Insert creates a product, failing with shared.ErrAlreadyExists if a row
	// with the same (store, platform ID) appeared concurrently
	Insert(ctx context.Context, p *Product) error

	// DeleteByPlatformID removes a product mirror row
	DeleteByPlatformID(ctx context.Context, storeID uuid.UUID, platformID string) error

	// DeletePageForStore deletes up to limit rows for a store and reports how
	// many were removed. Used by the offboarding purge.
	DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error)

	// CountForStore counts remaining rows for a store
	CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error)
}

// VariantRepository defines the interface for variant persistence
type VariantRepository interface {
	// FindByPlatformIDs performs batched point lookups by platform ID
	FindByPlatformIDs(ctx context.Context, storeID uuid.UUID, platformIDs []string) ([]Variant, error)

	// FindByInventoryItemIDs finds variants owning the given inventory items
	FindByInventoryItemIDs(ctx context.Context, storeID uuid.UUID, itemIDs []string) ([]Variant, error)

	// FindByProductID finds all variants of a product
	FindByProductID(ctx context.Context, productID uuid.UUID) ([]Variant, error)

	// Save creates or updates a variant
	Save(ctx context.Context, v *Variant) error

	// Insert creates a variant, failing with shared.ErrAlreadyExists on a
	// concurrent duplicate
	Insert(ctx context.Context, v *Variant) error

	// DeleteByProductID removes all variants of a product
	DeleteByProductID(ctx context.Context, productID uuid.UUID) error

	// DeletePageForStore deletes up to limit rows for a store
	DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error)

	// CountForStore counts remaining rows for a store
	CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error)
}

// InventoryLevelRepository defines the interface for inventory level persistence
type InventoryLevelRepository interface {
	// FindByItemIDs performs batched lookups across all locations of the items
	FindByItemIDs(ctx context.Context, storeID uuid.UUID, itemIDs []string) ([]InventoryLevel, error)

	// SumByItemIDs returns the total available count per inventory item
	SumByItemIDs(ctx context.Context, storeID uuid.UUID, itemIDs []string) (map[string]int, error)

	// Save creates or updates a level
	Save(ctx context.Context, l *InventoryLevel) error

	// Insert creates a level, failing with shared.ErrAlreadyExists on a
	// concurrent duplicate
	Insert(ctx context.Context, l *InventoryLevel) error

	// DeletePageForStore deletes up to limit rows for a store
	DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error)

	// CountForStore counts remaining rows for a store
	CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error)
}
