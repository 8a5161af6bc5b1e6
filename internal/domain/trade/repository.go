package trade

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByPlatformIDs performs batched point lookups by platform ID.
	// Child collections are not loaded.
	FindByPlatformIDs(ctx context.Context, storeID uuid.UUID, platformIDs []string) ([]Order, error)

	// FindByPlatformID finds a single order by platform ID
	FindByPlatformID(ctx context.Context, storeID uuid.UUID, platformID string) (*Order, error)

	// Save creates or updates an order row (children are persisted separately)
	Save(ctx context.Context, o *Order) error

	// Insert creates an order, failing with shared.ErrAlreadyExists on a
	// concurrent duplicate
	Insert(ctx context.Context, o *Order) error

	// DeletePageForStore deletes up to limit rows for a store
	DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error)

	// CountForStore counts remaining rows for a store
	CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error)
}

// LineItemRepository defines the interface for order line persistence
type LineItemRepository interface {
	FindByPlatformIDs(ctx context.Context, storeID uuid.UUID, platformIDs []string) ([]LineItem, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]LineItem, error)

	// FindUnlinkedByPlatformProductIDs finds lines whose product reference has
	// not been backfilled yet for the given products
	FindUnlinkedByPlatformProductIDs(ctx context.Context, storeID uuid.UUID, platformProductIDs []string) ([]LineItem, error)

	Save(ctx context.Context, li *LineItem) error
	Insert(ctx context.Context, li *LineItem) error
	DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error)
	CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error)
}

// TransactionRepository defines the interface for transaction persistence
type TransactionRepository interface {
	FindByPlatformIDs(ctx context.Context, storeID uuid.UUID, platformIDs []string) ([]Transaction, error)
	Save(ctx context.Context, t *Transaction) error
	Insert(ctx context.Context, t *Transaction) error
	DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error)
	CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error)
}

// RefundRepository defines the interface for refund persistence
type RefundRepository interface {
	FindByPlatformIDs(ctx context.Context, storeID uuid.UUID, platformIDs []string) ([]Refund, error)
	Save(ctx context.Context, r *Refund) error
	Insert(ctx context.Context, r *Refund) error
	DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error)
	CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error)
}

// FulfillmentRepository defines the interface for fulfillment persistence
type FulfillmentRepository interface {
	FindByPlatformIDs(ctx context.Context, storeID uuid.UUID, platformIDs []string) ([]Fulfillment, error)
	Save(ctx context.Context, f *Fulfillment) error
	Insert(ctx context.Context, f *Fulfillment) error
	DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error)
	CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error)
}
