package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/trade"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByPlatformIDs performs batched point lookups by platform ID.
// Child collections are not loaded.
func (r *GormOrderRepository) FindByPlatformIDs(ctx context.Context, storeID uuid.UUID, platformIDs []string) ([]trade.Order, error) {
	if len(platformIDs) == 0 {
		return []trade.Order{}, nil
	}
	var orders []trade.Order
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND platform_id IN ?", storeID, platformIDs).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByPlatformID finds a single order by platform ID
func (r *GormOrderRepository) FindByPlatformID(ctx context.Context, storeID uuid.UUID, platformID string) (*trade.Order, error) {
	var o trade.Order
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND platform_id = ?", storeID, platformID).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// Save creates or updates an order row
func (r *GormOrderRepository) Save(ctx context.Context, o *trade.Order) error {
	return r.db.WithContext(ctx).Save(o).Error
}

// Insert creates an order, surfacing shared.ErrAlreadyExists on a concurrent duplicate
func (r *GormOrderRepository) Insert(ctx context.Context, o *trade.Order) error {
	return translateInsertError(r.db.WithContext(ctx).Create(o).Error)
}

// DeletePageForStore deletes up to limit rows for a store
func (r *GormOrderRepository) DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error) {
	return deletePageForStore(ctx, r.db, trade.Order{}.TableName(), storeID, limit)
}

// CountForStore counts remaining rows for a store
func (r *GormOrderRepository) CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	return countForStore(ctx, r.db, trade.Order{}.TableName(), storeID)
}

// Ensure GormOrderRepository implements trade.OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
