package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/trade"
)

// GormFulfillmentRepository implements trade.FulfillmentRepository using GORM
type GormFulfillmentRepository struct {
	db *gorm.DB
}

// NewGormFulfillmentRepository creates a new GormFulfillmentRepository
func NewGormFulfillmentRepository(db *gorm.DB) *GormFulfillmentRepository {
	return &GormFulfillmentRepository{db: db}
}

// FindByPlatformIDs performs batched point lookups by platform ID
func (r *GormFulfillmentRepository) FindByPlatformIDs(ctx context.Context, storeID uuid.UUID, platformIDs []string) ([]trade.Fulfillment, error) {
	if len(platformIDs) == 0 {
		return []trade.Fulfillment{}, nil
	}
	var fulfillments []trade.Fulfillment
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND platform_id IN ?", storeID, platformIDs).
		Find(&fulfillments).Error; err != nil {
		return nil, err
	}
	return fulfillments, nil
}

// Save creates or updates a fulfillment
func (r *GormFulfillmentRepository) Save(ctx context.Context, f *trade.Fulfillment) error {
	return r.db.WithContext(ctx).Save(f).Error
}

// Insert creates a fulfillment, surfacing shared.ErrAlreadyExists on a concurrent duplicate
func (r *GormFulfillmentRepository) Insert(ctx context.Context, f *trade.Fulfillment) error {
	return translateInsertError(r.db.WithContext(ctx).Create(f).Error)
}

// DeletePageForStore deletes up to limit rows for a store
func (r *GormFulfillmentRepository) DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error) {
	return deletePageForStore(ctx, r.db, trade.Fulfillment{}.TableName(), storeID, limit)
}

// CountForStore counts remaining rows for a store
func (r *GormFulfillmentRepository) CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	return countForStore(ctx, r.db, trade.Fulfillment{}.TableName(), storeID)
}

// Ensure GormFulfillmentRepository implements trade.FulfillmentRepository
var _ trade.FulfillmentRepository = (*GormFulfillmentRepository)(nil)
