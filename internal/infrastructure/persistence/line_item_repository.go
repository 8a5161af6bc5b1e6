package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/trade"
)

// GormLineItemRepository implements trade.LineItemRepository using GORM
type GormLineItemRepository struct {
	db *gorm.DB
}

// NewGormLineItemRepository creates a new GormLineItemRepository
func NewGormLineItemRepository(db *gorm.DB) *GormLineItemRepository {
	return &GormLineItemRepository{db: db}
}

// FindByPlatformIDs performs batched point lookups by platform ID
func (r *GormLineItemRepository) FindByPlatformIDs(ctx context.Context, storeID uuid.UUID, platformIDs []string) ([]trade.LineItem, error) {
	if len(platformIDs) == 0 {
		return []trade.LineItem{}, nil
	}
	var lines []trade.LineItem
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND platform_id IN ?", storeID, platformIDs).
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// FindByOrderID finds all lines of an order
func (r *GormLineItemRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]trade.LineItem, error) {
	var lines []trade.LineItem
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// FindUnlinkedByPlatformProductIDs finds lines whose product reference has not
// been backfilled yet for the given products
func (r *GormLineItemRepository) FindUnlinkedByPlatformProductIDs(ctx context.Context, storeID uuid.UUID, platformProductIDs []string) ([]trade.LineItem, error) {
	if len(platformProductIDs) == 0 {
		return []trade.LineItem{}, nil
	}
	var lines []trade.LineItem
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND product_id IS NULL AND platform_product_id IN ?", storeID, platformProductIDs).
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// Save creates or updates a line
func (r *GormLineItemRepository) Save(ctx context.Context, li *trade.LineItem) error {
	return r.db.WithContext(ctx).Save(li).Error
}

// Insert creates a line, surfacing shared.ErrAlreadyExists on a concurrent duplicate
func (r *GormLineItemRepository) Insert(ctx context.Context, li *trade.LineItem) error {
	return translateInsertError(r.db.WithContext(ctx).Create(li).Error)
}

// DeletePageForStore deletes up to limit rows for a store
func (r *GormLineItemRepository) DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error) {
	return deletePageForStore(ctx, r.db, trade.LineItem{}.TableName(), storeID, limit)
}

// CountForStore counts remaining rows for a store
func (r *GormLineItemRepository) CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	return countForStore(ctx, r.db, trade.LineItem{}.TableName(), storeID)
}

// Ensure GormLineItemRepository implements trade.LineItemRepository
var _ trade.LineItemRepository = (*GormLineItemRepository)(nil)
