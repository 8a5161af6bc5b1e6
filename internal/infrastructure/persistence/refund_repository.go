package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/trade"
)

// GormRefundRepository implements trade.RefundRepository using GORM
type GormRefundRepository struct {
	db *gorm.DB
}

// NewGormRefundRepository creates a new GormRefundRepository
func NewGormRefundRepository(db *gorm.DB) *GormRefundRepository {
	return &GormRefundRepository{db: db}
}

// FindByPlatformIDs performs batched point lookups by platform ID
func (r *GormRefundRepository) FindByPlatformIDs(ctx context.Context, storeID uuid.UUID, platformIDs []string) ([]trade.Refund, error) {
	if len(platformIDs) == 0 {
		return []trade.Refund{}, nil
	}
	var refunds []trade.Refund
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND platform_id IN ?", storeID, platformIDs).
		Find(&refunds).Error; err != nil {
		return nil, err
	}
	return refunds, nil
}

// Save creates or updates a refund
func (r *GormRefundRepository) Save(ctx context.Context, rf *trade.Refund) error {
	return r.db.WithContext(ctx).Save(rf).Error
}

// Insert creates a refund, surfacing shared.ErrAlreadyExists on a concurrent duplicate
func (r *GormRefundRepository) Insert(ctx context.Context, rf *trade.Refund) error {
	return translateInsertError(r.db.WithContext(ctx).Create(rf).Error)
}

// DeletePageForStore deletes up to limit rows for a store
func (r *GormRefundRepository) DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error) {
	return deletePageForStore(ctx, r.db, trade.Refund{}.TableName(), storeID, limit)
}

// CountForStore counts remaining rows for a store
func (r *GormRefundRepository) CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	return countForStore(ctx, r.db, trade.Refund{}.TableName(), storeID)
}

// Ensure GormRefundRepository implements trade.RefundRepository
var _ trade.RefundRepository = (*GormRefundRepository)(nil)
