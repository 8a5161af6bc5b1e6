package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/trade"
)

// GormTransactionRepository implements trade.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByPlatformIDs performs batched point lookups by platform ID
func (r *GormTransactionRepository) FindByPlatformIDs(ctx context.Context, storeID uuid.UUID, platformIDs []string) ([]trade.Transaction, error) {
	if len(platformIDs) == 0 {
		return []trade.Transaction{}, nil
	}
	var txns []trade.Transaction
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND platform_id IN ?", storeID, platformIDs).
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// Save creates or updates a transaction
func (r *GormTransactionRepository) Save(ctx context.Context, t *trade.Transaction) error {
	return r.db.WithContext(ctx).Save(t).Error
}

// Insert creates a transaction, surfacing shared.ErrAlreadyExists on a concurrent duplicate
func (r *GormTransactionRepository) Insert(ctx context.Context, t *trade.Transaction) error {
	return translateInsertError(r.db.WithContext(ctx).Create(t).Error)
}

// DeletePageForStore deletes up to limit rows for a store
func (r *GormTransactionRepository) DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error) {
	return deletePageForStore(ctx, r.db, trade.Transaction{}.TableName(), storeID, limit)
}

// CountForStore counts remaining rows for a store
func (r *GormTransactionRepository) CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	return countForStore(ctx, r.db, trade.Transaction{}.TableName(), storeID)
}

// Ensure GormTransactionRepository implements trade.TransactionRepository
var _ trade.TransactionRepository = (*GormTransactionRepository)(nil)
