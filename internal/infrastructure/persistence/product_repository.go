package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/shared"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByPlatformIDs performs batched point lookups by platform ID
func (r *GormProductRepository) FindByPlatformIDs(ctx context.Context, storeID uuid.UUID, platformIDs []string) ([]catalog.Product, error) {
	if len(platformIDs) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND platform_id IN ?", storeID, platformIDs).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindByPlatformID finds a single product by its platform ID
func (r *GormProductRepository) FindByPlatformID(ctx context.Context, storeID uuid.UUID, platformID string) (*catalog.Product, error) {
	var p catalog.Product
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND platform_id = ?", storeID, platformID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// Insert creates a product, surfacing shared.ErrAlreadyExists on a concurrent duplicate
func (r *GormProductRepository) Insert(ctx context.Context, p *catalog.Product) error {
	return translateInsertError(r.db.WithContext(ctx).Create(p).Error)
}

// DeleteByPlatformID removes a product mirror row
func (r *GormProductRepository) DeleteByPlatformID(ctx context.Context, storeID uuid.UUID, platformID string) error {
	result := r.db.WithContext(ctx).
		Delete(&catalog.Product{}, "store_id = ? AND platform_id = ?", storeID, platformID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeletePageForStore deletes up to limit rows for a store
func (r *GormProductRepository) DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error) {
	return deletePageForStore(ctx, r.db, catalog.Product{}.TableName(), storeID, limit)
}

// CountForStore counts remaining rows for a store
func (r *GormProductRepository) CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	return countForStore(ctx, r.db, catalog.Product{}.TableName(), storeID)
}

// Ensure GormProductRepository implements catalog.ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
