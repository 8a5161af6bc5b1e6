package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/catalog"
)

// GormVariantRepository implements catalog.VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// FindByPlatformIDs performs batched point lookups by platform ID
func (r *GormVariantRepository) FindByPlatformIDs(ctx context.Context, storeID uuid.UUID, platformIDs []string) ([]catalog.Variant, error) {
	if len(platformIDs) == 0 {
		return []catalog.Variant{}, nil
	}
	var variants []catalog.Variant
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND platform_id IN ?", storeID, platformIDs).
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// FindByInventoryItemIDs finds variants owning the given inventory items
func (r *GormVariantRepository) FindByInventoryItemIDs(ctx context.Context, storeID uuid.UUID, itemIDs []string) ([]catalog.Variant, error) {
	if len(itemIDs) == 0 {
		return []catalog.Variant{}, nil
	}
	var variants []catalog.Variant
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND inventory_item_id IN ?", storeID, itemIDs).
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// FindByProductID finds all variants of a product
func (r *GormVariantRepository) FindByProductID(ctx context.Context, productID uuid.UUID) ([]catalog.Variant, error) {
	var variants []catalog.Variant
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position ASC").
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// Save creates or updates a variant
func (r *GormVariantRepository) Save(ctx context.Context, v *catalog.Variant) error {
	return r.db.WithContext(ctx).Save(v).Error
}

// Insert creates a variant, surfacing shared.ErrAlreadyExists on a concurrent duplicate
func (r *GormVariantRepository) Insert(ctx context.Context, v *catalog.Variant) error {
	return translateInsertError(r.db.WithContext(ctx).Create(v).Error)
}

// DeleteByProductID removes all variants of a product
func (r *GormVariantRepository) DeleteByProductID(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&catalog.Variant{}, "product_id = ?", productID).Error
}

// DeletePageForStore deletes up to limit rows for a store
func (r *GormVariantRepository) DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error) {
	return deletePageForStore(ctx, r.db, catalog.Variant{}.TableName(), storeID, limit)
}

// CountForStore counts remaining rows for a store
func (r *GormVariantRepository) CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	return countForStore(ctx, r.db, catalog.Variant{}.TableName(), storeID)
}

// Ensure GormVariantRepository implements catalog.VariantRepository
var _ catalog.VariantRepository = (*GormVariantRepository)(nil)
