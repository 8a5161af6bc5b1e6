package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/catalog"
)

// GormInventoryLevelRepository implements catalog.InventoryLevelRepository using GORM
type GormInventoryLevelRepository struct {
	db *gorm.DB
}

// NewGormInventoryLevelRepository creates a new GormInventoryLevelRepository
func NewGormInventoryLevelRepository(db *gorm.DB) *GormInventoryLevelRepository {
	return &GormInventoryLevelRepository{db: db}
}

// FindByItemIDs performs batched lookups across all locations of the items
func (r *GormInventoryLevelRepository) FindByItemIDs(ctx context.Context, storeID uuid.UUID, itemIDs []string) ([]catalog.InventoryLevel, error) {
	if len(itemIDs) == 0 {
		return []catalog.InventoryLevel{}, nil
	}
	var levels []catalog.InventoryLevel
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND inventory_item_id IN ?", storeID, itemIDs).
		Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// SumByItemIDs returns the total available count per inventory item
func (r *GormInventoryLevelRepository) SumByItemIDs(ctx context.Context, storeID uuid.UUID, itemIDs []string) (map[string]int, error) {
	if len(itemIDs) == 0 {
		return map[string]int{}, nil
	}
	type row struct {
		InventoryItemID string
		Total           int
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&catalog.InventoryLevel{}).
		Select("inventory_item_id, COALESCE(SUM(available), 0) AS total").
		Where("store_id = ? AND inventory_item_id IN ?", storeID, itemIDs).
		Group("inventory_item_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	totals := make(map[string]int, len(rows))
	for _, r := range rows {
		totals[r.InventoryItemID] = r.Total
	}
	return totals, nil
}

// Save creates or updates a level
func (r *GormInventoryLevelRepository) Save(ctx context.Context, l *catalog.InventoryLevel) error {
	return r.db.WithContext(ctx).Save(l).Error
}

// Insert creates a level, surfacing shared.ErrAlreadyExists on a concurrent duplicate
func (r *GormInventoryLevelRepository) Insert(ctx context.Context, l *catalog.InventoryLevel) error {
	return translateInsertError(r.db.WithContext(ctx).Create(l).Error)
}

// DeletePageForStore deletes up to limit rows for a store
func (r *GormInventoryLevelRepository) DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error) {
	return deletePageForStore(ctx, r.db, catalog.InventoryLevel{}.TableName(), storeID, limit)
}

// CountForStore counts remaining rows for a store
func (r *GormInventoryLevelRepository) CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	return countForStore(ctx, r.db, catalog.InventoryLevel{}.TableName(), storeID)
}

// Ensure GormInventoryLevelRepository implements catalog.InventoryLevelRepository
var _ catalog.InventoryLevelRepository = (*GormInventoryLevelRepository)(nil)
