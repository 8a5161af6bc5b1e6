package catalog

import (
	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/shared"
)

// InventoryLevel is a per-location available count for an inventory item.
// The variant's total quantity is derived from these rows.
type InventoryLevel struct {
	shared.TenantAggregateRoot
	StoreID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_invlevel_store_item_location,priority:1"`
	InventoryItemID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_invlevel_store_item_location,priority:2"`
	LocationID      string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_invlevel_store_item_location,priority:3"`
	Available       int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryLevel) TableName() string {
	return "inventory_levels"
}

// NewInventoryLevel creates a per-location inventory count
func NewInventoryLevel(tenantID, storeID uuid.UUID, inventoryItemID, locationID string, available int) (*InventoryLevel, error) {
	if inventoryItemID == "" || locationID == "" {
		return nil, shared.NewDomainError("MISSING_PLATFORM_ID", "Inventory item and location IDs are required")
	}
	return &InventoryLevel{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		StoreID:             storeID,
		InventoryItemID:     inventoryItemID,
		LocationID:          locationID,
		Available:           available,
	}, nil
}
