package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storesync/backend/internal/domain/shared"
)

// ProductStatus mirrors the platform's product lifecycle state
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusArchived ProductStatus = "archived"
)

// Product is a mirrored storefront product. PlatformID is the reconciliation
// key and is unique per store.
type Product struct {
	shared.TenantAggregateRoot
	StoreID     uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_product_store_platform,priority:1"`
	PlatformID  string        `gorm:"type:varchar(64);not null;uniqueIndex:idx_product_store_platform,priority:2"`
	Title       string        `gorm:"type:varchar(512);not null"`
	Handle      string        `gorm:"type:varchar(255)"`
	Vendor      string        `gorm:"type:varchar(255)"`
	ProductType string        `gorm:"type:varchar(255)"`
	Status      ProductStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Tags        string        `gorm:"type:text"` // comma-joined, platform order preserved
	PublishedAt *time.Time

	// VariantCount is derived from the variant rows, never authoritative
	VariantCount int `gorm:"not null;default:0"`

	PlatformCreatedAt time.Time
	PlatformUpdatedAt time.Time
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a mirrored product for a store
func NewProduct(tenantID, storeID uuid.UUID, platformID, title string) (*Product, error) {
	if platformID == "" {
		return nil, shared.NewDomainError("MISSING_PLATFORM_ID", "Product platform ID is required")
	}
	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		StoreID:             storeID,
		PlatformID:          platformID,
		Title:               title,
		Status:              ProductStatusActive,
	}, nil
}

// Variant is a purchasable variation of a product. A variant's product
// reference always points into the same store.
type Variant struct {
	shared.TenantAggregateRoot
	StoreID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_variant_store_platform,priority:1"`
	PlatformID        string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_variant_store_platform,priority:2"`
	ProductID         uuid.UUID `gorm:"type:uuid;not null;index"`
	PlatformProductID string    `gorm:"type:varchar(64);not null;index"`

	SKU            string           `gorm:"type:varchar(255);index"`
	Title          string           `gorm:"type:varchar(512)"`
	Position       int              `gorm:"not null;default:0"`
	Price          decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	CompareAtPrice *decimal.Decimal `gorm:"type:decimal(18,4)"`
	UnitCost       *decimal.Decimal `gorm:"type:decimal(18,4)"`

	// InventoryItemID links the variant to its per-location inventory levels
	InventoryItemID string `gorm:"type:varchar(64);index"`

	// InventoryQuantity is the derived total across locations, recomputed
	// whenever any location level for this variant changes in a batch
	InventoryQuantity int `gorm:"not null;default:0"`

	PlatformCreatedAt time.Time
	PlatformUpdatedAt time.Time
}

// TableName returns the table name for GORM
func (Variant) TableName() string {
	return "variants"
}

// NewVariant creates a mirrored variant attached to a product
func NewVariant(tenantID, storeID, productID uuid.UUID, platformID, platformProductID string) (*Variant, error) {
	if platformID == "" {
		return nil, shared.NewDomainError("MISSING_PLATFORM_ID", "Variant platform ID is required")
	}
	return &Variant{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		StoreID:             storeID,
		PlatformID:          platformID,
		ProductID:           productID,
		PlatformProductID:   platformProductID,
	}, nil
}
