package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storesync/backend/internal/domain/shared"
)

// Customer is a mirrored storefront customer. OrdersCount and TotalSpent are
// maintained by the reconciler when orders land, not recomputed from a live
// join on every read.
type Customer struct {
	shared.TenantAggregateRoot
	StoreID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_customer_store_platform,priority:1"`
	PlatformID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_customer_store_platform,priority:2"`

	Email     string `gorm:"type:varchar(255);index"`
	FirstName string `gorm:"type:varchar(255)"`
	LastName  string `gorm:"type:varchar(255)"`
	Phone     string `gorm:"type:varchar(50)"`

	OrdersCount int             `gorm:"not null;default:0"`
	TotalSpent  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	PlatformCreatedAt time.Time
	PlatformUpdatedAt time.Time
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a mirrored customer for a store
func NewCustomer(tenantID, storeID uuid.UUID, platformID string) (*Customer, error) {
	if platformID == "" {
		return nil, shared.NewDomainError("MISSING_PLATFORM_ID", "Customer platform ID is required")
	}
	return &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		StoreID:             storeID,
		PlatformID:          platformID,
		TotalSpent:          decimal.Zero,
	}, nil
}

// DisplayName returns a best-effort human readable name
func (c *Customer) DisplayName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name != "" {
		return name
	}
	return c.Email
}

// ApplyOrder folds a newly created order into the customer aggregates
func (c *Customer) ApplyOrder(total decimal.Decimal) {
	c.OrdersCount++
	c.TotalSpent = c.TotalSpent.Add(total)
	c.Touch()
	c.IncrementVersion()
}
