package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storesync/backend/internal/domain/shared"
)

// FinancialStatus mirrors the platform's payment state of an order
type FinancialStatus string

const (
	FinancialPending           FinancialStatus = "pending"
	FinancialAuthorized        FinancialStatus = "authorized"
	FinancialPaid              FinancialStatus = "paid"
	FinancialPartiallyPaid     FinancialStatus = "partially_paid"
	FinancialRefunded          FinancialStatus = "refunded"
	FinancialPartiallyRefunded FinancialStatus = "partially_refunded"
	FinancialVoided            FinancialStatus = "voided"
)

// FulfillmentState mirrors the platform's shipping state of an order
type FulfillmentState string

const (
	FulfillmentUnfulfilled FulfillmentState = "unfulfilled"
	FulfillmentPartial     FulfillmentState = "partial"
	FulfillmentFulfilled   FulfillmentState = "fulfilled"
)

// Order is a mirrored storefront order. PlatformID is the reconciliation key.
// CustomerID is a weak back-reference: relation plus lookup, no ownership.
type Order struct {
	shared.TenantAggregateRoot
	StoreID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_order_store_platform,priority:1"`
	PlatformID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_order_store_platform,priority:2"`

	Name               string     `gorm:"type:varchar(64)"` // e.g. #1001
	CustomerID         *uuid.UUID `gorm:"type:uuid;index"`
	PlatformCustomerID string     `gorm:"type:varchar(64);index"`
	Email              string     `gorm:"type:varchar(255)"`

	FinancialStatus   FinancialStatus  `gorm:"type:varchar(30);not null;default:'pending'"`
	FulfillmentStatus FulfillmentState `gorm:"type:varchar(30);not null;default:'unfulfilled'"`

	Currency       string          `gorm:"type:varchar(10);not null;default:'USD'"`
	SubtotalPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalDiscounts decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalTax       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	ProcessedAt time.Time // drives the affected calendar date for recompute
	CancelledAt *time.Time
	ClosedAt    *time.Time

	PlatformCreatedAt time.Time
	PlatformUpdatedAt time.Time

	LineItems    []LineItem    `gorm:"-"`
	Transactions []Transaction `gorm:"-"`
	Refunds      []Refund      `gorm:"-"`
	Fulfillments []Fulfillment `gorm:"-"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a mirrored order for a store
func NewOrder(tenantID, storeID uuid.UUID, platformID string) (*Order, error) {
	if platformID == "" {
		return nil, shared.NewDomainError("MISSING_PLATFORM_ID", "Order platform ID is required")
	}
	return &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		StoreID:             storeID,
		PlatformID:          platformID,
		FinancialStatus:     FinancialPending,
		FulfillmentStatus:   FulfillmentUnfulfilled,
		SubtotalPrice:       decimal.Zero,
		TotalDiscounts:      decimal.Zero,
		TotalTax:            decimal.Zero,
		TotalPrice:          decimal.Zero,
	}, nil
}

// AffectedDate returns the calendar date this order contributes to
func (o *Order) AffectedDate() time.Time {
	d := o.ProcessedAt
	if d.IsZero() {
		d = o.PlatformCreatedAt
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// LineItem is one purchased line of an order. The product reference is
// best-effort: it stays nil until the product lands and is backfilled later.
type LineItem struct {
	shared.BaseEntity
	StoreID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_lineitem_store_platform,priority:1"`
	PlatformID        string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_lineitem_store_platform,priority:2"`
	OrderID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID         *uuid.UUID `gorm:"type:uuid;index"`
	VariantID         *uuid.UUID `gorm:"type:uuid;index"`
	PlatformProductID string     `gorm:"type:varchar(64);index"`
	PlatformVariantID string     `gorm:"type:varchar(64);index"`

	Title         string          `gorm:"type:varchar(512)"`
	SKU           string          `gorm:"type:varchar(255)"`
	Quantity      int             `gorm:"not null;default:0"`
	Price         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalDiscount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (LineItem) TableName() string {
	return "line_items"
}

// TransactionKind mirrors the platform's transaction kinds
type TransactionKind string

const (
	TransactionSale          TransactionKind = "sale"
	TransactionAuthorization TransactionKind = "authorization"
	TransactionCapture       TransactionKind = "capture"
	TransactionVoid          TransactionKind = "void"
	TransactionRefund        TransactionKind = "refund"
)

// Transaction is a payment event attached to an order
type Transaction struct {
	shared.BaseEntity
	StoreID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_txn_store_platform,priority:1"`
	PlatformID  string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_txn_store_platform,priority:2"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind        TransactionKind `gorm:"type:varchar(20);not null"`
	Status      string          `gorm:"type:varchar(20)"`
	Gateway     string          `gorm:"type:varchar(100)"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency    string          `gorm:"type:varchar(10)"`
	ProcessedAt time.Time
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "transactions"
}

// Refund is a refund event attached to an order
type Refund struct {
	shared.BaseEntity
	StoreID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_refund_store_platform,priority:1"`
	PlatformID  string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_refund_store_platform,priority:2"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Note        string          `gorm:"type:text"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ProcessedAt time.Time
}

// TableName returns the table name for GORM
func (Refund) TableName() string {
	return "refunds"
}

// Fulfillment is a shipment event attached to an order
type Fulfillment struct {
	shared.BaseEntity
	StoreID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_fulfillment_store_platform,priority:1"`
	PlatformID      string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_fulfillment_store_platform,priority:2"`
	OrderID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Status          string    `gorm:"type:varchar(30)"`
	TrackingNumber  string    `gorm:"type:varchar(100)"`
	TrackingCompany string    `gorm:"type:varchar(100)"`
	ShippedAt       *time.Time
}

// TableName returns the table name for GORM
func (Fulfillment) TableName() string {
	return "fulfillments"
}
