package ingest

import (
	"context"
	"time"
)

// WebhookReceipt is one row of the append-only idempotency ledger. Existence
// alone signals "already handled"; rows are never mutated or deleted here
// (pruning is a retention job outside this core).
type WebhookReceipt struct {
	EventID    string    `gorm:"type:varchar(128);primaryKey"`
	Topic      string    `gorm:"type:varchar(100);primaryKey"`
	ShopDomain string    `gorm:"type:varchar(255);primaryKey"`
	ReceivedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WebhookReceipt) TableName() string {
	return "webhook_receipts"
}

// ReceiptLedger records webhook deliveries before processing so duplicate
// deliveries can be detected and short-circuited.
type ReceiptLedger interface {
	// RecordOrReject atomically records the delivery. Returns true when the
	// delivery is new, false when an identical delivery was already recorded.
	// Must be safe against concurrent delivery of the same event.
	RecordOrReject(ctx context.Context, eventID, topic, shopDomain string) (bool, error)
}
