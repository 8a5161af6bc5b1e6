package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storesync/backend/internal/domain/ingest"
)

// GormReceiptLedger implements ingest.ReceiptLedger on the webhook_receipts
// table. Duplicate detection rides on the composite primary key: the insert
// uses ON CONFLICT DO NOTHING, so two concurrent deliveries of the same event
// race on the constraint and exactly one observes an inserted row.
type GormReceiptLedger struct {
	db *gorm.DB
}

// NewGormReceiptLedger creates a new GormReceiptLedger
func NewGormReceiptLedger(db *gorm.DB) *GormReceiptLedger {
	return &GormReceiptLedger{db: db}
}

// RecordOrReject atomically records the delivery. Returns true when the
// delivery is new, false when it was already recorded.
func (l *GormReceiptLedger) RecordOrReject(ctx context.Context, eventID, topic, shopDomain string) (bool, error) {
	receipt := ingest.WebhookReceipt{
		EventID:    eventID,
		Topic:      topic,
		ShopDomain: shopDomain,
		ReceivedAt: time.Now().UTC(),
	}
	result := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&receipt)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Ensure GormReceiptLedger implements ingest.ReceiptLedger
var _ ingest.ReceiptLedger = (*GormReceiptLedger)(nil)
