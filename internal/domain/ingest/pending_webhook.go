package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/shared"
)

// PendingStatus is the retry-queue state of a deferred webhook
type PendingStatus string

const (
	PendingAwaitingParent PendingStatus = "awaiting_parent"
	PendingRetrying       PendingStatus = "retrying"
	PendingApplied        PendingStatus = "applied"
	PendingAbandoned      PendingStatus = "abandoned"
)

// PendingWebhook is a webhook whose parent entity had not landed when the
// delivery arrived. It is rescheduled with a fixed delay up to MaxAttempts,
// then abandoned with a trace, never silently dropped.
type PendingWebhook struct {
	shared.TenantAggregateRoot
	StoreID    uuid.UUID     `gorm:"type:uuid;not null;index"`
	EventID    string        `gorm:"type:varchar(128);not null;index"`
	Topic      string        `gorm:"type:varchar(100);not null"`
	ShopDomain string        `gorm:"type:varchar(255);not null"`
	Payload    []byte        `gorm:"type:jsonb;not null"`
	Status     PendingStatus `gorm:"type:varchar(20);not null;default:'awaiting_parent';index"`

	Attempts    int       `gorm:"not null;default:0"`
	MaxAttempts int       `gorm:"not null;default:5"`
	LastError   string    `gorm:"type:text"`
	NextRetryAt time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (PendingWebhook) TableName() string {
	return "pending_webhooks"
}

// NewPendingWebhook defers a webhook whose parent is missing
func NewPendingWebhook(tenantID, storeID uuid.UUID, eventID, topic, shopDomain string, payload []byte, maxAttempts int, delay time.Duration) *PendingWebhook {
	return &PendingWebhook{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		StoreID:             storeID,
		EventID:             eventID,
		Topic:               topic,
		ShopDomain:          shopDomain,
		Payload:             payload,
		Status:              PendingAwaitingParent,
		MaxAttempts:         maxAttempts,
		NextRetryAt:         time.Now().Add(delay),
	}
}

// Due reports whether the webhook is ready for another attempt
func (p *PendingWebhook) Due(now time.Time) bool {
	return (p.Status == PendingAwaitingParent || p.Status == PendingRetrying) &&
		!now.Before(p.NextRetryAt)
}

// ScheduleRetry consumes one attempt and reschedules. Returns false when the
// attempt budget is exhausted, in which case the webhook is abandoned.
func (p *PendingWebhook) ScheduleRetry(reason string, delay time.Duration) bool {
	p.Attempts++
	p.LastError = reason
	if p.Attempts >= p.MaxAttempts {
		p.Status = PendingAbandoned
		p.Touch()
		p.IncrementVersion()
		return false
	}
	p.Status = PendingRetrying
	p.NextRetryAt = time.Now().Add(delay)
	p.Touch()
	p.IncrementVersion()
	return true
}

// Abandon gives up on the webhook regardless of remaining attempts, e.g. when
// the store itself is gone
func (p *PendingWebhook) Abandon(reason string) {
	p.Status = PendingAbandoned
	p.LastError = reason
	p.Touch()
	p.IncrementVersion()
}

// MarkApplied records successful application
func (p *PendingWebhook) MarkApplied() {
	p.Status = PendingApplied
	p.Touch()
	p.IncrementVersion()
}

// PendingWebhookRepository defines the interface for retry-queue persistence
type PendingWebhookRepository interface {
	// FindByID finds a pending webhook by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*PendingWebhook, error)

	// FindDue finds webhooks ready for another attempt, oldest first
	FindDue(ctx context.Context, now time.Time, limit int) ([]PendingWebhook, error)

	// Save creates or updates a pending webhook
	Save(ctx context.Context, p *PendingWebhook) error

	// DeletePageForStore deletes up to limit rows for a store
	DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error)

	// CountForStore counts remaining rows for a store
	CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error)
}
