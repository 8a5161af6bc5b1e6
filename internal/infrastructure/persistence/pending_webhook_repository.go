package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/ingest"
	"github.com/storesync/backend/internal/domain/shared"
)

// GormPendingWebhookRepository implements ingest.PendingWebhookRepository using GORM
type GormPendingWebhookRepository struct {
	db *gorm.DB
}

// NewGormPendingWebhookRepository creates a new GormPendingWebhookRepository
func NewGormPendingWebhookRepository(db *gorm.DB) *GormPendingWebhookRepository {
	return &GormPendingWebhookRepository{db: db}
}

// FindByID finds a pending webhook by its ID
func (r *GormPendingWebhookRepository) FindByID(ctx context.Context, id uuid.UUID) (*ingest.PendingWebhook, error) {
	var p ingest.PendingWebhook
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindDue finds webhooks ready for another attempt, oldest first
func (r *GormPendingWebhookRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]ingest.PendingWebhook, error) {
	var pending []ingest.PendingWebhook
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND next_retry_at <= ?",
			[]ingest.PendingStatus{ingest.PendingAwaitingParent, ingest.PendingRetrying}, now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&pending).Error; err != nil {
		return nil, err
	}
	return pending, nil
}

// Save creates or updates a pending webhook
func (r *GormPendingWebhookRepository) Save(ctx context.Context, p *ingest.PendingWebhook) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// DeletePageForStore deletes up to limit rows for a store
func (r *GormPendingWebhookRepository) DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error) {
	return deletePageForStore(ctx, r.db, ingest.PendingWebhook{}.TableName(), storeID, limit)
}

// CountForStore counts remaining rows for a store
func (r *GormPendingWebhookRepository) CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	return countForStore(ctx, r.db, ingest.PendingWebhook{}.TableName(), storeID)
}

// Ensure GormPendingWebhookRepository implements ingest.PendingWebhookRepository
var _ ingest.PendingWebhookRepository = (*GormPendingWebhookRepository)(nil)
