// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBacklogProvider implements BacklogProvider using GORM.
// It queries the stores and pending_webhooks tables directly.
type GormBacklogProvider struct {
	db *gorm.DB
}

// NewGormBacklogProvider creates a new GormBacklogProvider.
func NewGormBacklogProvider(db *gorm.DB) *GormBacklogProvider {
	return &GormBacklogProvider{db: db}
}

// GetActiveStoreIDs returns the IDs of all active stores.
func (p *GormBacklogProvider) GetActiveStoreIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("stores").
		Select("id").
		Where("active = ?", true).
		Find(&ids).Error

	return ids, err
}

// GetPendingWebhookCount returns the open retry-queue depth for a store.
func (p *GormBacklogProvider) GetPendingWebhookCount(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("pending_webhooks").
		Where("store_id = ? AND status IN ?", storeID, []string{"awaiting_parent", "retrying"}).
		Count(&count).Error

	return count, err
}
