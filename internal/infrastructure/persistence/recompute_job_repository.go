package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/ingest"
	"github.com/storesync/backend/internal/domain/shared"
)

// GormRecomputeJobRepository implements ingest.RecomputeJobRepository using GORM
type GormRecomputeJobRepository struct {
	db *gorm.DB
}

// NewGormRecomputeJobRepository creates a new GormRecomputeJobRepository
func NewGormRecomputeJobRepository(db *gorm.DB) *GormRecomputeJobRepository {
	return &GormRecomputeJobRepository{db: db}
}

// Insert enqueues a job for the external scheduler
func (r *GormRecomputeJobRepository) Insert(ctx context.Context, job *ingest.RecomputeJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// FindByTenant lists enqueued jobs for a tenant, newest first
func (r *GormRecomputeJobRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ingest.RecomputeJob, error) {
	var jobs []ingest.RecomputeJob
	query := applyFilter(
		r.db.WithContext(ctx).Model(&ingest.RecomputeJob{}).Where("tenant_id = ?", tenantID),
		filter, "created_at", "enqueued_at",
	)
	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// DeletePageForStore deletes up to limit rows for a store
func (r *GormRecomputeJobRepository) DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error) {
	return deletePageForStore(ctx, r.db, ingest.RecomputeJob{}.TableName(), storeID, limit)
}

// CountForStore counts remaining rows for a store
func (r *GormRecomputeJobRepository) CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	return countForStore(ctx, r.db, ingest.RecomputeJob{}.TableName(), storeID)
}

// Ensure GormRecomputeJobRepository implements ingest.RecomputeJobRepository
var _ ingest.RecomputeJobRepository = (*GormRecomputeJobRepository)(nil)
