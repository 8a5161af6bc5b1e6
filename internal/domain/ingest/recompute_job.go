package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/shared"
)

// RecomputeJob is the contract with the downstream recomputation scheduler:
// one coalesced request per tenant per debounce window, carrying the distinct
// affected dates. This core only enqueues; execution is external.
type RecomputeJob struct {
	shared.TenantAggregateRoot
	StoreID          uuid.UUID `gorm:"type:uuid;not null;index"`
	Dates            string    `gorm:"type:jsonb;not null"` // JSON array of YYYY-MM-DD
	Scope            string    `gorm:"type:varchar(50);not null;default:'daily_metrics'"`
	DebounceWindowMs int64     `gorm:"not null;default:0"`
	EnqueuedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RecomputeJob) TableName() string {
	return "recompute_jobs"
}

// RecomputeJobRepository defines the interface for recompute job persistence
type RecomputeJobRepository interface {
	// Insert enqueues a job for the external scheduler
	Insert(ctx context.Context, job *RecomputeJob) error

	// FindByTenant lists enqueued jobs for a tenant, newest first
	FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]RecomputeJob, error)

	// DeletePageForStore deletes up to limit rows for a store
	DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error)

	// CountForStore counts remaining rows for a store
	CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error)
}
