package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/ingest"
	"github.com/storesync/backend/internal/domain/store"
)

// SyncRunner runs the staged bulk synchronization of one store
type SyncRunner interface {
	RunInitialSync(ctx context.Context, storeID uuid.UUID) (*store.SyncSession, error)
}

// Offboarder purges mirrored store data one bounded step at a time
type Offboarder interface {
	RunPurgeStep(ctx context.Context, storeID uuid.UUID, step *ingest.PurgeStep) (*ingest.PurgeStep, error)
}

// TaskExecutor dispatches scheduler jobs to the application services
type TaskExecutor struct {
	syncs       SyncRunner
	offboarding Offboarder
	logger      *zap.Logger
}

// NewTaskExecutor creates a new task executor
func NewTaskExecutor(syncs SyncRunner, offboarding Offboarder, logger *zap.Logger) *TaskExecutor {
	return &TaskExecutor{
		syncs:       syncs,
		offboarding: offboarding,
		logger:      logger,
	}
}

// Execute runs a single job and returns the continuation job, if any
func (e *TaskExecutor) Execute(ctx context.Context, job *Job) (*Job, error) {
	switch job.Kind {
	case JobKindInitialSync:
		session, err := e.syncs.RunInitialSync(ctx, job.StoreID)
		if err != nil {
			return nil, err
		}
		e.logger.Info("Initial sync finished",
			zap.String("store_id", job.StoreID.String()),
			zap.String("session_id", session.ID.String()),
			zap.Int("pages_fetched", session.PagesFetched),
		)
		return nil, nil
	case JobKindOffboard:
		next, err := e.offboarding.RunPurgeStep(ctx, job.StoreID, job.Purge)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, nil
		}
		cont := NewJob(JobKindOffboard, job.StoreID, job.MaxRetries)
		cont.Purge = next
		if !next.ResumeAt.IsZero() {
			resumeAt := next.ResumeAt
			cont.NextRetryAt = &resumeAt
		}
		return cont, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownJobKind, job.Kind)
	}
}
