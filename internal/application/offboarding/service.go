package offboarding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/ingest"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/store"
	"github.com/storesync/backend/internal/infrastructure/config"
)

// ErrResidualData means dependent rows survived the purge and the verification
// sweeps. The store row is kept so a later run can finish the job; deleting it
// would orphan the residue forever.
var ErrResidualData = shared.NewDomainError("RESIDUAL_DATA", "Dependent rows remain after purge, store row retained")

// Purger executes batched deletes against the fixed offboarding table list
type Purger interface {
	// DeletePage deletes up to limit rows of the table for a store
	DeletePage(ctx context.Context, table ingest.PurgeTable, storeID uuid.UUID, limit int) (int64, error)

	// Count counts remaining rows of the table for a store
	Count(ctx context.Context, table ingest.PurgeTable, storeID uuid.UUID) (int64, error)
}

// Service removes every trace of a store when the merchant uninstalls. The
// purge runs as a chain of bounded steps through the job queue: each step
// deletes at most one page of one table, children before parents, and hands
// back a continuation cursor. The store row itself goes last, only after
// verification confirms the dependent tables are empty.
type Service struct {
	stores store.Repository
	purger Purger
	cache  store.StatusCache
	config config.PurgeConfig
	logger *zap.Logger
}

// NewService creates a new offboarding Service
func NewService(stores store.Repository, purger Purger, cache store.StatusCache, cfg config.PurgeConfig, logger *zap.Logger) *Service {
	return &Service{
		stores: stores,
		purger: purger,
		cache:  cache,
		config: cfg,
		logger: logger,
	}
}

// RunPurgeStep executes one bounded unit of the offboarding purge and returns
// the continuation, or nil when the store is fully gone. A nil step starts the
// purge and deactivates the store; each following call deletes at most one
// page. The caller re-enqueues the returned step, so a crashed or retried job
// resumes from its last cursor instead of replaying finished tables.
func (s *Service) RunPurgeStep(ctx context.Context, storeID uuid.UUID, step *ingest.PurgeStep) (*ingest.PurgeStep, error) {
	log := s.logger.With(zap.String("store_id", storeID.String()))

	if step == nil {
		return s.begin(ctx, storeID, log)
	}

	if step.Verifying() {
		return s.finish(ctx, storeID, step, log)
	}

	table := ingest.PurgeTables()[step.TableIndex]
	deleted, err := s.purger.DeletePage(ctx, table, storeID, s.config.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("purge %s: %w", table, err)
	}

	next := *step
	next.RowsDeleted += deleted
	next.ResumeAt = time.Time{}
	if deleted < int64(s.config.BatchSize) {
		// table drained, move to the next one
		next.TableIndex++
	}
	if deleted > 0 {
		log.Debug("Purged page",
			zap.String("table", string(table)),
			zap.Int64("rows", deleted),
		)
	}
	return &next, nil
}

// begin deactivates the store so webhooks stop landing while the purge runs
func (s *Service) begin(ctx context.Context, storeID uuid.UUID, log *zap.Logger) (*ingest.PurgeStep, error) {
	st, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if st.Active {
		st.Deactivate()
		if err := s.stores.SaveWithLock(ctx, st); err != nil {
			return nil, fmt.Errorf("deactivate store: %w", err)
		}
	}
	log.Info("Offboarding started", zap.String("shop_domain", st.ShopDomain))
	return &ingest.PurgeStep{StartedAt: time.Now()}, nil
}

// finish verifies all purge tables are empty and deletes the store row. Rows
// can reappear between the purge and the check when a webhook lands
// mid-offboard; residue sends the step back to the first table for another
// sweep, with backoff, until the sweep budget runs out.
func (s *Service) finish(ctx context.Context, storeID uuid.UUID, step *ingest.PurgeStep, log *zap.Logger) (*ingest.PurgeStep, error) {
	residual, err := s.countResidual(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("verify purge: %w", err)
	}

	if residual > 0 {
		if step.SweepAttempt >= s.config.VerifyAttempts {
			log.Error("Offboarding left residual rows, store row retained for a later run",
				zap.Int64("rows", residual),
			)
			return nil, ErrResidualData
		}
		next := *step
		next.TableIndex = 0
		next.SweepAttempt++
		next.ResumeAt = time.Now().Add(s.sweepDelay(next.SweepAttempt))
		log.Warn("Residual rows after purge, sweeping again",
			zap.Int64("rows", residual),
			zap.Int("attempt", next.SweepAttempt),
			zap.Int("max_attempts", s.config.VerifyAttempts),
		)
		return &next, nil
	}

	if err := s.stores.Delete(ctx, storeID); err != nil {
		return nil, fmt.Errorf("delete store row: %w", err)
	}
	if err := s.cache.Invalidate(ctx, storeID); err != nil {
		log.Warn("Status cache invalidation failed", zap.Error(err))
	}

	log.Info("Offboarding completed",
		zap.Int64("rows_deleted", step.RowsDeleted),
		zap.Duration("took", time.Since(step.StartedAt)),
	)
	return nil, nil
}

// sweepDelay doubles per attempt from VerifyInitialDelay up to VerifyMaxDelay
func (s *Service) sweepDelay(attempt int) time.Duration {
	delay := s.config.VerifyInitialDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= s.config.VerifyMaxDelay {
			return s.config.VerifyMaxDelay
		}
	}
	if delay > s.config.VerifyMaxDelay {
		delay = s.config.VerifyMaxDelay
	}
	return delay
}

func (s *Service) countResidual(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var residual int64
	for _, table := range ingest.PurgeTables() {
		n, err := s.purger.Count(ctx, table, storeID)
		if err != nil {
			return 0, err
		}
		residual += n
	}
	return residual, nil
}
