package recompute

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/ingest"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/store"
	"github.com/storesync/backend/internal/infrastructure/config"
)

// Dispatcher debounces per-tenant recompute requests. Mutations arriving
// within the debounce window coalesce into one job carrying the distinct
// affected dates; a steady webhook stream therefore enqueues one job per
// window instead of one per delivery. Execution of the jobs is external.
//
// Dispatch is gated on the store having finished its initial full sync:
// recomputing while the bulk backfill is still landing pages would thrash the
// downstream aggregates for no benefit.
// RunRecorder counts enqueued recompute jobs. A nil RunRecorder disables
// recording.
type RunRecorder interface {
	RecordRecomputeRun(ctx context.Context, storeID uuid.UUID)
}

type Dispatcher struct {
	jobs    ingest.RecomputeJobRepository
	stores  store.Repository
	cache   store.StatusCache
	metrics RunRecorder
	cfg     config.RecomputeConfig
	logger  *zap.Logger

	mu      sync.Mutex
	pending map[uuid.UUID]*pendingBatch
	closed  bool
	wg      sync.WaitGroup
}

type pendingBatch struct {
	storeID uuid.UUID
	dates   map[time.Time]struct{}
	timer   *time.Timer
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(jobs ingest.RecomputeJobRepository, stores store.Repository, cache store.StatusCache, metrics RunRecorder, cfg config.RecomputeConfig, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		jobs:    jobs,
		stores:  stores,
		cache:   cache,
		metrics: metrics,
		cfg:     cfg,
		logger:  logger,
		pending: make(map[uuid.UUID]*pendingBatch),
	}
}

// NotifyMutation records the affected dates of a reconciliation pass. Empty
// sets and sets without dates are ignored; they cannot change daily metrics.
func (d *Dispatcher) NotifyMutation(ctx context.Context, tenantID, storeID uuid.UUID, mutated *ingest.MutatedSet) {
	if mutated == nil || mutated.Empty() {
		return
	}
	dates := mutated.Dates()
	if len(dates) == 0 {
		return
	}

	ready, err := d.initialSyncComplete(ctx, storeID)
	if err != nil {
		d.logger.Warn("Recompute gate check failed, dropping notification",
			zap.String("store_id", storeID.String()),
			zap.Error(err),
		)
		return
	}
	if !ready {
		d.logger.Debug("Recompute suppressed, initial sync not complete",
			zap.String("store_id", storeID.String()),
		)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	batch, ok := d.pending[tenantID]
	if !ok {
		batch = &pendingBatch{
			storeID: storeID,
			dates:   make(map[time.Time]struct{}),
		}
		tid := tenantID
		batch.timer = time.AfterFunc(d.cfg.DebounceWindow, func() {
			d.flush(tid)
		})
		d.pending[tenantID] = batch
		d.wg.Add(1)
	}
	for _, day := range dates {
		batch.dates[day] = struct{}{}
	}
}

// initialSyncComplete consults the status cache first and falls back to the
// stores table on a miss, backfilling the cache. A cache miss never gates.
func (d *Dispatcher) initialSyncComplete(ctx context.Context, storeID uuid.UUID) (bool, error) {
	known, complete, err := d.cache.InitialSyncComplete(ctx, storeID)
	if err == nil && known {
		return complete, nil
	}
	if err != nil {
		d.logger.Warn("Status cache read failed, falling back to database", zap.Error(err))
	}

	st, err := d.stores.FindByID(ctx, storeID)
	if err != nil {
		return false, err
	}
	if st.InitialSyncCompleted {
		if cacheErr := d.cache.MarkInitialSyncComplete(ctx, storeID); cacheErr != nil {
			d.logger.Warn("Status cache backfill failed", zap.Error(cacheErr))
		}
	}
	return st.InitialSyncCompleted, nil
}

// flush enqueues the coalesced job for a tenant once its window elapses
func (d *Dispatcher) flush(tenantID uuid.UUID) {
	d.mu.Lock()
	batch, ok := d.pending[tenantID]
	if ok {
		delete(d.pending, tenantID)
	}
	d.mu.Unlock()
	if !ok {
		return
	}
	defer d.wg.Done()

	if err := d.enqueue(context.Background(), tenantID, batch); err != nil {
		d.logger.Error("Failed to enqueue recompute job",
			zap.String("tenant_id", tenantID.String()),
			zap.String("store_id", batch.storeID.String()),
			zap.Int("dates", len(batch.dates)),
			zap.Error(err),
		)
	}
}

func (d *Dispatcher) enqueue(ctx context.Context, tenantID uuid.UUID, batch *pendingBatch) error {
	days := make([]time.Time, 0, len(batch.dates))
	for day := range batch.dates {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	if len(days) > d.cfg.MaxPendingDates {
		d.logger.Warn("Recompute date set clamped",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("dates", len(days)),
			zap.Int("max", d.cfg.MaxPendingDates),
		)
		days = days[len(days)-d.cfg.MaxPendingDates:]
	}

	encoded := make([]string, 0, len(days))
	for _, day := range days {
		encoded = append(encoded, day.Format("2006-01-02"))
	}
	payload, err := json.Marshal(encoded)
	if err != nil {
		return err
	}

	job := &ingest.RecomputeJob{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		StoreID:             batch.storeID,
		Dates:               string(payload),
		Scope:               "daily_metrics",
		DebounceWindowMs:    d.cfg.DebounceWindow.Milliseconds(),
		EnqueuedAt:          time.Now(),
	}
	if err := d.jobs.Insert(ctx, job); err != nil {
		return err
	}
	if d.metrics != nil {
		d.metrics.RecordRecomputeRun(ctx, batch.storeID)
	}

	d.logger.Info("Recompute job enqueued",
		zap.String("tenant_id", tenantID.String()),
		zap.String("store_id", batch.storeID.String()),
		zap.Int("dates", len(encoded)),
	)
	return nil
}

// Close flushes every pending batch and stops accepting notifications
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	var tenants []uuid.UUID
	for tenantID, batch := range d.pending {
		if batch.timer.Stop() {
			tenants = append(tenants, tenantID)
		}
	}
	d.mu.Unlock()

	for _, tenantID := range tenants {
		d.flush(tenantID)
	}
	d.wg.Wait()
}
