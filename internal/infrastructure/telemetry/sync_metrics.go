// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// SyncMetrics tracks webhook ingestion and bulk sync activity.
type SyncMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	webhookTotal        *Counter
	syncPagesTotal      *Counter
	pageSizeHalvedTotal *Counter
	reconcileTotal      *Counter
	recomputeRunsTotal  *Counter

	// Gauge metrics (point-in-time values)
	webhookBacklog *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	backlogProvider BacklogProvider
}

// BacklogProvider reports the retry-queue depth per store. The interface
// keeps the telemetry layer from depending on the ingest domain directly.
type BacklogProvider interface {
	// GetActiveStoreIDs returns the IDs of all active stores
	GetActiveStoreIDs(ctx context.Context) ([]uuid.UUID, error)

	// GetPendingWebhookCount returns the open retry-queue depth for a store
	GetPendingWebhookCount(ctx context.Context, storeID uuid.UUID) (int64, error)
}

// SyncMetricsConfig holds configuration for sync metrics.
type SyncMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 1 minute
	BacklogProvider BacklogProvider
}

// NewSyncMetrics creates a new SyncMetrics instance.
func NewSyncMetrics(cfg SyncMetricsConfig) (*SyncMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sm := &SyncMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		backlogProvider: cfg.BacklogProvider,
	}

	var err error

	sm.webhookTotal, err = NewCounter(
		cfg.Meter,
		"storesync_webhook_total",
		"Total number of webhook deliveries by topic and outcome",
		"{deliveries}",
	)
	if err != nil {
		return nil, err
	}

	sm.syncPagesTotal, err = NewCounter(
		cfg.Meter,
		"storesync_sync_pages_total",
		"Total number of bulk sync pages fetched",
		"{pages}",
	)
	if err != nil {
		return nil, err
	}

	sm.pageSizeHalvedTotal, err = NewCounter(
		cfg.Meter,
		"storesync_page_size_halved_total",
		"Number of times the fetch page size was halved after a cost rejection",
		"{reductions}",
	)
	if err != nil {
		return nil, err
	}

	sm.reconcileTotal, err = NewCounter(
		cfg.Meter,
		"storesync_reconcile_total",
		"Reconciled records by resource and outcome",
		"{records}",
	)
	if err != nil {
		return nil, err
	}

	sm.recomputeRunsTotal, err = NewCounter(
		cfg.Meter,
		"storesync_recompute_runs_total",
		"Number of downstream recompute dispatches",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	sm.webhookBacklog, err = NewGauge(
		cfg.Meter,
		"storesync_webhook_backlog",
		"Open retry-queue depth per store",
		"{webhooks}",
	)
	if err != nil {
		return nil, err
	}

	return sm, nil
}

// =============================================================================
// Webhook Metrics
// =============================================================================

// WebhookOutcome labels what happened to a delivery.
type WebhookOutcome string

const (
	WebhookOutcomeApplied   WebhookOutcome = "applied"
	WebhookOutcomeDuplicate WebhookOutcome = "duplicate"
	WebhookOutcomeDeferred  WebhookOutcome = "deferred"
	WebhookOutcomeAbandoned WebhookOutcome = "abandoned"
	WebhookOutcomeRejected  WebhookOutcome = "rejected"
)

// RecordWebhook records a processed webhook delivery.
func (sm *SyncMetrics) RecordWebhook(ctx context.Context, topic string, outcome WebhookOutcome) {
	sm.webhookTotal.Inc(ctx,
		AttrWebhookTopic.String(topic),
		AttrOutcome.String(string(outcome)),
	)
}

// =============================================================================
// Bulk Sync Metrics
// =============================================================================

// RecordSyncPage records one fetched page of a bulk sync stage.
func (sm *SyncMetrics) RecordSyncPage(ctx context.Context, storeID uuid.UUID, resource string) {
	sm.syncPagesTotal.Inc(ctx,
		AttrStoreID.String(storeID.String()),
		AttrResource.String(resource),
	)
}

// RecordPageSizeHalved records a cost-driven page size reduction.
func (sm *SyncMetrics) RecordPageSizeHalved(ctx context.Context, resource string) {
	sm.pageSizeHalvedTotal.Inc(ctx, AttrResource.String(resource))
}

// RecordReconciled records reconcile outcomes for one batch.
func (sm *SyncMetrics) RecordReconciled(ctx context.Context, resource string, created, updated, unchanged int64) {
	if created > 0 {
		sm.reconcileTotal.Add(ctx, created,
			AttrResource.String(resource), AttrOutcome.String("created"))
	}
	if updated > 0 {
		sm.reconcileTotal.Add(ctx, updated,
			AttrResource.String(resource), AttrOutcome.String("updated"))
	}
	if unchanged > 0 {
		sm.reconcileTotal.Add(ctx, unchanged,
			AttrResource.String(resource), AttrOutcome.String("unchanged"))
	}
}

// RecordRecomputeRun records a downstream recompute dispatch for a store.
func (sm *SyncMetrics) RecordRecomputeRun(ctx context.Context, storeID uuid.UUID) {
	sm.recomputeRunsTotal.Inc(ctx, AttrStoreID.String(storeID.String()))
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of the backlog gauge.
// This is non-blocking - use Stop() to stop collection.
func (sm *SyncMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	sm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}

		go sm.runPeriodicCollection(ctx, interval)
	})
}

func (sm *SyncMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	sm.collectBacklog(ctx)

	for {
		select {
		case <-sm.stopChan:
			sm.logger.Info("Stopping periodic sync metrics collection")
			return
		case <-ctx.Done():
			sm.logger.Info("Context cancelled, stopping periodic sync metrics collection")
			return
		case <-ticker.C:
			sm.collectBacklog(ctx)
		}
	}
}

func (sm *SyncMetrics) collectBacklog(ctx context.Context) {
	if sm.backlogProvider == nil {
		sm.logger.Debug("No backlog provider configured, skipping backlog collection")
		return
	}

	storeIDs, err := sm.backlogProvider.GetActiveStoreIDs(ctx)
	if err != nil {
		sm.logger.Error("Failed to get store IDs for metrics collection", zap.Error(err))
		return
	}

	for _, storeID := range storeIDs {
		depth, err := sm.backlogProvider.GetPendingWebhookCount(ctx, storeID)
		if err != nil {
			sm.logger.Warn("Failed to get webhook backlog for store",
				zap.String("store_id", storeID.String()),
				zap.Error(err),
			)
			continue
		}
		sm.webhookBacklog.Record(ctx, depth, AttrStoreID.String(storeID.String()))
	}
}

// Stop stops the periodic collection.
func (sm *SyncMetrics) Stop() {
	sm.stopOnce.Do(func() {
		close(sm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewSyncMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
