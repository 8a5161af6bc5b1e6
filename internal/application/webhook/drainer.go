package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/ingest"
	"github.com/storesync/backend/internal/domain/shared"
)

// Drainer periodically re-applies deferred webhooks. Each pass picks up the
// due entries oldest first, replays them through the processor's topic
// dispatch, and either applies, reschedules, or abandons them. Abandoned
// payloads are archived before the row is closed so no delivery vanishes
// without a trace.
type Drainer struct {
	processor *Processor
	archiver  Archiver
	logger    *zap.Logger
}

// NewDrainer creates a Drainer. archiver may be nil; abandonment is then
// logged only.
func NewDrainer(processor *Processor, archiver Archiver, logger *zap.Logger) *Drainer {
	return &Drainer{processor: processor, archiver: archiver, logger: logger}
}

// Run drains on the configured interval until the context is cancelled
func (dr *Drainer) Run(ctx context.Context) {
	interval := dr.processor.config.DrainInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := dr.DrainOnce(ctx); err != nil {
				dr.logger.Error("Webhook drain pass failed", zap.Error(err))
			}
		}
	}
}

// DrainOnce processes one batch of due deferred webhooks
func (dr *Drainer) DrainOnce(ctx context.Context) error {
	due, err := dr.processor.pending.FindDue(ctx, time.Now(), dr.processor.config.DrainBatchSize)
	if err != nil {
		return fmt.Errorf("find due webhooks: %w", err)
	}

	for i := range due {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := dr.drainOne(ctx, &due[i]); err != nil {
			return err
		}
	}
	return nil
}

func (dr *Drainer) drainOne(ctx context.Context, pw *ingest.PendingWebhook) error {
	log := dr.logger.With(
		zap.String("event_id", pw.EventID),
		zap.String("topic", pw.Topic),
		zap.Int("attempt", pw.Attempts+1),
	)

	st, err := dr.processor.repos.Stores.FindByID(ctx, pw.StoreID)
	if errors.Is(err, shared.ErrNotFound) {
		pw.Abandon("store no longer exists")
		return dr.processor.pending.Save(ctx, pw)
	}
	if err != nil {
		return err
	}
	if !st.Active {
		pw.Abandon("store inactive")
		return dr.processor.pending.Save(ctx, pw)
	}

	mutated := ingest.NewMutatedSet()
	delivery := Delivery{EventID: pw.EventID, Topic: pw.Topic, ShopDomain: pw.ShopDomain, Payload: pw.Payload}
	result, err := dr.processor.apply(ctx, st, delivery, mutated)

	switch {
	case err != nil:
		if !pw.ScheduleRetry(err.Error(), dr.processor.config.RetryDelay) {
			dr.abandonWithTrace(ctx, pw, log)
		}
		return dr.processor.pending.Save(ctx, pw)

	case result.Outcome == ingest.OutcomeDeferred:
		if !pw.ScheduleRetry(result.Reason, dr.processor.config.RetryDelay) {
			dr.abandonWithTrace(ctx, pw, log)
		}
		return dr.processor.pending.Save(ctx, pw)

	default:
		pw.MarkApplied()
		if err := dr.processor.pending.Save(ctx, pw); err != nil {
			return err
		}
		if !mutated.Empty() {
			dr.processor.notifier.NotifyMutation(ctx, st.TenantID, st.ID, mutated)
		}
		log.Info("Deferred webhook applied")
		return nil
	}
}

// abandonWithTrace archives the payload of a webhook whose retry budget ran
// out and logs the full trail
func (dr *Drainer) abandonWithTrace(ctx context.Context, pw *ingest.PendingWebhook, log *zap.Logger) {
	if dr.archiver != nil {
		key := fmt.Sprintf("abandoned/%s/%s/%s.json", pw.ShopDomain, pw.Topic, pw.EventID)
		if err := dr.archiver.Store(ctx, key, pw.Payload); err != nil {
			log.Error("Failed to archive abandoned webhook payload", zap.Error(err))
		}
	}
	log.Error("Webhook abandoned after retry budget",
		zap.Int("attempts", pw.Attempts),
		zap.Int("max_attempts", pw.MaxAttempts),
		zap.String("last_error", pw.LastError),
	)
}
