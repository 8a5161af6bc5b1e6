package sync

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/infrastructure/shopify"
)

// LoggingCostRecorder is the default CostRecorder: the unit costs already land
// on the variant rows during reconciliation, so until a margin pipeline is
// attached this only surfaces the volume in the logs.
type LoggingCostRecorder struct {
	logger *zap.Logger
}

// NewLoggingCostRecorder creates a new LoggingCostRecorder
func NewLoggingCostRecorder(logger *zap.Logger) *LoggingCostRecorder {
	return &LoggingCostRecorder{logger: logger}
}

// RecordUnitCosts implements CostRecorder
func (r *LoggingCostRecorder) RecordUnitCosts(_ context.Context, storeID uuid.UUID, costs []shopify.VariantCost) error {
	r.logger.Debug("Unit costs observed",
		zap.String("store_id", storeID.String()),
		zap.Int("variants", len(costs)),
	)
	return nil
}

var _ CostRecorder = (*LoggingCostRecorder)(nil)
