package storage

import (
	"context"

	"go.uber.org/zap"

	"github.com/storesync/backend/internal/application/webhook"
)

// Ensure NoopArchive implements the drainer's Archiver
var _ webhook.Archiver = (*NoopArchive)(nil)

// NoopArchive logs payload keys instead of persisting them. Used when the
// archive bucket is not configured, typically in development.
type NoopArchive struct {
	logger *zap.Logger
}

// NewNoopArchive creates a new NoopArchive
func NewNoopArchive(logger *zap.Logger) *NoopArchive {
	return &NoopArchive{logger: logger}
}

// Store logs the key and drops the payload
func (a *NoopArchive) Store(_ context.Context, key string, data []byte) error {
	a.logger.Warn("Payload archival disabled, dropping payload",
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return nil
}
