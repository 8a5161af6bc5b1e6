package shared

import (
	"context"
	"time"
)

// IdempotencyStore stores processed delivery IDs to prevent duplicate processing.
// It is a fast-path cache in front of the durable receipt ledger: a positive
// answer is authoritative, a negative answer must fall through to the ledger.
type IdempotencyStore interface {
	// MarkProcessed marks a delivery as processed with a TTL.
	// Returns true if the delivery was newly marked, false if it was already seen.
	MarkProcessed(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a delivery has already been processed
	IsProcessed(ctx context.Context, deliveryID string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for the fast-path idempotency cache
type IdempotencyConfig struct {
	// TTL is the time-to-live for cached delivery IDs. The durable ledger
	// outlives the cache; this only bounds cache memory.
	TTL time.Duration

	// Enabled determines whether the fast path is consulted at all
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
