package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/shared"
)

// SyncSessionRepository defines the interface for sync session persistence
type SyncSessionRepository interface {
	// FindByID finds a session by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*SyncSession, error)

	// FindByStore finds sessions for a store, newest first
	FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]SyncSession, error)

	// FindLatestByStore finds the most recent session for a store
	FindLatestByStore(ctx context.Context, storeID uuid.UUID) (*SyncSession, error)

	// Save creates or updates a session
	Save(ctx context.Context, session *SyncSession) error
}
