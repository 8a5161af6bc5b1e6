package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/store"
)

// GormSyncSessionRepository implements store.SyncSessionRepository using GORM
type GormSyncSessionRepository struct {
	db *gorm.DB
}

// NewGormSyncSessionRepository creates a new GormSyncSessionRepository
func NewGormSyncSessionRepository(db *gorm.DB) *GormSyncSessionRepository {
	return &GormSyncSessionRepository{db: db}
}

// FindByID finds a session by its ID
func (r *GormSyncSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*store.SyncSession, error) {
	var session store.SyncSession
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// FindByStore finds sessions for a store, newest first
func (r *GormSyncSessionRepository) FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]store.SyncSession, error) {
	var sessions []store.SyncSession
	query := applyFilter(
		r.db.WithContext(ctx).Model(&store.SyncSession{}).Where("store_id = ?", storeID),
		filter, "created_at", "started_at",
	)
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// FindLatestByStore finds the most recent session for a store
func (r *GormSyncSessionRepository) FindLatestByStore(ctx context.Context, storeID uuid.UUID) (*store.SyncSession, error) {
	var session store.SyncSession
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Save creates or updates a session
func (r *GormSyncSessionRepository) Save(ctx context.Context, session *store.SyncSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

// Ensure GormSyncSessionRepository implements store.SyncSessionRepository
var _ store.SyncSessionRepository = (*GormSyncSessionRepository)(nil)
