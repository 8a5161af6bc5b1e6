package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/store"
)

// ErrStoreAlreadyConnected means the tenant already has a different shop
// connected. One active connection per tenant, enforced here.
var ErrStoreAlreadyConnected = shared.NewDomainError("STORE_ALREADY_CONNECTED", "Another store is already connected for this account")

// ErrStoreClaimed means the shop domain belongs to a different tenant
var ErrStoreClaimed = shared.NewDomainError("STORE_CLAIMED", "This shop is connected to a different account")

// PurgeQueue accepts disconnected stores for background offboarding
type PurgeQueue interface {
	Enqueue(ctx context.Context, storeID uuid.UUID) error
}

// Service manages the lifecycle of store connections
type Service struct {
	stores   store.Repository
	sessions store.SyncSessionRepository
	cache    store.StatusCache
	purge    PurgeQueue
	logger   *zap.Logger
}

// NewService creates a new store lifecycle Service
func NewService(stores store.Repository, sessions store.SyncSessionRepository, cache store.StatusCache, purge PurgeQueue, logger *zap.Logger) *Service {
	return &Service{
		stores:   stores,
		sessions: sessions,
		cache:    cache,
		purge:    purge,
		logger:   logger,
	}
}

// Connect installs a shop for a tenant. Reconnecting the same shop refreshes
// the access token; a previously uninstalled connection is reactivated with
// its mirrored data intact.
func (s *Service) Connect(ctx context.Context, tenantID uuid.UUID, shopDomain, accessToken string) (*store.Store, error) {
	shopDomain = strings.ToLower(strings.TrimSpace(shopDomain))

	active, err := s.stores.FindActiveByTenant(ctx, tenantID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if active != nil {
		if active.ShopDomain != shopDomain {
			return nil, ErrStoreAlreadyConnected
		}
		// token rotation for the already-connected shop
		if err := active.Reactivate(accessToken); err != nil {
			return nil, err
		}
		if err := s.stores.SaveWithLock(ctx, active); err != nil {
			return nil, err
		}
		return active, nil
	}

	existing, err := s.stores.FindByShopDomain(ctx, shopDomain)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		st, err := store.NewStore(tenantID, shopDomain, accessToken)
		if err != nil {
			return nil, err
		}
		if err := s.stores.Save(ctx, st); err != nil {
			return nil, err
		}
		s.logger.Info("Store connected",
			zap.String("store_id", st.ID.String()),
			zap.String("shop_domain", st.ShopDomain),
		)
		return st, nil

	case err != nil:
		return nil, err

	case existing.TenantID != tenantID:
		return nil, ErrStoreClaimed

	default:
		if err := existing.Reactivate(accessToken); err != nil {
			return nil, err
		}
		if err := s.stores.SaveWithLock(ctx, existing); err != nil {
			return nil, err
		}
		s.logger.Info("Store reconnected",
			zap.String("store_id", existing.ID.String()),
			zap.String("shop_domain", existing.ShopDomain),
		)
		return existing, nil
	}
}

// Disconnect deactivates a store and queues its data for purging. Calling it
// again for an already-disconnected store re-queues the purge, so a partial
// offboarding can be resumed.
func (s *Service) Disconnect(ctx context.Context, storeID uuid.UUID) error {
	st, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return err
	}

	if st.Active {
		st.Deactivate()
		if err := s.stores.SaveWithLock(ctx, st); err != nil {
			return err
		}
	}
	if err := s.cache.Invalidate(ctx, st.ID); err != nil {
		s.logger.Warn("Status cache invalidation failed", zap.Error(err))
	}
	if err := s.purge.Enqueue(ctx, st.ID); err != nil {
		return err
	}

	s.logger.Info("Store disconnected",
		zap.String("store_id", st.ID.String()),
		zap.String("shop_domain", st.ShopDomain),
	)
	return nil
}

// SyncStatus is the operator-facing view of a store's synchronization state
type SyncStatus struct {
	StoreID              uuid.UUID          `json:"store_id"`
	ShopDomain           string             `json:"shop_domain"`
	Active               bool               `json:"active"`
	InitialSyncCompleted bool               `json:"initial_sync_completed"`
	LastSyncedAt         *time.Time         `json:"last_synced_at,omitempty"`
	LatestSession        *store.SyncSession `json:"latest_session,omitempty"`
}

// ListSyncSessions returns the sync run history of a store, newest first
func (s *Service) ListSyncSessions(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]store.SyncSession, error) {
	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		return nil, err
	}
	return s.sessions.FindByStore(ctx, storeID, filter)
}

// GetSyncStatus returns the store flags plus its most recent sync session
func (s *Service) GetSyncStatus(ctx context.Context, storeID uuid.UUID) (*SyncStatus, error) {
	st, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.FindLatestByStore(ctx, st.ID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	return &SyncStatus{
		StoreID:              st.ID,
		ShopDomain:           st.ShopDomain,
		Active:               st.Active,
		InitialSyncCompleted: st.InitialSyncCompleted,
		LastSyncedAt:         st.LastSyncedAt,
		LatestSession:        session,
	}, nil
}
