package store

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/shared"
)

// Store represents one storefront connection for a tenant.
// At most one active store may exist per tenant at a time; the install flow
// enforces this by deactivating any previous connection first.
type Store struct {
	shared.TenantAggregateRoot
	ShopDomain           string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	AccessToken          string     `gorm:"type:varchar(255);not null"`
	Active               bool       `gorm:"not null;default:true;index"`
	UninstalledAt        *time.Time `gorm:"index"`
	LastSyncedAt         *time.Time
	InitialSyncCompleted bool `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Store) TableName() string {
	return "stores"
}

// NewStore creates a new active store connection
func NewStore(tenantID uuid.UUID, shopDomain, accessToken string) (*Store, error) {
	shopDomain = strings.ToLower(strings.TrimSpace(shopDomain))
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP_DOMAIN", "Shop domain cannot be empty")
	}
	if accessToken == "" {
		return nil, shared.NewDomainError("INVALID_ACCESS_TOKEN", "Access token cannot be empty")
	}

	return &Store{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ShopDomain:          shopDomain,
		AccessToken:         accessToken,
		Active:              true,
	}, nil
}

// Deactivate marks the store as uninstalled. The row is kept until the
// offboarding purge has removed every dependent record.
func (s *Store) Deactivate() {
	if !s.Active {
		return
	}
	now := time.Now()
	s.Active = false
	s.UninstalledAt = &now
	s.Touch()
	s.IncrementVersion()
}

// Reactivate restores a previously uninstalled connection with a fresh token
func (s *Store) Reactivate(accessToken string) error {
	if accessToken == "" {
		return shared.NewDomainError("INVALID_ACCESS_TOKEN", "Access token cannot be empty")
	}
	s.AccessToken = accessToken
	s.Active = true
	s.UninstalledAt = nil
	s.Touch()
	s.IncrementVersion()
	return nil
}

// MarkSynced records the completion time of a bulk sync run
func (s *Store) MarkSynced(at time.Time) {
	s.LastSyncedAt = &at
	s.InitialSyncCompleted = true
	s.Touch()
	s.IncrementVersion()
}
