package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/store"
)

// GormStoreRepository implements store.Repository using GORM
type GormStoreRepository struct {
	db *gorm.DB
}

// NewGormStoreRepository creates a new GormStoreRepository
func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// FindByID finds a store by its ID
func (r *GormStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	var s store.Store
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByShopDomain finds a store by its shop domain
func (r *GormStoreRepository) FindByShopDomain(ctx context.Context, shopDomain string) (*store.Store, error) {
	var s store.Store
	if err := r.db.WithContext(ctx).
		Where("shop_domain = ?", shopDomain).
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindActiveByTenant finds the single active store for a tenant
func (r *GormStoreRepository) FindActiveByTenant(ctx context.Context, tenantID uuid.UUID) (*store.Store, error) {
	var s store.Store
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByTenant finds all stores for a tenant
func (r *GormStoreRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]store.Store, error) {
	var stores []store.Store
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// Save creates or updates a store
func (r *GormStoreRepository) Save(ctx context.Context, s *store.Store) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// SaveWithLock saves a store with optimistic locking (version check)
func (r *GormStoreRepository) SaveWithLock(ctx context.Context, s *store.Store) error {
	result := r.db.WithContext(ctx).
		Model(s).
		Where("id = ? AND version = ?", s.ID, s.Version-1).
		Updates(s)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete hard-deletes a store row
func (r *GormStoreRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&store.Store{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormStoreRepository implements store.Repository
var _ store.Repository = (*GormStoreRepository)(nil)
