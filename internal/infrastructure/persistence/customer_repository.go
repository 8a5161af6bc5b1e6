package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/partner"
	"github.com/storesync/backend/internal/domain/shared"
)

// GormCustomerRepository implements partner.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByPlatformIDs performs batched point lookups by platform ID
func (r *GormCustomerRepository) FindByPlatformIDs(ctx context.Context, storeID uuid.UUID, platformIDs []string) ([]partner.Customer, error) {
	if len(platformIDs) == 0 {
		return []partner.Customer{}, nil
	}
	var customers []partner.Customer
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND platform_id IN ?", storeID, platformIDs).
		Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// FindByPlatformID finds a single customer by platform ID
func (r *GormCustomerRepository) FindByPlatformID(ctx context.Context, storeID uuid.UUID, platformID string) (*partner.Customer, error) {
	var c partner.Customer
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND platform_id = ?", storeID, platformID).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, c *partner.Customer) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Insert creates a customer, surfacing shared.ErrAlreadyExists on a concurrent duplicate
func (r *GormCustomerRepository) Insert(ctx context.Context, c *partner.Customer) error {
	return translateInsertError(r.db.WithContext(ctx).Create(c).Error)
}

// DeleteByPlatformID removes a customer mirror row. Orders keep their weak
// back-reference untouched.
func (r *GormCustomerRepository) DeleteByPlatformID(ctx context.Context, storeID uuid.UUID, platformID string) error {
	result := r.db.WithContext(ctx).
		Delete(&partner.Customer{}, "store_id = ? AND platform_id = ?", storeID, platformID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeletePageForStore deletes up to limit rows for a store
func (r *GormCustomerRepository) DeletePageForStore(ctx context.Context, storeID uuid.UUID, limit int) (int64, error) {
	return deletePageForStore(ctx, r.db, partner.Customer{}.TableName(), storeID, limit)
}

// CountForStore counts remaining rows for a store
func (r *GormCustomerRepository) CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	return countForStore(ctx, r.db, partner.Customer{}.TableName(), storeID)
}

// Ensure GormCustomerRepository implements partner.CustomerRepository
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
