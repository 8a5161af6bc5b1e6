package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/ingest"
)

// StorePurger executes batched deletes for the offboarding purge. It operates
// only on tables from the fixed purge list; any other table is rejected so the
// purge can never drift from the reviewed contract.
type StorePurger struct {
	db *gorm.DB
}

// NewStorePurger creates a new StorePurger
func NewStorePurger(db *gorm.DB) *StorePurger {
	return &StorePurger{db: db}
}

func validPurgeTable(table ingest.PurgeTable) bool {
	for _, t := range ingest.PurgeTables() {
		if t == table {
			return true
		}
	}
	return false
}

// DeletePage deletes up to limit rows of the table for a store
func (p *StorePurger) DeletePage(ctx context.Context, table ingest.PurgeTable, storeID uuid.UUID, limit int) (int64, error) {
	if !validPurgeTable(table) {
		return 0, ingest.ErrUnknownPurgeTable
	}
	return deletePageForStore(ctx, p.db, string(table), storeID, limit)
}

// Count counts remaining rows of the table for a store
func (p *StorePurger) Count(ctx context.Context, table ingest.PurgeTable, storeID uuid.UUID) (int64, error) {
	if !validPurgeTable(table) {
		return 0, ingest.ErrUnknownPurgeTable
	}
	return countForStore(ctx, p.db, string(table), storeID)
}
