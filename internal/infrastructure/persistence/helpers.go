package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/shared"
)

// translateInsertError maps driver duplicate-key failures onto the domain
// sentinel so callers can fall back to the update path after an insert race.
func translateInsertError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// deletePageForStore removes up to limit rows of one table for a store.
// Plain DELETE has no LIMIT in Postgres, hence the id subquery. Table names
// come from entity TableName constants, never from user input.
func deletePageForStore(ctx context.Context, db *gorm.DB, table string, storeID uuid.UUID, limit int) (int64, error) {
	stmt := fmt.Sprintf(
		"DELETE FROM %s WHERE id IN (SELECT id FROM %s WHERE store_id = ? LIMIT ?)",
		table, table,
	)
	result := db.WithContext(ctx).Exec(stmt, storeID, limit)
	return result.RowsAffected, result.Error
}

// countForStore counts remaining rows of one table for a store
func countForStore(ctx context.Context, db *gorm.DB, table string, storeID uuid.UUID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Table(table).Where("store_id = ?", storeID).Count(&count).Error
	return count, err
}
