package persistence

import (
	"strings"

	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/shared"
)

// applyFilter applies pagination and ordering from a shared.Filter.
// OrderBy is matched against an allow-list to keep user input out of SQL.
func applyFilter(query *gorm.DB, filter shared.Filter, allowedOrderColumns ...string) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := "created_at"
	for _, col := range allowedOrderColumns {
		if filter.OrderBy == col {
			orderBy = col
			break
		}
	}
	orderDir := "DESC"
	if strings.ToLower(filter.OrderDir) == "asc" {
		orderDir = "ASC"
	}
	return query.Order(orderBy + " " + orderDir)
}
