package persistence

import (
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// applyListOptions applies pagination and validated ordering from a filter.
// Sort fields go through the whitelist so user input never reaches the
// ORDER BY clause raw. defaultDir is used when the caller did not ask for a
// direction; roster-style listings sort ascending, history-style descending.
func applyListOptions(query *gorm.DB, filter shared.Filter, sortFields map[string]bool, defaultField, defaultDir string) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, sortFields, defaultField)
	orderDir := defaultDir
	if filter.OrderDir != "" {
		orderDir = ValidateSortOrder(filter.OrderDir)
	}
	return query.Order(orderBy + " " + orderDir)
}
