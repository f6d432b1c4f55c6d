package persistence

import (
	"fmt"

	"github.com/retailpos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applyFilter applies ordering and pagination to a query. A negative
// PageSize disables pagination (used by exports); zero values fall back
// to the defaults.
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	unlimited := filter.PageSize < 0
	filter.Normalize()

	dir := "DESC"
	if filter.OrderDir == "asc" {
		dir = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", filter.OrderBy, dir))

	if unlimited {
		return query
	}
	offset := (filter.Page - 1) * filter.PageSize
	return query.Offset(offset).Limit(filter.PageSize)
}
