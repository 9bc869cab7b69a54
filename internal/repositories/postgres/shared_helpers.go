package postgres

import (
	"strings"

	"gorm.io/gorm"
)

// SharedHelpers contains common database query plumbing used by the
// concrete repositories.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// getDB prefers the passed transaction handle over the base connection so
// repository methods can participate in a caller-managed transaction.
func (h *SharedHelpers) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return h.db
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection
// protection via a column whitelist.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	allowedSortColumns := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"score":      true,
		"accuracy":   true,
		"time_taken": true,
		"rank":       true,
	}

	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}
	if strings.ToLower(sortOrder) != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		if limit > 100 {
			limit = 100
		}
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
