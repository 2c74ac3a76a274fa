package postgres

import (
	"fmt"

	"github.com/shikhoron/qna-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SharedHelpers contains common query building operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyUserFilters applies common filters to user queries
func (h *SharedHelpers) ApplyUserFilters(query *gorm.DB, filters repositories.UserFilters) *gorm.DB {
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", like, like)
	}
	if len(filters.Roles) > 0 {
		query = query.Where("role IN ?", filters.Roles)
	}
	return query
}

// ApplyQuestionFilters applies common filters to question queries
func (h *SharedHelpers) ApplyQuestionFilters(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	if filters.Class != nil {
		query = query.Where("class = ?", *filters.Class)
	}
	if filters.Subject != nil {
		// Subject is a jsonb tag list; match questions carrying the tag.
		query = query.Where(datatypes.JSONArrayQuery("subject").Contains(*filters.Subject))
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	return query
}

// ApplyCatalogFilters applies common filters to resource and book queries
func (h *SharedHelpers) ApplyCatalogFilters(query *gorm.DB, filters repositories.CatalogFilters) *gorm.DB {
	if filters.Class != nil {
		query = query.Where("class = ?", *filters.Class)
	}
	if filters.Section != nil {
		query = query.Where("section = ?", *filters.Section)
	}
	if filters.Group != nil {
		query = query.Where(`"group" = ?`, *filters.Group)
	}
	return query
}

// ApplyPagination applies limit/offset with newest-first ordering
func (h *SharedHelpers) ApplyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	query = query.Order("created_at DESC")

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

// BuildListCacheKey builds a deterministic cache key for list queries
func BuildListCacheKey(prefix string, parts ...interface{}) string {
	key := "list:" + prefix
	for _, part := range parts {
		key += fmt.Sprintf(":%v", part)
	}
	return key
}
