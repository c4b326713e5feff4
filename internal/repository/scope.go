package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// notDeleted is the only place the soft-delete flag is filtered on.
func notDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50
)

type Pagination struct {
	Page  int
	Limit int
}

// Normalize applies the default page and limit and caps the limit.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

func paginate(p Pagination) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Limit)
	}
}

type Sort struct {
	By   string
	Desc bool
}

// orderBy resolves s.By against a whitelist of columns, falling back to def.
func orderBy(s Sort, columns map[string]string, def string) string {
	col, ok := columns[s.By]
	if !ok {
		col = def
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s", col, dir)
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
