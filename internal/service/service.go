package service

import (
	"errors"

	"decantifume-api/internal/apperr"
	"decantifume-api/internal/dto"
	"decantifume-api/internal/model"
	"decantifume-api/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Caller identifies the authenticated user on whose behalf a call runs.
type Caller struct {
	UserID string
	Role   model.Role
}

func (c Caller) IsAdmin() bool {
	return c.Role == model.RoleAdmin
}

// CanAccess reports whether the caller may act on resources owned by ownerID.
func (c Caller) CanAccess(ownerID string) bool {
	return c.IsAdmin() || c.UserID == ownerID
}

func parseID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.ErrInvalidID
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func pagination(q dto.PageQuery) repository.Pagination {
	return repository.Pagination{Page: q.Page, Limit: q.Limit}.Normalize()
}

// sortFor defaults to descending order, matching the list endpoints.
func sortFor(by, order string) repository.Sort {
	return repository.Sort{By: by, Desc: order != "asc"}
}

func newPage[T any](items []T, p repository.Pagination, total int64) *dto.Page[T] {
	if items == nil {
		items = []T{}
	}
	return &dto.Page[T]{
		Items:      items,
		Pagination: dto.NewPagination(p.Page, p.Limit, total),
	}
}

func optional[T ~string](s string) *T {
	if s == "" {
		return nil
	}
	v := T(s)
	return &v
}
