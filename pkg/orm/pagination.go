// Package orm holds gorm scopes shared by the repositories.
package orm

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination is the metadata returned next to a page of results.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	Pages    int   `json:"pages"`
}

// NewPagination clamps page to >= 1 and pageSize to 1..MaxPageSize
// (non-positive sizes become DefaultPageSize).
func NewPagination(page, pageSize int) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// ParsePagination reads page and page_size query values; junk falls back to defaults.
func ParsePagination(page, pageSize string) Pagination {
	p, _ := strconv.Atoi(page)
	ps, _ := strconv.Atoi(pageSize)
	return NewPagination(p, ps)
}

// WithTotal returns a copy carrying total and the derived page count.
func (p Pagination) WithTotal(total int64) Pagination {
	p.Total = total
	p.Pages = int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	return p
}

func (p Pagination) Offset() int { return (p.Page - 1) * p.PageSize }

// Paginate is a gorm scope applying LIMIT/OFFSET for p.
func Paginate(p Pagination) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.PageSize)
	}
}

// CreatedBetween restricts created_at to [from, to). Zero bounds are open.
func CreatedBetween(column string, from, to time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !from.IsZero() {
			db = db.Where(column+" >= ?", from)
		}
		if !to.IsZero() {
			db = db.Where(column+" < ?", to)
		}
		return db
	}
}
