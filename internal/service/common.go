package service

import (
	"errors"
	"math"
	"strings"

	"mentorship-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Actor is the authenticated caller of a service operation
type Actor struct {
	ID   uint
	Role model.Role
}

// IsAdmin reports whether the actor has the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

// Page selects a window of a list
type Page struct {
	Page  int
	Limit int
}

// Normalize applies defaults and bounds
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Offset returns the number of rows to skip
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination describes a returned window
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPagination builds the pagination block for a normalized page
func NewPagination(p Page, total int64) Pagination {
	return Pagination{
		Page:  p.Page,
		Limit: p.Limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(p.Limit))),
	}
}

// PageResult is a page of items with its pagination block
type PageResult[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// paginate counts query and loads the requested window; preloads apply to the window only
func paginate[T any](query *gorm.DB, page Page, order string, preloads ...string) (PageResult[T], error) {
	page = page.Normalize()

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return PageResult[T]{}, err
	}

	items := make([]T, 0, page.Limit)
	for _, p := range preloads {
		query = query.Preload(p)
	}
	if err := query.Order(order).Offset(page.Offset()).Limit(page.Limit).Find(&items).Error; err != nil {
		return PageResult[T]{}, err
	}

	return PageResult[T]{Data: items, Pagination: NewPagination(page, total)}, nil
}

// jsonListContains matches rows whose JSON string array column contains value, case-insensitively.
// It compares against the serialized column so it works on postgres jsonb and sqlite alike.
func jsonListContains(column, value string) (string, string) {
	pattern := `%"` + escapeLike(strings.ToLower(value)) + `"%`
	return "LOWER(CAST(" + column + " AS TEXT)) LIKE ? ESCAPE '\\'", pattern
}

// containsPattern returns a LIKE pattern matching value anywhere
func containsPattern(value string) string {
	return "%" + escapeLike(strings.ToLower(value)) + "%"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// forUpdate adds a row lock to query (ignored by sqlite)
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// isDuplicate reports whether err is a unique constraint violation
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// cleanList trims entries, drops empties and duplicates
func cleanList(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
