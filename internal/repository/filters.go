package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Filters accumulates optional list predicates as an ordered list of
// (expression, bound values) pairs. Every list endpoint builds one Filters
// value and applies it to both the page query and the count query, so the two
// can never disagree on which rows match.
type Filters struct {
	conds []condition
}

type condition struct {
	expr string
	args []interface{}
}

// Equals adds an exact-match predicate.
func (f *Filters) Equals(column string, value interface{}) *Filters {
	f.conds = append(f.conds, condition{expr: column + " = ?", args: []interface{}{value}})
	return f
}

// Search adds a case-insensitive substring match over one or more columns.
func (f *Filters) Search(term string, columns ...string) *Filters {
	pattern := "%" + term + "%"
	exprs := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		exprs[i] = col + " ILIKE ?"
		args[i] = pattern
	}
	f.conds = append(f.conds, condition{expr: "(" + strings.Join(exprs, " OR ") + ")", args: args})
	return f
}

// Nullness adds an IS NOT NULL predicate when set is true, IS NULL otherwise.
// Used for the acknowledged/resolved boolean filters on alerts.
func (f *Filters) Nullness(column string, set bool) *Filters {
	if set {
		f.conds = append(f.conds, condition{expr: column + " IS NOT NULL"})
	} else {
		f.conds = append(f.conds, condition{expr: column + " IS NULL"})
	}
	return f
}

// From adds an inclusive lower time bound.
func (f *Filters) From(column string, t time.Time) *Filters {
	f.conds = append(f.conds, condition{expr: column + " >= ?", args: []interface{}{t}})
	return f
}

// Until adds an inclusive upper time bound.
func (f *Filters) Until(column string, t time.Time) *Filters {
	f.conds = append(f.conds, condition{expr: column + " <= ?", args: []interface{}{t}})
	return f
}

// Apply chains every accumulated predicate onto the query, ANDed in insertion
// order.
func (f *Filters) Apply(db *gorm.DB) *gorm.DB {
	for _, c := range f.conds {
		db = db.Where(c.expr, c.args...)
	}
	return db
}

// Len reports the number of accumulated predicates.
func (f *Filters) Len() int {
	return len(f.conds)
}

// Pagination carries normalized page/limit values.
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination clamps page and limit into valid ranges. A zero or negative
// limit falls back to defaultLimit; limits above maxLimit are capped to keep
// scans bounded.
func NewPagination(page, limit, defaultLimit, maxLimit int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Pagination{Page: page, Limit: limit}
}

// Offset computes the row offset for the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Apply chains LIMIT/OFFSET onto the query.
func (p Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(p.Limit).Offset(p.Offset())
}
