package repository

import "gorm.io/gorm"

// Page is a LIMIT/OFFSET window. A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

// NewPage converts a 1-based page number and page size into a window.
func NewPage(page, limit int) Page {
	if limit <= 0 {
		return Page{}
	}
	if page < 1 {
		page = 1
	}
	return Page{Limit: limit, Offset: (page - 1) * limit}
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
		if p.Offset > 0 {
			q = q.Offset(p.Offset)
		}
	}
	return q
}
