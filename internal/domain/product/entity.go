package product

import (
	"math"
	"time"
)

// Product is a catalog entry owned by exactly one user.
type Product struct {
	ID          int64
	OwnerUserID int64
	Title       string
	Description string
	Price       float64
	ImagePath   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Filter selects one page of an owner's products. Column names are
// expected to be already whitelisted.
type Filter struct {
	OwnerUserID   int64
	Keyword       string
	SearchColumns []string
	SortBy        string
	SortOrder     SortOrder
	Page          int
	PageSize      int
}

// Offset is the number of rows preceding the page, saturating at math.MaxInt.
func (f *Filter) Offset() int {
	if f.Page <= 1 || f.PageSize <= 0 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PageSize {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PageSize
}

// Page is one slice of a listing together with the unpaged total.
type Page struct {
	Items []*Product
	Total int64
}

// CountFilter narrows a count to an owner and an optional inclusive creation window.
type CountFilter struct {
	OwnerUserID  int64
	CreatedFrom  *time.Time
	CreatedUntil *time.Time
}
