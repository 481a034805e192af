package access

import "github.com/anachak/anachak/internal/common/cnst"

// Page is a 1-based page request. The same cap applies to every role.
type Page struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"pageSize" json:"pageSize"`
}

// Normalize fills defaults and clamps the page size
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = cnst.DefaultPageSize
	}
	if p.PageSize > cnst.MaxPageSize {
		p.PageSize = cnst.MaxPageSize
	}
	return p
}

// Offset returns the number of rows to skip
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.PageSize
}

// Paginate slices an already filtered collection and returns the total before slicing
func Paginate[T any](rows []T, page Page) ([]T, int) {
	page = page.Normalize()
	total := len(rows)
	start := page.Offset()
	if start >= total {
		return []T{}, total
	}
	end := start + page.PageSize
	if end > total {
		end = total
	}
	return rows[start:end], total
}
