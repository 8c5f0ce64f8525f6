package query

import "math"

const (
	DefaultPageSize    = 10
	MaxPageSize        = 100
	DefaultWindowLimit = 50

	maxPageNumber = math.MaxInt/MaxPageSize + 1
)

// Page is a clamped 1-based page request. Build it with NewPage so that no
// read can be asked for an unbounded result set.
type Page struct {
	Number int
	Size   int
}

// NewPage corrects out-of-range input instead of rejecting it: page numbers
// below 1 become 1, sizes below 1 fall back to DefaultPageSize and sizes above
// MaxPageSize are capped. Page numbers are capped so that Offset cannot
// overflow.
func NewPage(number, size int) Page {
	switch {
	case number < 1:
		number = 1
	case number > maxPageNumber:
		number = maxPageNumber
	}
	switch {
	case size < 1:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Pagination is the client-facing summary of a paginated read.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	HasPrev     bool  `json:"has_prev"`
	HasNext     bool  `json:"has_next"`
	PrevPage    *int  `json:"prev_page"`
	NextPage    *int  `json:"next_page"`
}

// Info derives pagination metadata for a total row count. An empty set still
// reports one page.
func (p Page) Info(total int64) Pagination {
	pages := 1
	if total > 0 {
		pages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}
	info := Pagination{
		CurrentPage: p.Number,
		PerPage:     p.Size,
		TotalPages:  pages,
		TotalItems:  total,
		HasPrev:     p.Number > 1,
		HasNext:     p.Number < pages,
	}
	if info.HasPrev {
		prev := p.Number - 1
		info.PrevPage = &prev
	}
	if info.HasNext {
		next := p.Number + 1
		info.NextPage = &next
	}
	return info
}

// Window is a raw limit/offset read kept for older clients.
type Window struct {
	Limit  int
	Offset int
}

// NewWindow applies the legacy defaults: a missing limit means
// DefaultWindowLimit, limits are capped at MaxPageSize, non-positive limits
// fall back to DefaultPageSize and negative offsets become 0.
func NewWindow(limit, offset *int) Window {
	w := Window{Limit: DefaultWindowLimit}
	if limit != nil {
		w.Limit = *limit
	}
	switch {
	case w.Limit > MaxPageSize:
		w.Limit = MaxPageSize
	case w.Limit < 1:
		w.Limit = DefaultPageSize
	}
	if offset != nil && *offset > 0 {
		w.Offset = *offset
	}
	return w
}
