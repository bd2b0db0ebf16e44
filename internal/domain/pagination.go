package domain

// PaginationParams holds offset-based pagination parameters for list queries.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the item offset for the current page (0-based).
// Formula: (Page - 1) * PageSize.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Window returns the [start, end) bounds of the current page within a list of total items.
// A zero PageSize selects everything. Pages past the end yield an empty window.
func (p PaginationParams) Window(total int) (start, end int) {
	if p.PageSize <= 0 {
		return 0, total
	}
	if p.Page > 1 && p.Page-1 > total/p.PageSize {
		return total, total
	}
	start = min(p.Offset(), total)
	return start, start + min(p.PageSize, total-start)
}
