package shared

const defaultPageSize = 20

// Filter carries list parameters from the admin surface to repositories.
// Repositories whitelist OrderBy before building SQL.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	// Search is matched against the record's human readable key
	Search string
}

// DefaultFilter is the first page, newest records first
func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: defaultPageSize, OrderBy: "id", OrderDir: "desc"}
}

func (f Filter) Limit() int {
	if f.PageSize <= 0 {
		return defaultPageSize
	}
	return f.PageSize
}

func (f Filter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Paginated is one page of a list together with the unpaged count
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	pages := (int(total) + pageSize - 1) / pageSize
	return Paginated[T]{Items: items, Total: total, Page: page, PageSize: pageSize, TotalPages: pages}
}
