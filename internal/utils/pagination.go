package utils

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizePage clamps page to >= 1 and pageSize to [1, MaxPageSize], using
// DefaultPageSize when pageSize is unset.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// PageBounds returns the [start, end) slice bounds of a page over total items.
func PageBounds(total, page, pageSize int) (int, int) {
	page, pageSize = NormalizePage(page, pageSize)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}

// Paginate returns one page of items.
func Paginate[T any](items []T, page, pageSize int) []T {
	start, end := PageBounds(len(items), page, pageSize)
	return items[start:end]
}
