package batch

// PageResponse is a page of a paginated collection. Page is zero-based.
type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// TotalPages returns the number of pages needed for totalElements items at the
// given page size.
func TotalPages(totalElements int64, size int) int {
	if size <= 0 || totalElements <= 0 {
		return 0
	}
	return int((totalElements + int64(size) - 1) / int64(size))
}

// LastPage returns the highest valid page index, -1 when the collection is empty.
func (p PageResponse[T]) LastPage() int {
	return p.TotalPages - 1
}

// HasNext reports whether a page follows the current one.
func (p PageResponse[T]) HasNext() bool {
	return p.Page < p.LastPage()
}

// HasPrevious reports whether a page precedes the current one.
func (p PageResponse[T]) HasPrevious() bool {
	return p.Page > 0
}

// ClampPage forces page into [0, totalPages-1]; it returns 0 for empty collections.
func ClampPage(page, totalPages int) int {
	if page >= totalPages {
		page = totalPages - 1
	}
	if page < 0 {
		page = 0
	}
	return page
}
