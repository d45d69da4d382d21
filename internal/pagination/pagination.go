// Package pagination slices ordered result sets into fixed-size pages.
// It is pure: no I/O, no mutation of the input, and the same inputs always
// produce the same page.
package pagination

// DefaultPageSize is the number of items per page when the caller does not
// specify one.
const DefaultPageSize = 10

// Page is one window into an ordered sequence of items.
type Page[T any] struct {
	Items      []T `json:"items"`
	Number     int `json:"number"`
	Size       int `json:"size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// Paginate returns the page with the given number from items.
//
// TotalPages is ceil(len(items)/size); an empty input still yields a single
// empty page. A number outside [1, TotalPages] is clamped to the nearest
// valid page rather than treated as an error, so callers can pass raw query
// parameters through. A non-positive size falls back to DefaultPageSize.
// The returned Items slice is a view into the input.
func Paginate[T any](items []T, number, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}

	total := len(items)
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}

	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	start := (number - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      items[start:end],
		Number:     number,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// HasPrev reports whether a page precedes this one.
func (p Page[T]) HasPrev() bool {
	return p.Number > 1
}

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool {
	return p.Number < p.TotalPages
}

// PrevNumber returns the previous page number, or 1 when on the first page.
func (p Page[T]) PrevNumber() int {
	if p.HasPrev() {
		return p.Number - 1
	}
	return 1
}

// NextNumber returns the next page number, or the last page number when on
// the final page.
func (p Page[T]) NextNumber() int {
	if p.HasNext() {
		return p.Number + 1
	}
	return p.TotalPages
}
