package resultset

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 10

// Direction is the sort direction.
type Direction int

const (
	// Ascending sorts smallest first.
	Ascending Direction = iota
	// Descending sorts largest first.
	Descending
)

// Sort direction names accepted by ParseDirection.
const (
	DirectionAsc  = "asc"
	DirectionDesc = "desc"
)

// ErrInvalidDirection is returned by ParseDirection for anything but asc/desc.
var ErrInvalidDirection = errors.New("sort direction must be 'asc' or 'desc'")

// String returns "asc" or "desc".
func (d Direction) String() string {
	if d == Descending {
		return DirectionDesc
	}
	return DirectionAsc
}

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// ParseDirection parses "asc" or "desc" (case-insensitive, surrounding space ignored).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case DirectionAsc:
		return Ascending, nil
	case DirectionDesc:
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("%w: got %q", ErrInvalidDirection, s)
	}
}

// ViewState is the filter, sort and page configuration applied to a snapshot.
type ViewState struct {
	// FilterText is matched as a case-insensitive substring; empty disables filtering.
	FilterText string

	// SortKey names the schema field to sort by; empty preserves input order.
	SortKey string

	// SortDirection applies when SortKey is set.
	SortDirection Direction

	// PageIndex is the 1-based page number.
	PageIndex int

	// PageSize is the number of records per page.
	PageSize int
}

// Page is the visible slice of a result set plus its pagination metadata.
type Page[R any] struct {
	Items         []R
	PageIndex     int
	TotalPages    int
	FilteredCount int
	PageSize      int
}

// HasPrevious reports whether a page exists before this one.
func (p Page[R]) HasPrevious() bool {
	return p.PageIndex > 1
}

// HasNext reports whether a page exists after this one.
func (p Page[R]) HasNext() bool {
	return p.PageIndex < p.TotalPages
}

// Offset returns the 0-based position of the first item of the page within the filtered sequence.
func (p Page[R]) Offset() int {
	return (p.PageIndex - 1) * p.PageSize
}

// TotalPages returns max(1, ceil(count/pageSize)). An empty result still has one (empty) page.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 1
	}
	pages := count / pageSize
	if count%pageSize > 0 {
		pages++
	}
	return pages
}

// ClampPage clamps a requested 1-based page index into [1, TotalPages(count, pageSize)].
func ClampPage(page, count, pageSize int) int {
	last := TotalPages(count, pageSize)
	switch {
	case page < 1:
		return 1
	case page > last:
		return last
	default:
		return page
	}
}
