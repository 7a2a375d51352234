package pagination

import (
	"github.com/rshade/cypherdash/internal/resultset"
)

// PaginationMeta contains metadata about paginated results.
//
//nolint:revive // PaginationMeta is the canonical name for this exported type.
type PaginationMeta struct {
	CurrentPage int  `json:"current_page" yaml:"current_page"`
	PageSize    int  `json:"page_size"    yaml:"page_size"`
	TotalPages  int  `json:"total_pages"  yaml:"total_pages"`
	TotalItems  int  `json:"total_items"  yaml:"total_items"`
	HasPrevious bool `json:"has_previous" yaml:"has_previous"`
	HasNext     bool `json:"has_next"     yaml:"has_next"`
}

// NewPaginationMeta creates pagination metadata from a computed page.
func NewPaginationMeta[R any](page resultset.Page[R]) PaginationMeta {
	return PaginationMeta{
		CurrentPage: page.PageIndex,
		PageSize:    page.PageSize,
		TotalPages:  page.TotalPages,
		TotalItems:  page.FilteredCount,
		HasPrevious: page.HasPrevious(),
		HasNext:     page.HasNext(),
	}
}

// SinglePageMeta describes an unpaginated listing of totalItems rows.
func SinglePageMeta(totalItems int) PaginationMeta {
	return PaginationMeta{
		CurrentPage: 1,
		PageSize:    totalItems,
		TotalPages:  1,
		TotalItems:  totalItems,
	}
}
