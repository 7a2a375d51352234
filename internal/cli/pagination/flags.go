package pagination

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/cypherdash/internal/resultset"
)

// Flag names.
const (
	FlagFilter   = "filter"
	FlagSort     = "sort"
	FlagPage     = "page"
	FlagPageSize = "page-size"
	FlagAll      = "all"
)

// Defaults.
const (
	DefaultPage = 1
)

// Common validation errors.
var (
	ErrInvalidPageSize = errors.New("page-size must be greater than 0")
	ErrAllWithPage     = errors.New("--all cannot be combined with --page")
)

// Params holds the view-state flags of a list command.
type Params struct {
	// Filter is a case-insensitive substring matched against text fields.
	Filter string

	// Sort is a "field" or "field:order" expression; empty keeps the default order.
	Sort string

	// Page is the 1-based page number. Out-of-range values are clamped.
	Page int

	// PageSize is the number of rows per page.
	PageSize int

	// All prints every filtered row instead of one page.
	All bool
}

// NewParams creates Params with the given default page size.
func NewParams(defaultPageSize int) *Params {
	return &Params{
		Page:     DefaultPage,
		PageSize: defaultPageSize,
	}
}

// Bind registers the pagination flags on cmd. sortFields is listed in the
// --sort help text.
func (p *Params) Bind(cmd *cobra.Command, sortFields []string) {
	cmd.Flags().StringVar(&p.Filter, FlagFilter, p.Filter,
		"Case-insensitive substring filter applied to text columns")
	cmd.Flags().StringVar(&p.Sort, FlagSort, p.Sort,
		fmt.Sprintf("Sort expression field[:asc|desc] (fields: %v)", sortFields))
	cmd.Flags().IntVar(&p.Page, FlagPage, p.Page, "Page number (1-based, clamped to the last page)")
	cmd.Flags().IntVar(&p.PageSize, FlagPageSize, p.PageSize, "Rows per page")
	cmd.Flags().BoolVar(&p.All, FlagAll, p.All, "Print every matching row instead of a single page")
}

// Validate checks flag combinations that the engine cannot reject itself.
func (p Params) Validate() error {
	if p.PageSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, p.PageSize)
	}
	if p.All && p.Page != DefaultPage {
		return ErrAllWithPage
	}
	return nil
}

// Apply drives engine with the flag values: filter, then sort, then page size,
// then page index. Sort fields are checked against the engine's schema.
func Apply[R any](engine *resultset.Engine[R], p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}

	engine.SetFilterText(p.Filter)

	if p.Sort != "" {
		if err := ApplySort(engine, p.Sort); err != nil {
			return err
		}
	}

	if err := engine.SetPageSize(p.PageSize); err != nil {
		return err
	}
	engine.SetPageIndex(p.Page)
	return nil
}

// ApplySort sets the engine's sort from a "field" or "field:order" expression.
// The direction is always explicit, so a field-only expression sorts ascending
// even when field is already the active key.
func ApplySort[R any](engine *resultset.Engine[R], expr string) error {
	field, order, err := ParseSort(expr)
	if err != nil {
		return err
	}
	schema := engine.Schema()
	if !schema.HasField(field) {
		return ValidateSortField(field, schema.SortedFieldNames())
	}
	dir, err := resultset.ParseDirection(order)
	if err != nil {
		return err
	}
	engine.SetSortDirection(field, dir)
	return nil
}
