package resultset

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidPageSize is returned by SetPageSize for a non-positive size.
var ErrInvalidPageSize = errors.New("page size must be greater than 0")

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	pageSize int
	sortKey  string
	sortDir  Direction
}

// WithPageSize sets the initial page size. Non-positive values are ignored.
func WithPageSize(size int) Option {
	return func(o *engineOptions) {
		if size > 0 {
			o.pageSize = size
		}
	}
}

// WithDefaultSort sets the sort restored on every Load.
func WithDefaultSort(key string, dir Direction) Option {
	return func(o *engineOptions) {
		o.sortKey = key
		o.sortDir = dir
	}
}

// Engine owns a snapshot and the ViewState applied to it.
type Engine[R any] struct {
	schema   *Schema[R]
	snapshot []R
	state    ViewState

	// Restored on Load.
	defaultSortKey string
	defaultSortDir Direction
}

// NewEngine creates an engine with an empty snapshot.
func NewEngine[R any](schema *Schema[R], opts ...Option) *Engine[R] {
	o := engineOptions{pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine[R]{
		schema:         schema,
		defaultSortKey: o.sortKey,
		defaultSortDir: o.sortDir,
	}
	e.state = ViewState{
		SortKey:       o.sortKey,
		SortDirection: o.sortDir,
		PageIndex:     1,
		PageSize:      o.pageSize,
	}
	return e
}

// Schema returns the record schema.
func (e *Engine[R]) Schema() *Schema[R] {
	return e.schema
}

// Load replaces the snapshot with a copy of records and resets filter, sort and page
// to their defaults. Page size is kept.
func (e *Engine[R]) Load(records []R) {
	e.snapshot = slices.Clone(records)
	e.state = ViewState{
		SortKey:       e.defaultSortKey,
		SortDirection: e.defaultSortDir,
		PageIndex:     1,
		PageSize:      e.state.PageSize,
	}
}

// Len returns the number of records in the snapshot.
func (e *Engine[R]) Len() int {
	return len(e.snapshot)
}

// State returns the current ViewState.
func (e *Engine[R]) State() ViewState {
	return e.state
}

// SetFilterText sets the filter and returns to the first page.
func (e *Engine[R]) SetFilterText(text string) {
	e.state.FilterText = text
	e.state.PageIndex = 1
}

// SetSort flips the direction when key is already the sort key; otherwise it sorts
// ascending by key. The page index is left alone.
func (e *Engine[R]) SetSort(key string) {
	if key == e.state.SortKey {
		e.state.SortDirection = e.state.SortDirection.Toggle()
		return
	}
	e.state.SortKey = key
	e.state.SortDirection = Ascending
}

// SetSortDirection sets key and direction explicitly, as a CLI flag does.
func (e *Engine[R]) SetSortDirection(key string, dir Direction) {
	e.state.SortKey = key
	e.state.SortDirection = dir
}

// SetPageIndex moves to page n, clamped into [1, TotalPages].
func (e *Engine[R]) SetPageIndex(n int) {
	e.state.PageIndex = ClampPage(n, e.filteredCount(), e.state.PageSize)
}

// NextPage moves forward one page if there is one.
func (e *Engine[R]) NextPage() {
	e.SetPageIndex(e.state.PageIndex + 1)
}

// PrevPage moves back one page if there is one.
func (e *Engine[R]) PrevPage() {
	e.SetPageIndex(e.state.PageIndex - 1)
}

// SetPageSize changes the page size and returns to the first page.
// A non-positive size is rejected and the state is left unchanged.
func (e *Engine[R]) SetPageSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, size)
	}
	e.state.PageSize = size
	e.state.PageIndex = 1
	return nil
}

// VisiblePage computes the current page.
func (e *Engine[R]) VisiblePage() Page[R] {
	return Compute(e.snapshot, e.schema, e.state)
}

// Filtered returns the whole filtered and sorted sequence, ignoring pagination.
func (e *Engine[R]) Filtered() []R {
	return Sort(Filter(e.snapshot, e.schema, e.state.FilterText), e.schema, e.state.SortKey, e.state.SortDirection)
}

func (e *Engine[R]) filteredCount() int {
	if e.state.FilterText == "" {
		return len(e.snapshot)
	}
	return len(Filter(e.snapshot, e.schema, e.state.FilterText))
}
