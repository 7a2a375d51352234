package resultset

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Compute runs filter, sort and paginate over snapshot and returns the visible page.
// The snapshot is never modified. A non-positive PageSize falls back to DefaultPageSize,
// and PageIndex is clamped into the valid range.
func Compute[R any](snapshot []R, schema *Schema[R], state ViewState) Page[R] {
	ordered := Sort(Filter(snapshot, schema, state.FilterText), schema, state.SortKey, state.SortDirection)
	return Paginate(ordered, state.PageIndex, state.PageSize)
}

// Filter returns the records whose textual fields contain text, case-insensitively.
// Each textual field is checked on its own. Empty text keeps every record.
// The result is always a new slice.
func Filter[R any](records []R, schema *Schema[R], text string) []R {
	if text == "" {
		return slices.Clone(records)
	}

	needle := strings.ToLower(text)
	fields := schema.textFields()
	out := make([]R, 0, len(records))
	for _, r := range records {
		if matches(r, fields, needle) {
			out = append(out, r)
		}
	}
	return out
}

func matches[R any](r R, fields []Field[R], needle string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f.Get(r).String()), needle) {
			return true
		}
	}
	return false
}

// Sort returns a stably sorted copy of records ordered by the named field.
// An empty key returns the records in their input order. A key not declared in the
// schema behaves like a field whose values are all missing, so order is preserved.
func Sort[R any](records []R, schema *Schema[R], key string, dir Direction) []R {
	sorted := slices.Clone(records)
	if key == "" {
		return sorted
	}
	field, ok := schema.Field(key)
	if !ok {
		return sorted
	}

	cmp := newComparator()
	slices.SortStableFunc(sorted, func(a, b R) int {
		va, vb := field.Get(a), field.Get(b)
		if dir == Descending {
			va, vb = vb, va
		}
		return cmp.compare(va, vb)
	})
	return sorted
}

// Paginate returns the page window [(page-1)*size, page*size) of records.
func Paginate[R any](records []R, page, size int) Page[R] {
	if size <= 0 {
		size = DefaultPageSize
	}
	page = ClampPage(page, len(records), size)

	start := (page - 1) * size
	end := min(start+size, len(records))
	start = min(start, end)

	return Page[R]{
		Items:         slices.Clone(records[start:end]),
		PageIndex:     page,
		TotalPages:    TotalPages(len(records), size),
		FilteredCount: len(records),
		PageSize:      size,
	}
}

// comparator orders Values: numeric pairs by magnitude, anything else by the
// lowercased string form under English collation.
type comparator struct {
	collator *collate.Collator
}

// newComparator builds a comparator. Collators keep internal buffers, so each sort gets its own.
func newComparator() *comparator {
	return &comparator{collator: collate.New(language.English)}
}

func (c *comparator) compare(a, b Value) int {
	if a.Present && b.Present && a.Kind == KindNumeric && b.Kind == KindNumeric {
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		default:
			return 0
		}
	}
	return c.collator.CompareString(strings.ToLower(a.String()), strings.ToLower(b.String()))
}
