// Package resultset derives a visible page from an immutable snapshot of records.
//
// A result set is transformed by three composable steps, always in the same order:
//   - Filter: case-insensitive substring match over the record's textual fields
//   - Sort: stable ordering by one schema field, numeric or locale-aware text
//   - Paginate: a 1-based page window of a fixed size
//
// Compute is the pure form of the pipeline. Engine wraps a snapshot and a ViewState
// and exposes the mutators a table view calls in response to user input. Engine is
// not safe for concurrent use; each view owns its own instance.
package resultset
