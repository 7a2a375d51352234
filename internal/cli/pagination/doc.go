// Package pagination binds result-set view state to CLI flags.
//
// This package contains the flag plumbing shared by list-producing commands:
//   - Params: --filter, --sort, --page, --page-size and --all parsing
//   - ParseSort: "field" or "field:order" sort expressions
//   - PaginationMeta: page metadata emitted alongside JSON and YAML output
//
// Filtering, ordering and clamping are done by resultset.Engine; this package
// only translates flags into engine calls.
package pagination
