// Package backend is the fetch layer for the analytics backend.
//
// Client issues the load-volume, wallet-analysis and health requests and
// classifies failures as FetchError values. Latest implements last-request-wins
// bookkeeping so a slow response to an older query never replaces a newer result.
// Metrics records request counts and latencies on a private prometheus registry.
package backend
