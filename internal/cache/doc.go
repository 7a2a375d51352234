// Package cache provides a file-based TTL cache for backend responses.
//
// Wallet analyses walk the whole transaction history of an address and can
// take well over a minute, and every CLI invocation (next page, another sort
// order) would otherwise repeat the request. Entries are JSON files under
// $CYPHERDASH_HOME/cache, keyed by a SHA256 of the backend URL, the operation
// and its parameters. Failed requests are never cached.
package cache
