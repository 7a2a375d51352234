// Package analytics defines the records served by the analytics backend: wallet
// counterparties and USD load volume, together with their result-set schemas and
// the address and formatting helpers shared by the CLI and TUI.
package analytics
