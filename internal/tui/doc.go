// Package tui provides the interactive Bubble Tea dashboards.
//
// WalletModel and VolumeModel each own a result-set engine and a
// last-request-wins guard; fetches run as tea.Cmds and their results are
// applied only when they carry the newest ticket. Styling comes from a Theme
// value held by each model.
package tui
