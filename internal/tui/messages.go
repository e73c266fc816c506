// Package tui provides the Bubble Tea terminal dashboard.
package tui

// StateChanged is sent when a watched resource changed.
type StateChanged struct{}
