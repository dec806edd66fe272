// Package tui provides a Bubble Tea-based terminal UI for installation runs.
package tui

// StepMsg reports that a pipeline step is starting.
type StepMsg struct {
	Current int
	Total   int
	Message string
}

// InfoMsg carries informational output from inside a step.
type InfoMsg struct{ Text string }

// WarnMsg carries a non-fatal problem.
type WarnMsg struct{ Text string }

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries a fatal error.
type ErrMsg struct{ Err error }

// DoneMsg signals that the installation finished.
type DoneMsg struct{}
