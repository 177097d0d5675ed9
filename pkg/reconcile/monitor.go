package reconcile

import "sync/atomic"

// Monitor is the verbosity-and-cancellation token passed into a walk.
// The engine polls it at each step; signal handlers in the command
// layer set its flags instead of mutating engine state directly.
type Monitor struct {
	verbose   bool
	escalated atomic.Bool
	cancelled atomic.Bool
}

// NewMonitor creates a monitor with a baseline verbosity.
func NewMonitor(verbose bool) *Monitor {
	return &Monitor{verbose: verbose}
}

// Verbose reports whether the next status line should be verbose. A
// signal-requested escalation applies to one poll only.
func (m *Monitor) Verbose() bool {
	if m == nil {
		return false
	}
	if m.escalated.Swap(false) {
		return true
	}
	return m.verbose
}

// EscalateOnce requests a one-shot verbose line, typically from a
// SIGUSR1 handler.
func (m *Monitor) EscalateOnce() {
	if m != nil {
		m.escalated.Store(true)
	}
}

// Cancel requests a graceful abort of the walk in progress.
func (m *Monitor) Cancel() {
	if m != nil {
		m.cancelled.Store(true)
	}
}

// Cancelled reports whether an abort was requested.
func (m *Monitor) Cancelled() bool {
	return m != nil && m.cancelled.Load()
}
