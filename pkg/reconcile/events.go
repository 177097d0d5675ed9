// Package reconcile diffs and synchronizes the in-memory collection
// tree against the live filesystem: shallow checks, deep verification,
// and mutating updates share one traversal.
package reconcile

// Code identifies a status event produced during a tree walk.
type Code string

const (
	// Findings from check/verify.
	Missing      Code = "MISSING"
	New          Code = "NEW"
	SymlinkDrift Code = "SYMLINK"
	Timestamp    Code = "TIMESTAMP"
	Size         Code = "SIZE"
	Checksum     Code = "CHECKSUM"
	ShouldIgnore Code = "SHOULDIGNORE"

	// Mutations from update.
	Deleted Code = "DELETED"
	Ignored Code = "IGNORED"
	Added   Code = "ADDED"

	// Verbose progress.
	Processing Code = "PROCESSING"
	Skipped    Code = "SKIPPED"
)

// Event is one status line emitted during a walk.
type Event struct {
	Path   string
	Code   Code
	Detail string
}

// Reporter consumes status events. Findings are normal output, not
// errors: the aggregate boolean result carries the pass/fail signal.
type Reporter interface {
	Event(e Event)
}
