package reconcile

import (
	"os"

	"github.com/fulmenhq/fcman/pkg/collection"
	"github.com/fulmenhq/fcman/pkg/ignore"
)

// Options are shared by check, verify, and update walks.
type Options struct {
	// Recurse enables descending into directory nodes.
	Recurse bool

	// Tolerance is the allowed |recorded - live| mtime delta in
	// seconds, absorbing filesystem timestamp granularity and copy
	// jitter.
	Tolerance int64

	// BufferSize is the checksum streaming buffer in bytes.
	BufferSize int
}

// Checker performs a read-only drift walk. Deep additionally recomputes
// and compares content checksums. A non-nil State makes deep checks
// resumable: files verified on a previous run are skipped and newly
// verified files are recorded.
type Checker struct {
	Deep    bool
	Opts    Options
	Mon     *Monitor
	Rep     Reporter
	Matcher *ignore.Matcher
	State   *State
}

// Run checks one node, returning true when no drift was found. Plain
// filesystem failures (not drift) propagate as errors and abort the
// walk.
func (c *Checker) Run(node *collection.Node) (bool, error) {
	switch node.Kind {
	case collection.KindSymlink:
		return c.checkSymlink(node)
	case collection.KindFile:
		return c.checkFile(node)
	case collection.KindDirectory:
		return c.checkDirectory(node)
	default:
		return false, nil
	}
}

func (c *Checker) checkSymlink(node *collection.Node) (bool, error) {
	target, err := os.Readlink(node.Path())
	if err != nil {
		return false, err
	}
	if target != node.Target {
		c.Rep.Event(Event{Path: node.PrettyPath(), Code: SymlinkDrift})
		return false, nil
	}
	return true, nil
}

func (c *Checker) checkFile(node *collection.Node) (bool, error) {
	fi, err := os.Stat(node.Path())
	if err != nil {
		return false, err
	}

	ok := true
	if absDiff(node.Timestamp, fi.ModTime().Unix()) > c.Opts.Tolerance {
		ok = false
		c.Rep.Event(Event{Path: node.PrettyPath(), Code: Timestamp})
	}
	if node.Size != fi.Size() {
		ok = false
		c.Rep.Event(Event{Path: node.PrettyPath(), Code: Size})
	}

	if c.Deep {
		if c.State.Verified(node.PrettyPath()) {
			if c.Mon.Verbose() {
				c.Rep.Event(Event{Path: node.PrettyPath(), Code: Skipped})
			}
			return ok, nil
		}
		if c.Mon.Verbose() {
			c.Rep.Event(Event{Path: node.PrettyPath(), Code: Processing})
		}
		sum, err := ChecksumFile(node.Path(), c.Opts.BufferSize)
		if err != nil {
			return false, err
		}
		if sum != node.Checksum {
			ok = false
			c.Rep.Event(Event{Path: node.PrettyPath(), Code: Checksum})
		} else {
			c.State.MarkVerified(node.PrettyPath())
		}
	}

	return ok, nil
}

func (c *Checker) checkDirectory(dir *collection.Node) (bool, error) {
	if c.Mon.Verbose() {
		c.Rep.Event(Event{Path: dir.PrettyPath(), Code: Processing})
	}
	ok := true

	// Missing and should-ignore passes over recorded children. Missing
	// subtrees are reported without touching the filesystem.
	for _, name := range dir.ChildNames() {
		if c.Mon.Cancelled() {
			return ok, nil
		}
		child := dir.Children[name]

		if dir.Ignores(name) {
			c.Rep.Event(Event{Path: child.PrettyPath(), Code: ShouldIgnore})
		}
		if !child.Exists() {
			ok = false
			c.Rep.Event(Event{Path: child.PrettyPath(), Code: Missing})
			if child.Kind == collection.KindDirectory && c.Opts.Recurse {
				c.reportMissing(child)
			}
		}
	}

	// New live entries. A new directory is scanned shallowly through a
	// throwaway node so nested new content is reported without
	// inserting anything into the tree.
	entries, err := os.ReadDir(dir.Path())
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if c.Mon.Cancelled() {
			return ok, nil
		}
		name := entry.Name()
		if c.ignored(dir, name, entry.IsDir()) {
			continue
		}
		if _, tracked := dir.Children[name]; tracked {
			continue
		}

		ok = false
		c.Rep.Event(Event{Path: childPrettyPath(dir, name), Code: New})

		if c.Opts.Recurse && entry.Type().IsDir() {
			throwaway := collection.NewDirectory(dir, name)
			shallow := &Checker{Deep: false, Opts: c.Opts, Mon: c.Mon, Rep: c.Rep, Matcher: c.Matcher}
			if _, err := shallow.checkDirectory(throwaway); err != nil {
				delete(dir.Children, name)
				return false, err
			}
			delete(dir.Children, name)
		}
	}

	// Drift checks on children that still exist.
	for _, name := range dir.ChildNames() {
		if c.Mon.Cancelled() {
			return ok, nil
		}
		child := dir.Children[name]
		if !child.Exists() {
			continue
		}

		switch child.Kind {
		case collection.KindSymlink:
			childOK, err := c.checkSymlink(child)
			if err != nil {
				return false, err
			}
			ok = ok && childOK
		case collection.KindFile:
			childOK, err := c.checkFile(child)
			if err != nil {
				return false, err
			}
			ok = ok && childOK
		case collection.KindDirectory:
			if c.Opts.Recurse {
				childOK, err := c.checkDirectory(child)
				if err != nil {
					return false, err
				}
				ok = ok && childOK
			}
		}
	}

	return ok, nil
}

// reportMissing emits MISSING for every descendant of an already
// missing directory.
func (c *Checker) reportMissing(dir *collection.Node) {
	for _, name := range dir.ChildNames() {
		child := dir.Children[name]
		c.Rep.Event(Event{Path: child.PrettyPath(), Code: Missing})
		if child.Kind == collection.KindDirectory {
			c.reportMissing(child)
		}
	}
}

func (c *Checker) ignored(dir *collection.Node, name string, isDir bool) bool {
	if dir.Ignores(name) {
		return true
	}
	return c.Matcher.Match(append(dir.PathList(), name), isDir)
}

func childPrettyPath(dir *collection.Node, name string) string {
	if dir.IsRoot() {
		return "/" + name
	}
	return dir.PrettyPath() + "/" + name
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
