package reconcile

import (
	"os"

	"github.com/fulmenhq/fcman/pkg/collection"
	"github.com/fulmenhq/fcman/pkg/ignore"
)

// Updater synchronizes the tree to match the live filesystem: missing
// and ignored children are dropped, new entries inserted, and recorded
// size/timestamp/checksum/target refreshed.
type Updater struct {
	// Force recomputes checksums even when size and timestamp say the
	// file is unchanged.
	Force   bool
	Opts    Options
	Mon     *Monitor
	Rep     Reporter
	Matcher *ignore.Matcher

	// Checksums counts content hash computations, exposed so the
	// skip-when-fresh policy is observable.
	Checksums int

	changed bool
}

// Run updates one node and marks the owning collection dirty when
// anything actually changed.
func (u *Updater) Run(node *collection.Node) error {
	switch node.Kind {
	case collection.KindSymlink:
		if err := u.updateSymlink(node); err != nil {
			return err
		}
	case collection.KindFile:
		if err := u.updateFile(node); err != nil {
			return err
		}
	case collection.KindDirectory:
		if err := u.updateDirectory(node); err != nil {
			return err
		}
	}

	if u.changed {
		node.Collection().Dirty = true
	}
	return nil
}

func (u *Updater) updateSymlink(node *collection.Node) error {
	target, err := os.Readlink(node.Path())
	if err != nil {
		return err
	}
	if target != node.Target {
		node.Target = target
		u.changed = true
		u.Rep.Event(Event{Path: node.PrettyPath(), Code: SymlinkDrift})
	}
	return nil
}

// updateFile recomputes the checksum only when cheap metadata says the
// recorded state may be stale: checksumming is the expensive step and
// is skipped whenever size and timestamp already prove freshness.
func (u *Updater) updateFile(node *collection.Node) error {
	fi, err := os.Stat(node.Path())
	if err != nil {
		return err
	}

	stale := u.Force ||
		absDiff(node.Timestamp, fi.ModTime().Unix()) > u.Opts.Tolerance ||
		node.Size != fi.Size() ||
		node.Checksum == ""
	if !stale {
		return nil
	}

	if u.Mon.Verbose() {
		u.Rep.Event(Event{Path: node.PrettyPath(), Code: Processing})
	}

	sum, err := ChecksumFile(node.Path(), u.Opts.BufferSize)
	if err != nil {
		return err
	}
	u.Checksums++

	node.Checksum = sum
	node.Timestamp = fi.ModTime().Unix()
	node.Size = fi.Size()
	u.changed = true
	u.Rep.Event(Event{Path: node.PrettyPath(), Code: Checksum})
	return nil
}

func (u *Updater) updateDirectory(dir *collection.Node) error {
	if u.Mon.Verbose() {
		u.Rep.Event(Event{Path: dir.PrettyPath(), Code: Processing})
	}

	// Drop ignored children first, then children gone from disk.
	for _, name := range dir.ChildNames() {
		if u.Mon.Cancelled() {
			return nil
		}
		child := dir.Children[name]

		switch {
		case dir.Ignores(name):
			delete(dir.Children, name)
			u.changed = true
			u.Rep.Event(Event{Path: child.PrettyPath(), Code: Ignored})
		case !child.Exists():
			delete(dir.Children, name)
			u.changed = true
			u.Rep.Event(Event{Path: child.PrettyPath(), Code: Deleted})
		}
	}

	// Insert new live entries with empty recorded state; the update
	// pass below fills them in. Unsupported kinds are skipped and will
	// surface as MISSING on the next check.
	entries, err := os.ReadDir(dir.Path())
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if u.Mon.Cancelled() {
			return nil
		}
		name := entry.Name()
		if u.ignored(dir, name, entry.IsDir()) {
			continue
		}
		if _, tracked := dir.Children[name]; tracked {
			continue
		}

		node, ok := classify(dir, name)
		if !ok {
			continue
		}
		u.changed = true
		u.Rep.Event(Event{Path: node.PrettyPath(), Code: Added})
	}

	// Refresh every current child, newly added ones included.
	for _, name := range dir.ChildNames() {
		if u.Mon.Cancelled() {
			return nil
		}
		child := dir.Children[name]

		switch child.Kind {
		case collection.KindSymlink:
			if err := u.updateSymlink(child); err != nil {
				return err
			}
		case collection.KindFile:
			if err := u.updateFile(child); err != nil {
				return err
			}
		case collection.KindDirectory:
			if u.Opts.Recurse {
				if err := u.updateDirectory(child); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// classify creates a fresh node for a live entry, dispatching on its
// lstat kind: symlink beats file beats directory.
func classify(dir *collection.Node, name string) (*collection.Node, bool) {
	fi, err := os.Lstat(dir.Path() + string(os.PathSeparator) + name)
	if err != nil {
		return nil, false
	}

	switch {
	case fi.Mode()&os.ModeSymlink != 0:
		return collection.NewSymlink(dir, name, ""), true
	case fi.Mode().IsRegular():
		return collection.NewFile(dir, name, 0, 0, ""), true
	case fi.IsDir():
		return collection.NewDirectory(dir, name), true
	default:
		return nil, false
	}
}

func (u *Updater) ignored(dir *collection.Node, name string, isDir bool) bool {
	if dir.Ignores(name) {
		return true
	}
	return u.Matcher.Match(append(dir.PathList(), name), isDir)
}
