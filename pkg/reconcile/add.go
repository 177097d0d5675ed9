package reconcile

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/fulmenhq/fcman/pkg/collection"
)

var (
	// ErrAlreadyTracked: the path resolves to an existing node.
	ErrAlreadyTracked = errors.New("path is already tracked")

	// ErrNotDirectory: an intermediate tracked node is not a directory.
	ErrNotDirectory = errors.New("intermediate node is not a directory")

	// ErrMissingOnDisk: an intermediate directory no longer exists on
	// the live filesystem.
	ErrMissingOnDisk = errors.New("intermediate directory does not exist on disk")

	// ErrParentsNotAllowed: intermediate nodes are required but parent
	// creation was not enabled.
	ErrParentsNotAllowed = errors.New("intermediate directories missing (parent creation disabled)")

	// ErrUnsupportedKind: the live entry is not a file, symlink, or
	// directory.
	ErrUnsupportedKind = errors.New("unsupported filesystem entry kind")
)

// AddPath inserts the entry at the given collection-relative segments,
// creating missing intermediate directory nodes only when createParents
// is set and each traversed directory still exists on disk. The new
// node is immediately brought up to date.
func (u *Updater) AddPath(coll *collection.Collection, segments []string, createParents bool) (*collection.Node, error) {
	node, remaining := coll.FindNearest(segments)
	if len(remaining) == 0 {
		return nil, ErrAlreadyTracked
	}

	parent, err := u.ensureParents(node, remaining[:len(remaining)-1], createParents)
	if err != nil {
		return nil, err
	}

	name := remaining[len(remaining)-1]
	if !parent.Exists() {
		return nil, ErrMissingOnDisk
	}
	if _, err := os.Lstat(filepath.Join(parent.Path(), name)); err != nil {
		return nil, ErrMissingOnDisk
	}

	added, ok := classify(parent, name)
	if !ok {
		return nil, ErrUnsupportedKind
	}
	u.changed = true
	u.Rep.Event(Event{Path: added.PrettyPath(), Code: Added})

	switch added.Kind {
	case collection.KindSymlink:
		err = u.updateSymlink(added)
	case collection.KindFile:
		err = u.updateFile(added)
	case collection.KindDirectory:
		if u.Opts.Recurse {
			err = u.updateDirectory(added)
		}
	}
	if err != nil {
		return nil, err
	}

	coll.Dirty = true
	return added, nil
}

// ensureParents walks the unresolved intermediate segments, creating
// directory nodes for path components whose directories exist live.
func (u *Updater) ensureParents(node *collection.Node, parts []string, createParents bool) (*collection.Node, error) {
	for {
		if node.Kind != collection.KindDirectory {
			return nil, ErrNotDirectory
		}
		if !node.Exists() {
			return nil, ErrMissingOnDisk
		}
		if len(parts) == 0 {
			return node, nil
		}
		if !createParents {
			return nil, ErrParentsNotAllowed
		}

		name := parts[0]
		parts = parts[1:]

		// FindNearest already consumed every tracked component, so the
		// child cannot exist yet.
		node = collection.NewDirectory(node, name)
		u.changed = true
		u.Rep.Event(Event{Path: node.PrettyPath(), Code: Added})
	}
}
