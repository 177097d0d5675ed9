package collection

import "errors"

// Mutation failures are user errors: the operation reports and the
// process continues.
var (
	ErrIsRoot       = errors.New("the root directory cannot be moved, renamed, or deleted")
	ErrNotDirectory = errors.New("target parent is not a directory")
	ErrCycle        = errors.New("target parent is a descendant of the node")
	ErrNameTaken    = errors.New("a sibling with that name already exists")
	ErrEmptyName    = errors.New("name must not be empty")
)

// Reparent moves the node under a new parent directory, keeping its
// name. Path segments are recomputed for the node and, for directories,
// every descendant.
func (n *Node) Reparent(parent *Node) error {
	if n.IsRoot() {
		return ErrIsRoot
	}
	if parent.Kind != KindDirectory {
		return ErrNotDirectory
	}

	// Walk the new parent's ancestor chain: moving under our own
	// descendant (or onto ourselves) would detach the subtree.
	for walk := parent; walk != nil; walk = walk.Parent {
		if walk == n {
			return ErrCycle
		}
	}

	if _, taken := parent.Children[n.Name]; taken {
		return ErrNameTaken
	}

	delete(n.Parent.Children, n.Name)
	n.Parent = parent
	parent.Children[n.Name] = n
	n.updatePathList()

	n.coll.Dirty = true
	return nil
}

// Rename changes the node's name in place.
func (n *Node) Rename(newName string) error {
	if n.IsRoot() {
		return ErrIsRoot
	}
	if newName == "" {
		return ErrEmptyName
	}
	if _, taken := n.Parent.Children[newName]; taken {
		return ErrNameTaken
	}

	delete(n.Parent.Children, n.Name)
	n.Name = newName
	n.Parent.Children[newName] = n
	n.updatePathList()

	n.coll.Dirty = true
	return nil
}

// Delete detaches the node from its parent. Metadata elsewhere in the
// tree that referenced this subtree (provides/depends records) is not
// scrubbed: the process is single-shot and metadata is rebuilt from
// rules on the next updatemeta.
func (n *Node) Delete() error {
	if n.IsRoot() {
		return ErrIsRoot
	}

	delete(n.Parent.Children, n.Name)
	n.Parent = nil

	n.coll.Dirty = true
	return nil
}
