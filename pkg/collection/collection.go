package collection

import (
	"path/filepath"
	"strings"
)

// Collection owns the root directory node and the filesystem root the
// tree is reconciled against.
type Collection struct {
	// Root is the absolute base path of the live tree.
	Root string

	// AutoRoot is the root path as declared in the manifest, relative to
	// the manifest file's own directory. Defaults to ".".
	AutoRoot string

	// AutoFile is the manifest's own base name when the manifest lives
	// inside the collection root. The root directory ignores it and its
	// rotated backups during reconciliation.
	AutoFile string

	// RootNode is the unique parentless directory node.
	RootNode *Node

	// Dirty is set by any mutating operation; the caller persists the
	// manifest only when it is set.
	Dirty bool
}

// New creates an empty collection rooted at an empty directory node.
func New() *Collection {
	coll := &Collection{AutoRoot: "."}
	coll.RootNode = newRootNode(coll)
	return coll
}

// SetRoot sets the live filesystem base path.
func (c *Collection) SetRoot(root string) {
	c.Root = filepath.Clean(root)
}

// Normalize maps an external filesystem path to path segments relative
// to the collection root. It returns nil when the path lies outside the
// collection.
func (c *Collection) Normalize(path string) []string {
	if path == "" || c.Root == "" {
		return nil
	}

	rel, err := filepath.Rel(c.Root, path)
	if err != nil || filepath.IsAbs(rel) {
		return nil
	}

	segments := []string{}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			// A relative path from the root never walks upward for a
			// path inside the collection.
			return nil
		default:
			segments = append(segments, seg)
		}
	}
	return segments
}

// FindNearest walks the given segments from the root and returns the
// deepest node reached plus the unresolved remainder. An empty
// remainder means the node was found exactly.
func (c *Collection) FindNearest(segments []string) (*Node, []string) {
	node := c.RootNode
	rest := append([]string{}, segments...)

	for len(rest) > 0 {
		if node.Kind != KindDirectory {
			break
		}
		child, ok := node.Children[rest[0]]
		if !ok {
			break
		}
		node = child
		rest = rest[1:]
	}

	return node, rest
}

// FindNode returns the node at the exact path, or nil.
func (c *Collection) FindNode(segments []string) *Node {
	node, rest := c.FindNearest(segments)
	if len(rest) != 0 {
		return nil
	}
	return node
}
