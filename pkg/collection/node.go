// Package collection models a tracked file collection: a tree of file,
// symlink, and directory nodes with attached metadata, persisted to an
// XML manifest.
package collection

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Kind discriminates the closed set of tracked entry types.
type Kind int

const (
	KindFile Kind = iota
	KindSymlink
	KindDirectory
)

// String returns the manifest element name for the kind.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindSymlink:
		return "symlink"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// Node is one tracked filesystem entry. A single struct carries the
// payload for every kind; Kind selects which fields are meaningful.
// Operations over nodes dispatch with an exhaustive switch on Kind.
type Node struct {
	Name   string
	Kind   Kind
	Parent *Node
	Meta   MetaSet

	// KindFile. Size and Timestamp are -1 when never recorded, so any
	// live value reads as stale. Checksum "" means never computed.
	Size      int64
	Timestamp int64
	Checksum  string

	// KindSymlink
	Target string

	// KindDirectory
	Children       map[string]*Node
	IgnorePatterns []string

	coll     *Collection
	pathList []string
}

// newNode attaches a node under parent. The root directory is the only
// node without a parent and is created by the Collection itself.
func newNode(parent *Node, name string, kind Kind) *Node {
	n := &Node{
		Name: name,
		Kind: kind,
		Meta: MetaSet{},
	}

	if parent == nil {
		panic("collection: non-root node requires a parent")
	}
	if parent.Kind != KindDirectory {
		panic("collection: parent must be a directory")
	}
	if name == "" {
		panic("collection: node requires a name")
	}
	if _, taken := parent.Children[name]; taken {
		panic("collection: duplicate child name " + name)
	}

	n.Parent = parent
	n.coll = parent.coll
	n.pathList = append(append([]string{}, parent.pathList...), name)
	parent.Children[name] = n

	return n
}

// NewFile creates a file node under parent.
func NewFile(parent *Node, name string, size, timestamp int64, checksum string) *Node {
	n := newNode(parent, name, KindFile)
	n.Size = size
	n.Timestamp = timestamp
	n.Checksum = checksum
	return n
}

// NewSymlink creates a symlink node under parent.
func NewSymlink(parent *Node, name, target string) *Node {
	n := newNode(parent, name, KindSymlink)
	n.Target = target
	return n
}

// NewDirectory creates a directory node under parent.
func NewDirectory(parent *Node, name string) *Node {
	n := newNode(parent, name, KindDirectory)
	n.Children = map[string]*Node{}
	return n
}

// newRootNode creates the unique parentless directory owned by coll.
func newRootNode(coll *Collection) *Node {
	return &Node{
		Kind:     KindDirectory,
		Meta:     MetaSet{},
		Children: map[string]*Node{},
		coll:     coll,
		pathList: []string{},
	}
}

// IsRoot reports whether the node is the collection root.
func (n *Node) IsRoot() bool { return n.Parent == nil }

// Collection returns the owning collection.
func (n *Node) Collection() *Collection { return n.coll }

// PathList returns a copy of the path segments from the collection root
// to this node. Empty for the root.
func (n *Node) PathList() []string {
	return append([]string{}, n.pathList...)
}

// Path returns the live filesystem path of the node.
func (n *Node) Path() string {
	return filepath.Join(append([]string{n.coll.Root}, n.pathList...)...)
}

// PrettyPath returns the display path: "/"-joined segments under the
// collection root. The root itself is "/".
func (n *Node) PrettyPath() string {
	return "/" + strings.Join(n.pathList, "/")
}

// Exists tests the node against the live filesystem. Directory and file
// tests exclude symlinks pointing at directories or files; the symlink
// test only requires the link itself to exist.
func (n *Node) Exists() bool {
	switch n.Kind {
	case KindSymlink:
		fi, err := os.Lstat(n.Path())
		return err == nil && fi.Mode()&os.ModeSymlink != 0
	case KindFile:
		fi, err := os.Lstat(n.Path())
		return err == nil && fi.Mode().IsRegular()
	case KindDirectory:
		fi, err := os.Lstat(n.Path())
		return err == nil && fi.IsDir()
	default:
		return false
	}
}

// ChildNames returns the directory's child names in sorted order.
func (n *Node) ChildNames() []string {
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ignores reports whether a directory entry name matches the directory's
// own ignore patterns or any ignore-type metadata attached to it. The
// root additionally ignores the manifest file and its rotated backups.
func (n *Node) Ignores(name string) bool {
	if n.IsRoot() && n.coll.AutoFile != "" {
		if name == n.coll.AutoFile || strings.HasPrefix(name, n.coll.AutoFile+".") {
			return true
		}
	}
	for _, pat := range n.IgnorePatterns {
		if ok, err := doublestar.Match(pat, name); err == nil && ok {
			return true
		}
	}
	for _, rec := range n.GetMeta(TypeIgnore) {
		if rec.Pattern == "" {
			continue
		}
		if ok, err := doublestar.Match(rec.Pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// updatePathList recomputes the path segments after a rename or move,
// recursing through directory children.
func (n *Node) updatePathList() {
	n.pathList = append(append([]string{}, n.Parent.pathList...), n.Name)
	if n.Kind == KindDirectory {
		for _, child := range n.Children {
			child.updatePathList()
		}
	}
}
