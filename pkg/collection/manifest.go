package collection

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/fulmenhq/fcman/pkg/safeio"
)

// ErrNotManifest is returned when a file parses as XML but is not a
// collection manifest.
var ErrNotManifest = errors.New("not a collection manifest")

// Load reads a manifest file into a collection. The live root path is
// not set here; callers resolve it from AutoRoot and the manifest
// location.
func Load(path string) (*Collection, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "collection" {
		return nil, ErrNotManifest
	}

	coll := New()
	if declared := root.SelectAttrValue("root", "."); declared != "" {
		coll.AutoRoot = filepath.FromSlash(declared)
	}

	loadDirectory(coll.RootNode, root)
	return coll, nil
}

// loadDirectory fills a directory node from its element. Unknown child
// tags are skipped so newer manifests still load.
func loadDirectory(dir *Node, elem *etree.Element) {
	dir.IgnorePatterns = nil
	for _, pat := range strings.Split(elem.SelectAttrValue("ignore", ""), ",") {
		if pat != "" {
			dir.IgnorePatterns = append(dir.IgnorePatterns, pat)
		}
	}

	for _, child := range elem.ChildElements() {
		switch child.Tag {
		case "directory":
			sub := NewDirectory(dir, child.SelectAttrValue("name", ""))
			loadDirectory(sub, child)
		case "file":
			f := NewFile(dir,
				child.SelectAttrValue("name", ""),
				attrInt(child, "size"),
				attrInt(child, "timestamp"),
				child.SelectAttrValue("checksum", ""),
			)
			loadMeta(f, child)
		case "symlink":
			s := NewSymlink(dir,
				child.SelectAttrValue("name", ""),
				child.SelectAttrValue("target", ""),
			)
			loadMeta(s, child)
		case "meta":
			dir.AddMeta(RecordFromAttrs(attrMap(child)))
		}
	}
}

// attrInt reads an integer attribute; absent or malformed values read
// as -1 so reconciliation treats the entry as definitely stale.
func attrInt(elem *etree.Element, name string) int64 {
	raw := elem.SelectAttrValue(name, "")
	if raw == "" {
		return -1
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return -1
	}
	return v
}

func attrMap(elem *etree.Element) map[string]string {
	attrs := make(map[string]string, len(elem.Attr))
	for _, a := range elem.Attr {
		attrs[a.Key] = a.Value
	}
	return attrs
}

func loadMeta(node *Node, elem *etree.Element) {
	for _, child := range elem.ChildElements() {
		if child.Tag == "meta" {
			node.AddMeta(RecordFromAttrs(attrMap(child)))
		}
	}
}

// Save serializes the collection deterministically (children sorted by
// name, metadata sorted by type) and writes it atomically: the previous
// manifest is replaced only once the new document is fully written.
func (c *Collection) Save(path string) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("collection")
	declared := c.AutoRoot
	if declared == "" {
		declared = "."
	}
	root.CreateAttr("root", filepath.ToSlash(declared))

	saveDirectory(c.RootNode, root)

	doc.Indent(2)
	data, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("serializing manifest: %w", err)
	}

	if err := safeio.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

func saveDirectory(dir *Node, elem *etree.Element) {
	if !dir.IsRoot() {
		elem.CreateAttr("name", dir.Name)
	}
	if len(dir.IgnorePatterns) > 0 {
		elem.CreateAttr("ignore", strings.Join(dir.IgnorePatterns, ","))
	}

	saveMeta(dir, elem)

	for _, name := range dir.ChildNames() {
		child := dir.Children[name]
		childElem := elem.CreateElement(child.Kind.String())

		switch child.Kind {
		case KindDirectory:
			saveDirectory(child, childElem)
		case KindFile:
			childElem.CreateAttr("name", child.Name)
			childElem.CreateAttr("size", strconv.FormatInt(child.Size, 10))
			childElem.CreateAttr("timestamp", strconv.FormatInt(child.Timestamp, 10))
			childElem.CreateAttr("checksum", child.Checksum)
			saveMeta(child, childElem)
		case KindSymlink:
			childElem.CreateAttr("name", child.Name)
			childElem.CreateAttr("target", child.Target)
			saveMeta(child, childElem)
		}
	}
}

func saveMeta(node *Node, elem *etree.Element) {
	for _, rec := range node.AllMeta() {
		metaElem := elem.CreateElement("meta")
		attrs := rec.Attrs()

		keys := make([]string, 0, len(attrs))
		for k := range attrs {
			keys = append(keys, k)
		}
		sortAttrKeys(keys)
		for _, k := range keys {
			metaElem.CreateAttr(k, attrs[k])
		}
	}
}

// sortAttrKeys orders attribute keys with "type" first so the record
// type leads each meta element.
func sortAttrKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == "type" {
			return keys[j] != "type"
		}
		if keys[j] == "type" {
			return false
		}
		return keys[i] < keys[j]
	})
}
