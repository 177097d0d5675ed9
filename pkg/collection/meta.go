package collection

import (
	"sort"
	"strings"
)

// Recognized metadata record types. Anything else round-trips opaquely.
const (
	TypeProvides    = "provides"
	TypeDepends     = "depends"
	TypeTag         = "tag"
	TypeDescription = "description"
	TypeIgnore      = "ignore"
)

// Record is one metadata entry attached to a node. Type selects the
// variant; unrecognized types keep their raw attributes in Opaque so a
// manifest written by a newer version survives a load/save cycle.
type Record struct {
	Type string

	// TypeProvides
	Name    string
	Version string

	// TypeDepends (Name shared with provides)
	MinVersion string
	MaxVersion string

	// TypeTag
	Tag string

	// TypeDescription
	Description string

	// TypeIgnore
	Pattern string

	// Unrecognized types
	Opaque map[string]string
}

// ProvidesRecord declares a package the node offers.
func ProvidesRecord(name, version string) Record {
	return Record{Type: TypeProvides, Name: name, Version: version}
}

// DependsRecord declares a package requirement with optional bounds.
func DependsRecord(name, minVersion, maxVersion string) Record {
	return Record{Type: TypeDepends, Name: name, MinVersion: minVersion, MaxVersion: maxVersion}
}

// TagRecord attaches a free-form tag.
func TagRecord(tag string) Record {
	return Record{Type: TypeTag, Tag: tag}
}

// DescriptionRecord attaches a description.
func DescriptionRecord(desc string) Record {
	return Record{Type: TypeDescription, Description: desc}
}

// IgnoreRecord attaches a glob of entries to skip during reconciliation.
func IgnoreRecord(pattern string) Record {
	return Record{Type: TypeIgnore, Pattern: pattern}
}

// OpaqueRecord preserves an unrecognized record type verbatim.
func OpaqueRecord(recordType string, attrs map[string]string) Record {
	cp := make(map[string]string, len(attrs))
	for k, v := range attrs {
		if k == "type" {
			continue
		}
		cp[k] = v
	}
	return Record{Type: recordType, Opaque: cp}
}

// Attrs returns the manifest attributes for the record, including type.
func (r Record) Attrs() map[string]string {
	switch r.Type {
	case TypeProvides:
		return map[string]string{"type": r.Type, "name": r.Name, "version": r.Version}
	case TypeDepends:
		return map[string]string{
			"type": r.Type, "name": r.Name,
			"minversion": r.MinVersion, "maxversion": r.MaxVersion,
		}
	case TypeTag:
		return map[string]string{"type": r.Type, "tag": r.Tag}
	case TypeDescription:
		return map[string]string{"type": r.Type, "description": r.Description}
	case TypeIgnore:
		return map[string]string{"type": r.Type, "pattern": r.Pattern}
	default:
		attrs := map[string]string{"type": r.Type}
		for k, v := range r.Opaque {
			attrs[k] = v
		}
		return attrs
	}
}

// RecordFromAttrs decodes a manifest meta element's attributes.
func RecordFromAttrs(attrs map[string]string) Record {
	recordType := attrs["type"]
	switch recordType {
	case TypeProvides:
		return ProvidesRecord(attrs["name"], attrs["version"])
	case TypeDepends:
		return DependsRecord(attrs["name"], attrs["minversion"], attrs["maxversion"])
	case TypeTag:
		return TagRecord(attrs["tag"])
	case TypeDescription:
		return DescriptionRecord(attrs["description"])
	case TypeIgnore:
		return IgnoreRecord(attrs["pattern"])
	default:
		return OpaqueRecord(recordType, attrs)
	}
}

// key is the canonical dedup identity of a record: identical records
// collapse into one entry per node.
func (r Record) key() string {
	attrs := r.Attrs()
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('\x00')
		b.WriteString(attrs[k])
		b.WriteByte('\x00')
	}
	return b.String()
}

// MetaSet is a per-node multimap of record type to a set of records.
// Duplicate identical records collapse; iteration is stable.
type MetaSet map[string]map[string]Record

// AddMeta attaches a record to the node.
func (n *Node) AddMeta(rec Record) {
	set, ok := n.Meta[rec.Type]
	if !ok {
		set = map[string]Record{}
		n.Meta[rec.Type] = set
	}
	set[rec.key()] = rec
}

// GetMeta returns the node's records of one type in stable order.
func (n *Node) GetMeta(recordType string) []Record {
	set, ok := n.Meta[recordType]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	recs := make([]Record, 0, len(keys))
	for _, k := range keys {
		recs = append(recs, set[k])
	}
	return recs
}

// AllMeta returns every record on the node, grouped by type in sorted
// type order.
func (n *Node) AllMeta() []Record {
	types := make([]string, 0, len(n.Meta))
	for t := range n.Meta {
		types = append(types, t)
	}
	sort.Strings(types)

	var recs []Record
	for _, t := range types {
		recs = append(recs, n.GetMeta(t)...)
	}
	return recs
}

// ClearMeta drops every record from the node.
func (n *Node) ClearMeta() {
	n.Meta = MetaSet{}
}

// HasMeta reports whether any record is attached.
func (n *Node) HasMeta() bool {
	for _, set := range n.Meta {
		if len(set) > 0 {
			return true
		}
	}
	return false
}
