// Package export renders collection data into standalone files that
// can travel with the tree: an md5sums listing usable with `md5sum -c`
// and a human-readable metadata report.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aymerick/raymond"
	"gopkg.in/yaml.v3"

	"github.com/fulmenhq/fcman/pkg/collection"
	"github.com/fulmenhq/fcman/pkg/safeio"
)

const (
	// ChecksumFileName is the md5sum-compatible listing.
	ChecksumFileName = "md5sums.txt"
	// InfoFileName is the rendered metadata report.
	InfoFileName = "info.txt"
	// SummaryFileName is the machine-readable metadata summary.
	SummaryFileName = "info.yaml"
)

// Reporter receives findings raised while exporting.
type Reporter interface {
	Status(path, code, detail string)
}

// Exporter writes export artifacts into Dir.
type Exporter struct {
	Dir string
	Rep Reporter
}

// Checksums writes an md5sum-compatible file covering every regular
// file in the collection. Files without a recorded checksum are
// reported and left out of the listing. Returns false when any file
// was skipped that way.
func (e *Exporter) Checksums(coll *collection.Collection) (bool, error) {
	var sb strings.Builder
	ok := true

	var walk func(node *collection.Node)
	walk = func(node *collection.Node) {
		switch node.Kind {
		case collection.KindFile:
			if node.Checksum == "" {
				ok = false
				if e.Rep != nil {
					e.Rep.Status(node.PrettyPath(), "NOCHECKSUM", "")
				}
				return
			}
			rel := strings.Join(node.PathList(), "/")
			fmt.Fprintf(&sb, "%s *%s\n", node.Checksum, rel)
		case collection.KindDirectory:
			for _, name := range node.ChildNames() {
				walk(node.Children[name])
			}
		case collection.KindSymlink:
		}
	}
	walk(coll.RootNode)

	path := filepath.Join(e.Dir, ChecksumFileName)
	if err := safeio.WriteFileAtomic(path, []byte(sb.String()), 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return ok, nil
}

// entry is the per-node view handed to the report template.
type entry struct {
	Path         string   `yaml:"path"`
	Provides     []string `yaml:"provides,omitempty"`
	Depends      []string `yaml:"depends,omitempty"`
	Tags         []string `yaml:"tags,omitempty"`
	Descriptions []string `yaml:"descriptions,omitempty"`
}

// infoTemplate renders one block per node carrying metadata.
const infoTemplate = `{{#each entries}}{{path}}
{{#each provides}}    provides {{this}}
{{/each}}{{#each depends}}    depends {{this}}
{{/each}}{{#each tags}}    tag {{this}}
{{/each}}{{#each descriptions}}    {{this}}
{{/each}}
{{/each}}`

// Info renders the metadata report. When summary is true a YAML file
// with the same content is written alongside it.
func (e *Exporter) Info(coll *collection.Collection, summary bool) error {
	entries := collectEntries(coll.RootNode, nil)

	tpl, err := raymond.Parse(infoTemplate)
	if err != nil {
		return fmt.Errorf("parsing report template: %w", err)
	}

	ctx := make([]map[string]interface{}, 0, len(entries))
	for _, ent := range entries {
		ctx = append(ctx, map[string]interface{}{
			"path":         ent.Path,
			"provides":     ent.Provides,
			"depends":      ent.Depends,
			"tags":         ent.Tags,
			"descriptions": ent.Descriptions,
		})
	}
	rendered, err := tpl.Exec(map[string]interface{}{"entries": ctx})
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	path := filepath.Join(e.Dir, InfoFileName)
	if err := safeio.WriteFileAtomic(path, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	if summary {
		data, err := yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("encoding summary: %w", err)
		}
		path := filepath.Join(e.Dir, SummaryFileName)
		if err := safeio.WriteFileAtomic(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

func collectEntries(node *collection.Node, acc []entry) []entry {
	ent := entry{Path: node.PrettyPath()}
	for _, rec := range node.AllMeta() {
		switch rec.Type {
		case collection.TypeProvides:
			ent.Provides = append(ent.Provides, formatVersioned(rec.Name, rec.Version, ""))
		case collection.TypeDepends:
			ent.Depends = append(ent.Depends, formatVersioned(rec.Name, rec.MinVersion, rec.MaxVersion))
		case collection.TypeTag:
			ent.Tags = append(ent.Tags, rec.Tag)
		case collection.TypeDescription:
			ent.Descriptions = append(ent.Descriptions, rec.Description)
		}
	}
	sort.Strings(ent.Provides)
	sort.Strings(ent.Depends)
	sort.Strings(ent.Tags)
	sort.Strings(ent.Descriptions)
	if len(ent.Provides)+len(ent.Depends)+len(ent.Tags)+len(ent.Descriptions) > 0 {
		acc = append(acc, ent)
	}
	if node.Kind == collection.KindDirectory {
		for _, name := range node.ChildNames() {
			acc = collectEntries(node.Children[name], acc)
		}
	}
	return acc
}

func formatVersioned(name, a, b string) string {
	out := name
	if a != "" || b != "" {
		out += ":" + a
	}
	if b != "" {
		out += ":" + b
	}
	return out
}

// EnsureDir creates the export directory if needed.
func (e *Exporter) EnsureDir() error {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	return nil
}
