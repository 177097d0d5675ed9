package meta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulmenhq/fcman/pkg/collection"
)

// statusRecorder collects reported status lines for assertions.
type statusRecorder struct {
	entries []statusEntry
}

type statusEntry struct {
	Path, Code, Detail string
}

func (r *statusRecorder) Status(path, code, detail string) {
	r.entries = append(r.entries, statusEntry{path, code, detail})
}

func (r *statusRecorder) paths(code string) []string {
	var out []string
	for _, e := range r.entries {
		if e.Code == code {
			out = append(out, e.Path)
		}
	}
	return out
}

// writeTracked writes a live file and registers it in the collection.
func writeTracked(t *testing.T, dir *collection.Node, name, content string) *collection.Node {
	t.Helper()
	node := collection.NewFile(dir, name, int64(len(content)), 0, "")
	require.NoError(t, os.MkdirAll(filepath.Dir(node.Path()), 0o755))
	require.NoError(t, os.WriteFile(node.Path(), []byte(content), 0o644))
	return node
}

const ruleFile = `[fcman:fcmeta]
target = sub

[pkg-*]
pattern = pkg-(@).txt
autoname = mypkg
tags = tools, release
description = A test
    package
depends = base:1.0
`

func TestLoadRules(t *testing.T) {
	coll := collection.New()
	coll.SetRoot(t.TempDir())
	writeTracked(t, coll.RootNode, RuleFileName, ruleFile)

	rec := &statusRecorder{}
	rules, ok := LoadRules(coll, rec)
	require.True(t, ok)
	require.Len(t, rules, 1)

	rule := rules[0]
	assert.Equal(t, "pkg-*", rule.Name)
	assert.Equal(t, "pkg-(@).txt", rule.Pattern)
	assert.Equal(t, "sub", rule.Target)
	assert.Equal(t, []string{"mypkg"}, rule.AutoName)
	assert.Equal(t, "/fcmeta.ini:pkg-*", rule.Ref())

	// Static records: two tags, one collapsed description, one depends.
	var tags, descs, deps int
	for _, r := range rule.Records {
		switch r.Type {
		case collection.TypeTag:
			tags++
		case collection.TypeDescription:
			descs++
			assert.Equal(t, "A test package", r.Description)
		case collection.TypeDepends:
			deps++
			assert.Equal(t, "base", r.Name)
			assert.Equal(t, "1.0", r.MinVersion)
		}
	}
	assert.Equal(t, 2, tags)
	assert.Equal(t, 1, descs)
	assert.Equal(t, 1, deps)
}

func TestLoadRulesSectionNameIsDefaultPattern(t *testing.T) {
	coll := collection.New()
	coll.SetRoot(t.TempDir())
	writeTracked(t, coll.RootNode, RuleFileName, "[fcman:fcmeta]\n\n[*.iso]\ntags = image\n")

	rules, ok := LoadRules(coll, &statusRecorder{})
	require.True(t, ok)
	require.Len(t, rules, 1)
	assert.Equal(t, "*.iso", rules[0].Pattern)
	assert.Equal(t, ".", rules[0].Target)
}

func TestLoadRulesMissingOptionsSection(t *testing.T) {
	coll := collection.New()
	coll.SetRoot(t.TempDir())
	writeTracked(t, coll.RootNode, RuleFileName, "[whatever]\ntags = x\n")

	rec := &statusRecorder{}
	rules, ok := LoadRules(coll, rec)
	assert.False(t, ok)
	assert.Empty(t, rules)
	assert.Equal(t, []string{"/fcmeta.ini"}, rec.paths("NOTMETAINFO"))
}

func TestLoadRulesForcedDirectory(t *testing.T) {
	coll := collection.New()
	coll.SetRoot(t.TempDir())

	forced := collection.NewDirectory(coll.RootNode, RuleFileName)
	writeTracked(t, forced, "a.ini", "[fcman:fcmeta]\n\n[*.txt]\ntags = text\n")
	writeTracked(t, forced, ".hidden.ini", "[garbage")
	writeTracked(t, forced, "notes.md", "not a rule file")

	rules, ok := LoadRules(coll, &statusRecorder{})
	require.True(t, ok)
	require.Len(t, rules, 1)
	assert.Equal(t, "*.txt", rules[0].Pattern)
}

func TestSplitVersioned(t *testing.T) {
	tests := []struct {
		entry            string
		name, minV, maxV string
	}{
		{"pkg", "pkg", "", ""},
		{"pkg:1.0", "pkg", "1.0", ""},
		{"pkg:1.0:2.0", "pkg", "1.0", "2.0"},
		{"pkg::2.0", "pkg", "", "2.0"},
	}
	for _, tt := range tests {
		name, a, b := splitVersioned(tt.entry)
		assert.Equal(t, tt.name, name, tt.entry)
		assert.Equal(t, tt.minV, a, tt.entry)
		assert.Equal(t, tt.maxV, b, tt.entry)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList("a, b\tc"))
	assert.Empty(t, splitList("  ,  "))
}
