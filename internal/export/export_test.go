package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fulmenhq/fcman/pkg/collection"
)

type statusRecorder struct {
	entries []string
}

func (r *statusRecorder) Status(path, code, detail string) {
	r.entries = append(r.entries, code+" "+path)
}

func exportTree() *collection.Collection {
	coll := collection.New()

	docs := collection.NewDirectory(coll.RootNode, "docs")
	readme := collection.NewFile(docs, "readme.txt", 5, 0, "5d41402abc4b2a76b9719d911017c592")
	readme.AddMeta(collection.ProvidesRecord("docs", "1.0"))
	readme.AddMeta(collection.TagRecord("text"))
	readme.AddMeta(collection.DescriptionRecord("project readme"))

	collection.NewFile(coll.RootNode, "data.bin", 3, 0, "900150983cd24fb0d6963f7d28e17f72")
	collection.NewSymlink(coll.RootNode, "link", "data.bin")

	return coll
}

func TestChecksums(t *testing.T) {
	dir := t.TempDir()
	e := &Exporter{Dir: dir, Rep: &statusRecorder{}}

	ok, err := e.Checksums(exportTree())
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := os.ReadFile(filepath.Join(dir, ChecksumFileName))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Equal(t, []string{
		"900150983cd24fb0d6963f7d28e17f72 *data.bin",
		"5d41402abc4b2a76b9719d911017c592 *docs/readme.txt",
	}, lines)
}

func TestChecksumsReportsMissing(t *testing.T) {
	coll := exportTree()
	collection.NewFile(coll.RootNode, "nohash.txt", 1, 0, "")

	dir := t.TempDir()
	rec := &statusRecorder{}
	e := &Exporter{Dir: dir, Rep: rec}

	ok, err := e.Checksums(coll)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"NOCHECKSUM /nohash.txt"}, rec.entries)

	data, err := os.ReadFile(filepath.Join(dir, ChecksumFileName))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "nohash.txt")
}

func TestInfo(t *testing.T) {
	dir := t.TempDir()
	e := &Exporter{Dir: dir, Rep: &statusRecorder{}}

	require.NoError(t, e.Info(exportTree(), false))

	data, err := os.ReadFile(filepath.Join(dir, InfoFileName))
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "/docs/readme.txt")
	assert.Contains(t, text, "provides docs:1.0")
	assert.Contains(t, text, "tag text")
	assert.Contains(t, text, "project readme")
	// Nodes without metadata stay out of the report.
	assert.NotContains(t, text, "data.bin")

	assert.NoFileExists(t, filepath.Join(dir, SummaryFileName))
}

func TestInfoSummary(t *testing.T) {
	dir := t.TempDir()
	e := &Exporter{Dir: dir, Rep: &statusRecorder{}}

	require.NoError(t, e.Info(exportTree(), true))

	data, err := os.ReadFile(filepath.Join(dir, SummaryFileName))
	require.NoError(t, err)

	var entries []map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "/docs/readme.txt", entries[0]["path"])
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	e := &Exporter{Dir: dir}
	require.NoError(t, e.EnsureDir())
	assert.DirExists(t, dir)
}
