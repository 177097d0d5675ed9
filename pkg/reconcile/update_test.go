package reconcile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateSkipsFreshChecksums(t *testing.T) {
	coll := newTracked(t)
	a := coll.FindNode([]string{"a.txt"})
	require.NotNil(t, a)

	// Size and timestamp still vouch for the file, so the tampered
	// checksum is not recomputed without --force.
	a.Checksum = "bogus"

	u := &Updater{Opts: testOptions(), Mon: NewMonitor(false), Rep: &recorder{}}
	require.NoError(t, u.Run(coll.RootNode))
	assert.Zero(t, u.Checksums)
	assert.Equal(t, "bogus", a.Checksum)

	forced := &Updater{Force: true, Opts: testOptions(), Mon: NewMonitor(false), Rep: &recorder{}}
	require.NoError(t, forced.Run(coll.RootNode))
	assert.Equal(t, 2, forced.Checksums)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", a.Checksum)
}

func TestUpdateRecomputesEmptyChecksum(t *testing.T) {
	coll := newTracked(t)
	a := coll.FindNode([]string{"a.txt"})
	a.Checksum = ""

	u := &Updater{Opts: testOptions(), Mon: NewMonitor(false), Rep: &recorder{}}
	require.NoError(t, u.Run(coll.RootNode))
	assert.Equal(t, 1, u.Checksums)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", a.Checksum)
	assert.True(t, coll.Dirty)
}

func TestUpdateDropsDeletedEntries(t *testing.T) {
	coll := newTracked(t)
	require.NoError(t, os.Remove(filepath.Join(coll.Root, "a.txt")))

	rec := &recorder{}
	u := &Updater{Opts: testOptions(), Mon: NewMonitor(false), Rep: rec}
	require.NoError(t, u.Run(coll.RootNode))

	assert.Equal(t, []string{"/a.txt"}, rec.paths(Deleted))
	assert.Nil(t, coll.FindNode([]string{"a.txt"}))
	assert.True(t, coll.Dirty)
}

func TestUpdateDropsIgnoredEntries(t *testing.T) {
	coll := newTracked(t)
	coll.RootNode.IgnorePatterns = []string{"a.txt"}

	rec := &recorder{}
	u := &Updater{Opts: testOptions(), Mon: NewMonitor(false), Rep: rec}
	require.NoError(t, u.Run(coll.RootNode))

	assert.Equal(t, []string{"/a.txt"}, rec.paths(Ignored))
	assert.Nil(t, coll.FindNode([]string{"a.txt"}))

	// The live file is untouched and is not re-added either.
	assert.FileExists(t, filepath.Join(coll.Root, "a.txt"))
}

func TestUpdateAddsNewEntries(t *testing.T) {
	coll := newTracked(t)
	require.NoError(t, os.Mkdir(filepath.Join(coll.Root, "fresh"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(coll.Root, "fresh", "new.txt"), []byte("abc"), 0o644))

	rec := &recorder{}
	u := &Updater{Opts: testOptions(), Mon: NewMonitor(false), Rep: rec}
	require.NoError(t, u.Run(coll.RootNode))

	assert.ElementsMatch(t, []string{"/fresh", "/fresh/new.txt"}, rec.paths(Added))

	added := coll.FindNode([]string{"fresh", "new.txt"})
	require.NotNil(t, added)
	assert.Equal(t, int64(3), added.Size)
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", added.Checksum)
}

func TestUpdateNoRecurse(t *testing.T) {
	coll := newTracked(t)
	require.NoError(t, os.WriteFile(filepath.Join(coll.Root, "sub", "extra.txt"), []byte("x"), 0o644))

	opts := testOptions()
	opts.Recurse = false
	u := &Updater{Opts: opts, Mon: NewMonitor(false), Rep: &recorder{}}
	require.NoError(t, u.Run(coll.RootNode))

	assert.Nil(t, coll.FindNode([]string{"sub", "extra.txt"}))
}

func TestUpdateSingleFileNode(t *testing.T) {
	coll := newTracked(t)
	a := coll.FindNode([]string{"a.txt"})

	path := filepath.Join(coll.Root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("rewritten"), 0o644))

	rec := &recorder{}
	u := &Updater{Opts: testOptions(), Mon: NewMonitor(false), Rep: rec}
	require.NoError(t, u.Run(a))

	assert.Equal(t, int64(9), a.Size)
	assert.Equal(t, []string{"/a.txt"}, rec.paths(Checksum))
	assert.True(t, coll.Dirty)
}

func TestChecksumFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	sum, err := ChecksumFile(path, DefaultBufferSize)
	require.NoError(t, err)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", sum)

	_, err = ChecksumFile(filepath.Join(t.TempDir(), "missing"), DefaultBufferSize)
	assert.Error(t, err)
}

func TestAddPath(t *testing.T) {
	coll := newTracked(t)
	require.NoError(t, os.WriteFile(filepath.Join(coll.Root, "sub", "c.txt"), []byte("new"), 0o644))

	u := &Updater{Opts: testOptions(), Mon: NewMonitor(false), Rep: &recorder{}}
	node, err := u.AddPath(coll, []string{"sub", "c.txt"}, false)
	require.NoError(t, err)

	assert.Equal(t, "/sub/c.txt", node.PrettyPath())
	assert.Equal(t, int64(3), node.Size)
	assert.NotEmpty(t, node.Checksum)
	assert.True(t, coll.Dirty)
}

func TestAddPathParents(t *testing.T) {
	coll := newTracked(t)
	require.NoError(t, os.MkdirAll(filepath.Join(coll.Root, "deep", "er"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(coll.Root, "deep", "er", "f.txt"), []byte("x"), 0o644))

	u := &Updater{Opts: testOptions(), Mon: NewMonitor(false), Rep: &recorder{}}

	_, err := u.AddPath(coll, []string{"deep", "er", "f.txt"}, false)
	assert.ErrorIs(t, err, ErrParentsNotAllowed)

	node, err := u.AddPath(coll, []string{"deep", "er", "f.txt"}, true)
	require.NoError(t, err)
	assert.Equal(t, "/deep/er/f.txt", node.PrettyPath())
	require.NotNil(t, coll.FindNode([]string{"deep", "er"}))
}

func TestAddPathErrors(t *testing.T) {
	coll := newTracked(t)

	u := &Updater{Opts: testOptions(), Mon: NewMonitor(false), Rep: &recorder{}}

	_, err := u.AddPath(coll, []string{"a.txt"}, false)
	assert.ErrorIs(t, err, ErrAlreadyTracked)

	_, err = u.AddPath(coll, []string{"a.txt", "below"}, true)
	assert.ErrorIs(t, err, ErrNotDirectory)

	_, err = u.AddPath(coll, []string{"ghost", "f.txt"}, true)
	assert.ErrorIs(t, err, ErrMissingOnDisk)

	_, err = u.AddPath(coll, []string{"nosuch.txt"}, false)
	assert.ErrorIs(t, err, ErrMissingOnDisk)
}
