package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulmenhq/fcman/pkg/exitcode"
)

// chdir changes the working directory for the test and restores it on
// cleanup (t.Chdir requires Go 1.24; this module builds with 1.21).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

// runCLI executes the command tree in-process and returns the error a
// real invocation would map to an exit code.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCommand()
	registerSubcommands(cmd)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func exitCodeOf(err error) int {
	if err == nil {
		return exitcode.Success
	}
	var coded exitErr
	if errors.As(err, &coded) {
		return coded.code
	}
	return exitcode.GeneralError
}

func TestFindManifest(t *testing.T) {
	top := t.TempDir()
	sub := filepath.Join(top, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	manifest := filepath.Join(top, "fcman.xml")
	require.NoError(t, os.WriteFile(manifest, []byte("<collection/>"), 0o644))

	chdir(t, sub)

	_, err := findManifest("fcman.xml", false)
	assert.Error(t, err)

	found, err := findManifest("fcman.xml", true)
	require.NoError(t, err)
	assert.Equal(t, manifest, found)

	found, err = findManifest(manifest, false)
	require.NoError(t, err)
	assert.Equal(t, manifest, found)
}

func TestInitCheckUpdateCycle(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hello"), 0o644))

	require.NoError(t, runCLI(t, "init"))
	assert.FileExists(t, filepath.Join(dir, "fcman.xml"))

	// A second init must not clobber the manifest.
	err := runCLI(t, "init")
	assert.Equal(t, exitcode.GeneralError, exitCodeOf(err))

	// The new file is drift until recorded.
	err = runCLI(t, "check")
	assert.Equal(t, exitcode.GeneralError, exitCodeOf(err))

	require.NoError(t, runCLI(t, "update"))
	require.NoError(t, runCLI(t, "check"))
	require.NoError(t, runCLI(t, "verify"))

	// Content change at constant size: caught only by verify, and fixed
	// only by a forced update because the skip policy trusts matching
	// size and timestamp.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("jello"), 0o644))

	err = runCLI(t, "verify")
	assert.Equal(t, exitcode.GeneralError, exitCodeOf(err))

	require.NoError(t, runCLI(t, "update", "--force"))
	require.NoError(t, runCLI(t, "verify"))
}

func TestVerifyResumesFromStateFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	stateDir := t.TempDir()
	statePath := filepath.Join(stateDir, "state.json")
	// Flag values stick to the shared command tree between invocations.
	t.Cleanup(func() { _ = verifyCmd.Flags().Set("state", "") })

	hello := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(hello, []byte("hello"), 0o644))
	require.NoError(t, runCLI(t, "init"))
	require.NoError(t, runCLI(t, "update"))

	require.NoError(t, runCLI(t, "verify", "--state", statePath))
	data, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "/hello.txt")

	// Same-size content change with the mtime restored: the resumed
	// verify trusts its record and skips the file, a run with a fresh
	// state file recomputes and finds the drift.
	fi, err := os.Stat(hello)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(hello, []byte("jello"), 0o644))
	require.NoError(t, os.Chtimes(hello, fi.ModTime(), fi.ModTime()))

	require.NoError(t, runCLI(t, "verify", "--state", statePath))

	fresh := filepath.Join(stateDir, "fresh.json")
	err = runCLI(t, "verify", "--state", fresh)
	assert.Equal(t, exitcode.GeneralError, exitCodeOf(err))

	// The mismatch is not recorded, so it is re-verified next run.
	data, err = os.ReadFile(fresh)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "/hello.txt")
}

func TestMissingManifestIsDataError(t *testing.T) {
	chdir(t, t.TempDir())

	err := runCLI(t, "check")
	assert.Equal(t, exitcode.DataError, exitCodeOf(err))
}

func TestStructuralCommands(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dst"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "a.txt"), []byte("x"), 0o644))

	require.NoError(t, runCLI(t, "init"))
	require.NoError(t, runCLI(t, "update"))

	// Mirror a filesystem move in the manifest.
	require.NoError(t, os.Rename(filepath.Join(dir, "src", "a.txt"), filepath.Join(dir, "dst", "a.txt")))
	require.NoError(t, runCLI(t, "move", "src/a.txt", "dst"))
	require.NoError(t, runCLI(t, "check"))

	require.NoError(t, os.Rename(filepath.Join(dir, "dst", "a.txt"), filepath.Join(dir, "dst", "b.txt")))
	require.NoError(t, runCLI(t, "rename", "dst/a.txt", "b.txt"))
	require.NoError(t, runCLI(t, "check"))

	require.NoError(t, os.Remove(filepath.Join(dir, "dst", "b.txt")))
	require.NoError(t, runCLI(t, "delete", "dst/b.txt"))
	require.NoError(t, runCLI(t, "check"))

	// Untracked paths are user errors, not crashes.
	err := runCLI(t, "delete", "dst/ghost.txt")
	assert.Equal(t, exitcode.GeneralError, exitCodeOf(err))
}

func TestAddCommand(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, runCLI(t, "init"))
	require.NoError(t, runCLI(t, "update"))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "new", "deep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new", "deep", "f.txt"), []byte("x"), 0o644))

	err := runCLI(t, "add", "new/deep/f.txt")
	assert.Equal(t, exitcode.GeneralError, exitCodeOf(err))

	require.NoError(t, runCLI(t, "add", "--parents", "new/deep/f.txt"))
	require.NoError(t, runCLI(t, "check"))
}

func TestMetaCommands(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	ruleFile := "[fcman:fcmeta]\n\n[app-*]\npattern = app-(@).txt\nautoname = app\ntags = app\ndepends = missing:1.0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fcmeta.ini"), []byte(ruleFile), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app-1.0.txt"), []byte("x"), 0o644))

	require.NoError(t, runCLI(t, "init"))
	require.NoError(t, runCLI(t, "update"))
	require.NoError(t, runCLI(t, "updatemeta"))

	// The declared dependency has no provider.
	err := runCLI(t, "checkmeta")
	assert.Equal(t, exitcode.GeneralError, exitCodeOf(err))

	require.NoError(t, runCLI(t, "findtag", "app"))
	err = runCLI(t, "findtag", "nosuchtag")
	assert.Equal(t, exitcode.GeneralError, exitCodeOf(err))

	require.NoError(t, runCLI(t, "findpath", "/app-*"))
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, runCLI(t, "init"))
	require.NoError(t, runCLI(t, "update"))

	out := filepath.Join(dir, "exports")
	require.NoError(t, runCLI(t, "export", "--exportdir", out))
	assert.FileExists(t, filepath.Join(out, "md5sums.txt"))
	assert.FileExists(t, filepath.Join(out, "info.txt"))
}
