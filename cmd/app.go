package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fulmenhq/fcman/internal/status"
	"github.com/fulmenhq/fcman/pkg/collection"
	"github.com/fulmenhq/fcman/pkg/config"
	"github.com/fulmenhq/fcman/pkg/exitcode"
	"github.com/fulmenhq/fcman/pkg/ignore"
	"github.com/fulmenhq/fcman/pkg/logger"
	"github.com/fulmenhq/fcman/pkg/reconcile"
	"github.com/fulmenhq/fcman/pkg/safeio"
)

// app carries the per-invocation state shared by every subcommand:
// resolved configuration, the loaded collection, and the walk
// machinery.
type app struct {
	cfg          config.Config
	coll         *collection.Collection
	manifestPath string
	writer       *status.Writer
	mon          *reconcile.Monitor
	matcher      *ignore.Matcher
	opts         reconcile.Options
}

func flagString(flags *pflag.FlagSet, name string) string {
	v, _ := flags.GetString(name)
	return v
}

// newApp resolves configuration and global flags. It does not touch the
// manifest; init uses it before one exists.
func newApp(cmd *cobra.Command) (*app, error) {
	if chdir := flagString(cmd.Flags(), "chdir"); chdir != "" {
		if err := os.Chdir(chdir); err != nil {
			return nil, failf(exitcode.FileSystemError, fmt.Sprintf("changing directory to %s: %v", chdir, err))
		}
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, failf(exitcode.FileSystemError, fmt.Sprintf("resolving working directory: %v", err))
	}

	cfg, err := config.Load(workDir)
	if err != nil {
		return nil, failf(exitcode.ConfigError, err.Error())
	}

	if backups, _ := cmd.Flags().GetInt("backup"); backups >= 0 {
		if backups > 9 {
			return nil, failf(exitcode.ConfigError, "backup count must be between 0 and 9")
		}
		cfg.Backups = backups
	}
	if exportDir := flagString(cmd.Flags(), "exportdir"); exportDir != "" {
		cfg.ExportDir = exportDir
	}
	if file := flagString(cmd.Flags(), "file"); file != "" {
		cfg.ManifestName = file
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	noRecurse, _ := cmd.Flags().GetBool("no-recurse")

	a := &app{
		cfg:    cfg,
		writer: status.NewWriter(),
		mon:    reconcile.NewMonitor(verbose),
		opts: reconcile.Options{
			Recurse:    !noRecurse,
			Tolerance:  cfg.ToleranceSeconds,
			BufferSize: cfg.ChecksumBufferBytes(),
		},
	}
	installSignalHandlers(a.mon)
	return a, nil
}

// openApp resolves configuration and loads the manifest. This is the
// entry point for every command that operates on an existing
// collection.
func openApp(cmd *cobra.Command) (*app, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, err
	}

	walk, _ := cmd.Flags().GetBool("walk")
	path, err := findManifest(a.cfg.ManifestName, walk)
	if err != nil {
		return nil, failf(exitcode.DataError, err.Error())
	}
	a.manifestPath = path

	coll, err := collection.Load(path)
	if err != nil {
		return nil, failf(exitcode.DataError, err.Error())
	}
	a.coll = coll

	if root := flagString(cmd.Flags(), "root"); root != "" {
		coll.SetRoot(root)
	} else {
		coll.SetRoot(filepath.Join(filepath.Dir(path), coll.AutoRoot))
	}
	if filepath.Dir(path) == coll.Root {
		coll.AutoFile = filepath.Base(path)
	}

	matcher, err := ignore.NewMatcher(coll.Root)
	if err != nil {
		return nil, failf(exitcode.FileSystemError, fmt.Sprintf("loading ignore files: %v", err))
	}
	a.matcher = matcher

	logger.Debug("manifest loaded",
		logger.String("path", path),
		logger.String("root", coll.Root))
	return a, nil
}

// findManifest locates the manifest file. A name containing a path
// separator is used as given; a bare name is looked up in the working
// directory and, when walking is enabled, in each parent directory up
// to the filesystem root.
func findManifest(name string, walk bool) (string, error) {
	if filepath.IsAbs(name) || strings.ContainsRune(name, '/') || strings.ContainsRune(name, os.PathSeparator) {
		abs, err := filepath.Abs(name)
		if err != nil {
			return "", fmt.Errorf("resolving manifest path %s: %w", name, err)
		}
		if !fileExists(abs) {
			return "", fmt.Errorf("manifest %s not found", abs)
		}
		return abs, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, name)
		if fileExists(candidate) {
			return candidate, nil
		}
		if !walk {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("manifest %s not found (use --walk to search parent directories)", name)
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// save persists the manifest when anything changed, rotating backups
// first so the previous state survives a bad update.
func (a *app) save() error {
	if !a.coll.Dirty {
		return nil
	}

	backupDir := a.cfg.ExportDir
	if backupDir == "" {
		backupDir = filepath.Dir(a.manifestPath)
	}
	if err := safeio.RotateBackups(a.manifestPath, backupDir, a.cfg.Backups); err != nil {
		return failf(exitcode.FileSystemError, fmt.Sprintf("rotating manifest backups: %v", err))
	}

	if err := a.coll.Save(a.manifestPath); err != nil {
		return failf(exitcode.FileSystemError, err.Error())
	}
	a.coll.Dirty = false
	logger.Debug("manifest saved", logger.String("path", a.manifestPath))
	return nil
}

// exportDir returns where export artifacts go: the explicit override or
// the manifest's own directory.
func (a *app) exportDir() string {
	if a.cfg.ExportDir != "" {
		return a.cfg.ExportDir
	}
	return filepath.Dir(a.manifestPath)
}

// resolveNode maps a command-line path argument to a tracked node. An
// empty argument selects the root. Paths are interpreted relative to
// the working directory and must stay inside the collection.
func (a *app) resolveNode(arg string) (*collection.Node, error) {
	segments, err := a.resolveSegments(arg)
	if err != nil {
		return nil, err
	}
	node := a.coll.FindNode(segments)
	if node == nil {
		return nil, failf(exitcode.GeneralError, fmt.Sprintf("path %s is not tracked", arg))
	}
	return node, nil
}

// resolveSegments normalizes a path argument against the collection
// root without requiring the node to exist.
func (a *app) resolveSegments(arg string) ([]string, error) {
	if arg == "" {
		return nil, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return nil, failf(exitcode.GeneralError, fmt.Sprintf("resolving path %s: %v", arg, err))
	}
	segments := a.coll.Normalize(abs)
	if segments == nil {
		return nil, failf(exitcode.GeneralError, fmt.Sprintf("path %s lies outside the collection root", arg))
	}
	return segments, nil
}
