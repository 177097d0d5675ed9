package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/fcman/pkg/collection"
	"github.com/fulmenhq/fcman/pkg/exitcode"
)

// initCmd creates an empty manifest in the working directory.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new empty collection manifest",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return failf(exitcode.FileSystemError, fmt.Sprintf("resolving working directory: %v", err))
	}

	path := a.cfg.ManifestName
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}
	if fileExists(path) {
		return failf(exitcode.GeneralError, fmt.Sprintf("manifest %s already exists", path))
	}

	coll := collection.New()
	coll.SetRoot(filepath.Dir(path))
	if err := coll.Save(path); err != nil {
		return failf(exitcode.FileSystemError, err.Error())
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	return nil
}
