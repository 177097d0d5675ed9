package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fulmenhq/fcman/pkg/exitcode"
	"github.com/fulmenhq/fcman/pkg/logger"
	"github.com/fulmenhq/fcman/pkg/reconcile"
)

// updateCmd synchronizes the manifest with the live tree.
var updateCmd = &cobra.Command{
	Use:   "update [path]",
	Short: "Synchronize the manifest with the live tree",
	Long: `Update removes tracked entries that are gone or now ignored, adds new
entries, and refreshes sizes, timestamps, checksums, and symlink
targets. Checksums are recomputed only for files whose metadata says
they may have changed; use --force to recompute every checksum.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().BoolP("force", "f", false, "Recompute checksums even for apparently unchanged files")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	node := a.coll.RootNode
	if len(args) == 1 {
		if node, err = a.resolveNode(args[0]); err != nil {
			return err
		}
	}
	force, _ := cmd.Flags().GetBool("force")

	updater := &reconcile.Updater{
		Force:   force,
		Opts:    a.opts,
		Mon:     a.mon,
		Rep:     a.writer,
		Matcher: a.matcher,
	}
	if err := updater.Run(node); err != nil {
		return failf(exitcode.FileSystemError, err.Error())
	}
	logger.Debug("update finished", logger.Int("checksums", updater.Checksums))

	return a.save()
}
