package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/fcman/pkg/exitcode"
	"github.com/fulmenhq/fcman/pkg/reconcile"
)

// checkCmd compares recorded metadata against the live tree without
// reading file contents.
var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Report drift between the manifest and the tree (metadata only)",
	Long: `Check compares the manifest against the live tree using names, sizes,
timestamps, and symlink targets. File contents are not read; use verify
for checksum comparison. Exits non-zero when any drift is found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd, args, false)
	},
}

// verifyCmd is check plus content checksums.
var verifyCmd = &cobra.Command{
	Use:   "verify [path]",
	Short: "Report drift including content checksum comparison",
	Long: `Verify performs the metadata checks of check and additionally recomputes
every file checksum. With --state, files verified on a previous run are
skipped and newly verified files are recorded, so an interrupted verify
can resume where it left off.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd, args, true)
	},
}

func init() {
	checkCmd.Flags().StringP("state", "s", "", "Path to a resumable verification state file")
	verifyCmd.Flags().StringP("state", "s", "", "Path to a resumable verification state file")
}

func runCheck(cmd *cobra.Command, args []string, deep bool) error {
	// The state path is anchored to the invocation directory, before
	// any --chdir takes effect.
	statePath := flagString(cmd.Flags(), "state")
	if statePath != "" {
		abs, err := filepath.Abs(statePath)
		if err != nil {
			return failf(exitcode.FileSystemError, fmt.Sprintf("resolving state path %s: %v", statePath, err))
		}
		statePath = abs
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	var state *reconcile.State
	if statePath != "" {
		if state, err = reconcile.LoadState(statePath); err != nil {
			return failf(exitcode.DataError, err.Error())
		}
	}

	node := a.coll.RootNode
	if len(args) == 1 {
		if node, err = a.resolveNode(args[0]); err != nil {
			return err
		}
	}

	checker := &reconcile.Checker{
		Deep:    deep,
		Opts:    a.opts,
		Mon:     a.mon,
		Rep:     a.writer,
		Matcher: a.matcher,
		State:   state,
	}
	ok, runErr := checker.Run(node)

	// Progress persists even when the walk was cancelled or failed, so
	// the next run resumes from what was verified.
	if err := state.Save(); err != nil {
		return failf(exitcode.FileSystemError, fmt.Sprintf("saving state: %v", err))
	}
	if runErr != nil {
		return failf(exitcode.FileSystemError, runErr.Error())
	}
	if !ok {
		return failCode(exitcode.GeneralError)
	}
	return nil
}
