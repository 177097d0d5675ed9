package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/fcman/pkg/exitcode"
	"github.com/fulmenhq/fcman/pkg/reconcile"
)

// addCmd starts tracking a single path.
var addCmd = &cobra.Command{
	Use:   "add path",
	Short: "Start tracking one file, symlink, or directory",
	Long: `Add inserts the given path into the manifest and records its current
state. Intermediate directories must already be tracked unless
--parents is given, and every traversed directory must still exist on
disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().BoolP("parents", "p", false, "Create untracked intermediate directory entries")
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	segments, err := a.resolveSegments(args[0])
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return failf(exitcode.GeneralError, "the collection root is already tracked")
	}
	createParents, _ := cmd.Flags().GetBool("parents")

	updater := &reconcile.Updater{
		Opts:    a.opts,
		Mon:     a.mon,
		Rep:     a.writer,
		Matcher: a.matcher,
	}
	if _, err := updater.AddPath(a.coll, segments, createParents); err != nil {
		return failf(exitcode.GeneralError, fmt.Sprintf("adding %s: %v", args[0], err))
	}

	return a.save()
}
