package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/fcman/pkg/exitcode"
)

// Structural edits operate on the manifest only; the live filesystem is
// not touched. The usual flow is to move or rename on disk first, then
// mirror the change here so check does not report drift.

var moveCmd = &cobra.Command{
	Use:   "move path parent",
	Short: "Move a tracked entry under a different tracked directory",
	Args:  cobra.ExactArgs(2),
	RunE:  runMove,
}

var renameCmd = &cobra.Command{
	Use:   "rename path name",
	Short: "Rename a tracked entry",
	Args:  cobra.ExactArgs(2),
	RunE:  runRename,
}

var deleteCmd = &cobra.Command{
	Use:   "delete path",
	Short: "Stop tracking an entry and its descendants",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runMove(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	node, err := a.resolveNode(args[0])
	if err != nil {
		return err
	}
	parent, err := a.resolveNode(args[1])
	if err != nil {
		return err
	}

	if err := node.Reparent(parent); err != nil {
		return failf(exitcode.GeneralError, fmt.Sprintf("moving %s: %v", args[0], err))
	}
	return a.save()
}

func runRename(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	node, err := a.resolveNode(args[0])
	if err != nil {
		return err
	}

	if err := node.Rename(args[1]); err != nil {
		return failf(exitcode.GeneralError, fmt.Sprintf("renaming %s: %v", args[0], err))
	}
	return a.save()
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	node, err := a.resolveNode(args[0])
	if err != nil {
		return err
	}

	if err := node.Delete(); err != nil {
		return failf(exitcode.GeneralError, fmt.Sprintf("deleting %s: %v", args[0], err))
	}
	return a.save()
}
