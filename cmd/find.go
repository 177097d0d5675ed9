package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fulmenhq/fcman/pkg/exitcode"
	"github.com/fulmenhq/fcman/pkg/meta"
)

var findtagCmd = &cobra.Command{
	Use:   "findtag tag...",
	Short: "List tracked entries carrying any (or all) of the given tags",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFindTag,
}

var finddescCmd = &cobra.Command{
	Use:   "finddesc text...",
	Short: "List tracked entries whose descriptions contain the given text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFindDesc,
}

var findpathCmd = &cobra.Command{
	Use:   "findpath pattern",
	Short: "List tracked entries whose path matches a glob or r:regex pattern",
	Args:  cobra.ExactArgs(1),
	RunE:  runFindPath,
}

func init() {
	findtagCmd.Flags().BoolP("all", "a", false, "Require every tag instead of any")
	finddescCmd.Flags().BoolP("all", "a", false, "Require every text instead of any")
	findpathCmd.Flags().BoolP("nocase", "c", false, "Match case-insensitively")
}

func runFindTag(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	matchAll, _ := cmd.Flags().GetBool("all")

	if !meta.FindTags(a.coll.RootNode, args, matchAll, a.writer) {
		return failCode(exitcode.GeneralError)
	}
	return nil
}

func runFindDesc(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	matchAll, _ := cmd.Flags().GetBool("all")

	if !meta.FindDescs(a.coll.RootNode, args, matchAll, a.writer) {
		return failCode(exitcode.GeneralError)
	}
	return nil
}

func runFindPath(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	noCase, _ := cmd.Flags().GetBool("nocase")

	found, err := meta.FindPath(a.coll.RootNode, args[0], noCase, a.writer)
	if err != nil {
		return failf(exitcode.GeneralError, err.Error())
	}
	if !found {
		return failCode(exitcode.GeneralError)
	}
	return nil
}
