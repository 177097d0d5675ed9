package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fulmenhq/fcman/pkg/exitcode"
	"github.com/fulmenhq/fcman/pkg/logger"
	"github.com/fulmenhq/fcman/pkg/meta"
)

// updatemetaCmd rebuilds node metadata from the rule files found in the
// tree and saves the result.
var updatemetaCmd = &cobra.Command{
	Use:   "updatemeta",
	Short: "Rebuild node metadata from fcmeta.ini rule files",
	Long: `Updatemeta scans the tracked tree for fcmeta.ini rule files, clears all
node metadata, and re-applies every rule. Exits non-zero when any rule
file or pattern was bad; rules that match nothing are reported as
unused but do not fail the command.`,
	Args: cobra.NoArgs,
	RunE: runUpdateMeta,
}

// checkmetaCmd verifies declared dependencies against provides.
var checkmetaCmd = &cobra.Command{
	Use:   "checkmeta",
	Short: "Check declared dependencies against provided packages",
	Args:  cobra.NoArgs,
	RunE:  runCheckMeta,
}

func runUpdateMeta(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	rules, loadOK := meta.LoadRules(a.coll, a.writer)
	applyOK := meta.Apply(a.coll, rules, a.writer)
	meta.ReportUnused(rules, a.writer)
	logger.Debug("metadata rules applied", logger.Int("rules", len(rules)))

	// The whole metadata map was rebuilt; persist it regardless of
	// whether individual rules misfired.
	a.coll.Dirty = true
	if err := a.save(); err != nil {
		return err
	}

	if !loadOK || !applyOK {
		return failCode(exitcode.GeneralError)
	}
	return nil
}

func runCheckMeta(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	if !meta.CheckDeps(a.coll, a.writer) {
		return failCode(exitcode.GeneralError)
	}
	return nil
}
