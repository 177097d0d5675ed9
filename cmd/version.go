package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/fcman/pkg/buildinfo"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().Bool("extended", false, "Show build and platform details")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "fcman %s\n", buildinfo.BinaryVersion)
	if extended {
		if mod := buildinfo.ModuleVersion(); mod != "" {
			fmt.Fprintf(out, "module:   %s\n", mod)
		}
		fmt.Fprintf(out, "go:       %s\n", runtime.Version())
		fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	}
	return nil
}
