package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fulmenhq/fcman/internal/export"
	"github.com/fulmenhq/fcman/pkg/exitcode"
)

// exportCmd writes standalone artifacts derived from the manifest.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export checksum and metadata listings",
	Long: `Export writes md5sums.txt (usable with md5sum -c) and info.txt (a
metadata report) into the export directory, which defaults to the
manifest's directory. Files without a recorded checksum are reported
and left out of the listing; run update first to fill them in.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().Bool("summary", false, "Also write a YAML metadata summary")
}

func runExport(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	summary, _ := cmd.Flags().GetBool("summary")

	exporter := &export.Exporter{Dir: a.exportDir(), Rep: a.writer}
	if err := exporter.EnsureDir(); err != nil {
		return failf(exitcode.FileSystemError, err.Error())
	}

	ok, err := exporter.Checksums(a.coll)
	if err != nil {
		return failf(exitcode.FileSystemError, err.Error())
	}
	if err := exporter.Info(a.coll, summary); err != nil {
		return failf(exitcode.FileSystemError, err.Error())
	}

	if !ok {
		return failCode(exitcode.GeneralError)
	}
	return nil
}
