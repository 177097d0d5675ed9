package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/fcman/pkg/buildinfo"
	"github.com/fulmenhq/fcman/pkg/exitcode"
	"github.com/fulmenhq/fcman/pkg/logger"
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fcman",
		Short: "File collection manager and integrity tracker",
		Long: `Fcman tracks a directory tree of files against an XML manifest:
sizes, timestamps, checksums, and symlink targets, plus a metadata layer
of packages, dependencies, tags, and descriptions driven by rule files.

Examples:
   fcman init        # Create a manifest in the current directory
   fcman update      # Record the current state of the tree
   fcman check       # Report drift against the manifest (metadata only)
   fcman verify      # Report drift including content checksums
   fcman checkmeta   # Check declared dependencies against provides`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	cmd.PersistentFlags().StringP("chdir", "C", "", "Change to this directory before doing anything")
	cmd.PersistentFlags().String("file", "", "Manifest file name or path (default fcman.xml)")
	cmd.PersistentFlags().StringP("root", "r", "", "Override the collection root directory")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Report progress while walking the tree")
	cmd.PersistentFlags().BoolP("walk", "w", false, "Search parent directories for the manifest")
	cmd.PersistentFlags().BoolP("no-recurse", "x", false, "Do not descend into subdirectories")
	cmd.PersistentFlags().IntP("backup", "b", -1, "Number of manifest backups to keep (0-9)")
	cmd.PersistentFlags().StringP("exportdir", "e", "", "Directory for exported and backup files")
	cmd.PersistentFlags().String("log-level", "info", "Set log level (debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("fcman {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
// This is called from init() for production and can be called explicitly in tests.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(initCmd)
	cmd.AddCommand(checkCmd)
	cmd.AddCommand(verifyCmd)
	cmd.AddCommand(updateCmd)
	cmd.AddCommand(addCmd)
	cmd.AddCommand(moveCmd)
	cmd.AddCommand(renameCmd)
	cmd.AddCommand(deleteCmd)
	cmd.AddCommand(updatemetaCmd)
	cmd.AddCommand(checkmetaCmd)
	cmd.AddCommand(exportCmd)
	cmd.AddCommand(findtagCmd)
	cmd.AddCommand(finddescCmd)
	cmd.AddCommand(findpathCmd)
	cmd.AddCommand(versionCmd)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// exitErr carries a specific process exit code out of a command. An
// empty message means the status lines already told the story.
type exitErr struct {
	code int
	msg  string
}

func (e exitErr) Error() string { return e.msg }

// failCode exits with the given code without an extra diagnostic.
func failCode(code int) error { return exitErr{code: code} }

// failf exits with the given code after logging a diagnostic.
func failf(code int, msg string) error { return exitErr{code: code, msg: msg} }

// Execute runs the root command and maps the result onto the exit code
// contract: zero on success, non-zero when the operation's boolean
// result was false or the manifest could not be used.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		os.Exit(exitcode.Success)
	}

	var coded exitErr
	if errors.As(err, &coded) {
		if coded.msg != "" {
			logger.Error(coded.msg)
		}
		os.Exit(coded.code)
	}

	logger.Error("Command execution failed", logger.Err(err))
	os.Exit(exitcode.GeneralError)
}

func init() {
	// Register all subcommands with the production rootCmd
	registerSubcommands(rootCmd)
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	logger.Initialize(logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "fcman",
	})
}
