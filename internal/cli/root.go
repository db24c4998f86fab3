package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand assembles the filescout command tree
func NewRootCommand() *cobra.Command {
	globalFlags = GlobalFlags{}

	rootCmd := &cobra.Command{
		Use:   "filescout",
		Short: "Cross-platform file search utility",
		Long: `filescout searches directory trees by name mask, content, size, date and
attributes, finds duplicate files, and refines earlier results.

Exit status is 0 when a search completes, 1 when it is interrupted and 2
when it fails.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", moduleVersion(), Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(NewFindCommand())
	rootCmd.AddCommand(NewDupesCommand())
	rootCmd.AddCommand(NewIgnoreCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
