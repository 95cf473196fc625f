package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the renamr command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "renamr",
		Short: "Batch file renaming with regular expressions",
		Long: `renamr renames batches of files by applying a regular expression and a
replacement to every file name. New names are previewed before anything is
touched, and renames run in two phases so names can be swapped or shifted
within one batch.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(NewPreviewCommand())
	rootCmd.AddCommand(NewApplyCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
