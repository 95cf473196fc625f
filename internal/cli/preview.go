package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/renamr/pkg/output"
	"github.com/sdejongh/renamr/pkg/storage"
)

// NewPreviewCommand creates the preview command
func NewPreviewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview PATH...",
		Short: "Show new names without renaming (dry-run)",
		Long: `Load the given files and directories, apply the rule to every file name
and print the resulting names. No file is touched. This is equivalent to apply
without confirmation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runPreview,
	}

	addRenameFlags(cmd)

	return cmd
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	backend := storage.NewLocal()
	defer backend.Close()

	paths, err := resolvePaths(ctx, backend, args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlagsToConfig(cfg); err != nil {
		return err
	}

	operation, err := createRenameOperation(cfg, paths, true)
	if err != nil {
		return fmt.Errorf("failed to create rename operation: %w", err)
	}

	logger, err := createLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	session, err := loadSession(ctx, cfg, backend, operation, logger, nil)
	if err != nil {
		return err
	}
	defer session.Close()

	return output.WritePreview(cmd.OutOrStdout(), session.Entries(), cfg.Output.Format, cfg.Output.Color)
}
