package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/sdejongh/renamr/pkg/models"
	"github.com/sdejongh/renamr/pkg/output"
	"github.com/sdejongh/renamr/pkg/rename"
	"github.com/sdejongh/renamr/pkg/storage"
)

// NewApplyCommand creates the apply command
func NewApplyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply PATH...",
		Short: "Rename files",
		Long: `Load the given files and directories, apply the rule to every file name
and rename every file whose name changes. Files are first moved to temporary
names and only then to their final names, so names may be swapped or shifted
within one batch.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runApply,
	}

	addRenameFlags(cmd)
	cmd.Flags().BoolVarP(&renameFlags.Yes, "yes", "y", false, "rename without asking for confirmation")
	cmd.Flags().StringVar(&renameFlags.Report, "report", "", "write rename report to file")
	cmd.Flags().StringVar(&renameFlags.ReportFormat, "report-format", "human", "rename report format: human, json, yaml")

	return cmd
}

// commitListener forwards commit notifications to a formatter. Events outside a
// commit belong to the preview and are dropped.
type commitListener struct {
	formatter  output.Formatter
	committing atomic.Bool
}

func (l *commitListener) listen(event rename.Event) {
	if !l.committing.Load() {
		return
	}

	switch event.Type {
	case rename.EventBatchProgress:
		l.formatter.Progress(output.ProgressUpdate{Type: output.UpdateProgress, Fraction: event.Progress})
	case rename.EventEntryChanged:
		switch event.Entry.State {
		case models.StateRenamed:
			l.formatter.Progress(output.ProgressUpdate{
				Type:     output.UpdateRenamed,
				FilePath: event.Entry.FullPath,
				NewName:  event.Entry.NewName,
			})
		case models.StateError:
			l.formatter.Progress(output.ProgressUpdate{
				Type:     output.UpdateFailed,
				FilePath: event.Entry.FullPath,
				Error:    errors.New(event.Entry.ErrorDetail),
			})
		}
	}
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

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

	operation, err := createRenameOperation(cfg, paths, false)
	if err != nil {
		return fmt.Errorf("failed to create rename operation: %w", err)
	}

	logger, err := createLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	out := cmd.OutOrStdout()
	formatter, err := output.NewFormatter(cfg.Output.Format, cfg.Output.Progress && output.IsTerminal(out), cfg.Output.Color)
	if err != nil {
		return err
	}
	listener := &commitListener{formatter: formatter}

	session, err := loadSession(ctx, cfg, backend, operation, logger, listener.listen)
	if err != nil {
		return err
	}
	defer session.Close()

	stats := session.Stats()
	if stats.Prepared == 0 {
		if !cfg.Output.Quiet {
			fmt.Fprintln(out, "Nothing to rename")
		}
		return nil
	}

	if !renameFlags.Yes {
		if err := output.WritePreview(out, session.Entries(), "human", cfg.Output.Color); err != nil {
			return err
		}
		if !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Rename %d files?", stats.Prepared)) {
			fmt.Fprintln(out, "Aborted")
			return nil
		}
	}

	formatterOut := out
	if cfg.Output.Quiet && formatter.Name() != "json" {
		formatterOut = io.Discard
	}
	if err := formatter.Start(formatterOut, stats.Prepared); err != nil {
		return err
	}

	listener.committing.Store(true)
	report, err := session.Commit(ctx)
	if err != nil {
		formatter.Error(err)
		return fmt.Errorf("rename failed: %w", err)
	}
	if err := session.Flush(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	listener.committing.Store(false)

	if err := formatter.Complete(report); err != nil {
		return err
	}

	if renameFlags.Report != "" {
		if err := output.WriteRenameReport(report, renameFlags.Report, renameFlags.ReportFormat); err != nil {
			return fmt.Errorf("failed to write rename report: %w", err)
		}
	}

	if code := report.Status.ExitCode(); code != 0 {
		return &ExitError{Status: report.Status}
	}
	return nil
}

// confirm asks a yes/no question; anything but y or yes is a no
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
