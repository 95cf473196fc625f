package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/sdejongh/renamr/internal/platform"
	"github.com/sdejongh/renamr/pkg/config"
	"github.com/sdejongh/renamr/pkg/logging"
	"github.com/sdejongh/renamr/pkg/models"
	"github.com/sdejongh/renamr/pkg/rename"
	"github.com/sdejongh/renamr/pkg/storage"
)

// ExitError carries a non-zero exit code derived from a commit status
type ExitError struct {
	Status models.RenameStatus
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("rename %s", e.Status)
}

// Code returns the process exit code
func (e *ExitError) Code() int {
	return e.Status.ExitCode()
}

// resolvePaths checks the command-line paths against backend and returns them as
// absolute paths. Duplicates and paths nested under another argument are dropped since
// walking the outer directory already reaches them.
func resolvePaths(ctx context.Context, backend storage.Backend, paths []string) ([]string, error) {
	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		if err := platform.ValidatePath(p); err != nil {
			return nil, err
		}
		abs, err := backend.Abs(p)
		if err != nil {
			return nil, err
		}
		if _, err := backend.Stat(ctx, abs); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("path does not exist: %s", p)
			}
			return nil, fmt.Errorf("failed to access path: %w", err)
		}
		resolved = append(resolved, abs)
	}

	var kept []string
	for i, p := range resolved {
		covered := false
		for j, other := range resolved {
			if (i != j && platform.IsChildOf(p, other)) || (j < i && p == other) {
				covered = true
				break
			}
		}
		if !covered {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	return config.Load(globalFlags.ConfigFile)
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cfg *config.Config) error {
	if renameFlags.Pattern != "" {
		cfg.Rename.Pattern = renameFlags.Pattern
		cfg.Rename.Replacement = renameFlags.Replacement
	} else if renameFlags.Replacement != "" {
		cfg.Rename.Replacement = renameFlags.Replacement
	}

	if renameFlags.RegexTimeout != "" {
		d, err := time.ParseDuration(renameFlags.RegexTimeout)
		if err != nil {
			return fmt.Errorf("invalid regex timeout: %w", err)
		}
		cfg.Rename.RegexTimeout = d
	}

	// Exclude patterns
	if len(renameFlags.Exclude) > 0 {
		cfg.Exclude = renameFlags.Exclude
	}

	// Output format
	if renameFlags.Output != "" {
		cfg.Output.Format = renameFlags.Output
	}

	// Logging
	if renameFlags.LogFile != "" {
		cfg.Logging.File = renameFlags.LogFile
		cfg.Logging.Enabled = true
	}
	if renameFlags.LogFormat != "" {
		cfg.Logging.Format = renameFlags.LogFormat
	}
	if renameFlags.LogLevel != "" {
		cfg.Logging.Level = renameFlags.LogLevel
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	if globalFlags.NoColor || color.NoColor {
		cfg.Output.Color = false
	}

	return cfg.Validate()
}

// createRenameOperation creates a rename operation from configuration
func createRenameOperation(cfg *config.Config, paths []string, dryRun bool) (*models.RenameOperation, error) {
	operation := &models.RenameOperation{
		ID:              uuid.New().String(),
		Paths:           paths,
		Pattern:         cfg.Rename.Pattern,
		Replacement:     cfg.Rename.Replacement,
		ExcludePatterns: cfg.Exclude,
		RegexTimeout:    cfg.Rename.RegexTimeout,
		DryRun:          dryRun,
		CreatedAt:       time.Now(),
	}

	if err := operation.Validate(); err != nil {
		return nil, err
	}

	return operation, nil
}

// createLogger builds the file logger from configuration and, with --verbose, a
// console logger on stderr
func createLogger(cfg *config.Config, stderr io.Writer) (logging.Logger, error) {
	var loggers []logging.Logger

	if cfg.Logging.Enabled && cfg.Logging.File != "" {
		format := logging.FormatText
		if cfg.Logging.Format == "json" {
			format = logging.FormatJSON
		}

		fileLogger, err := logging.NewFileLogger(logging.FileLoggerConfig{
			Path:       cfg.Logging.File,
			Format:     format,
			Level:      logging.ParseLevel(cfg.Logging.Level),
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
		})
		if err != nil {
			return nil, err
		}
		loggers = append(loggers, fileLogger)
	}

	if globalFlags.Verbose {
		loggers = append(loggers, logging.NewConsoleLogger(stderr, logging.DebugLevel, !cfg.Output.Color))
	}

	return logging.NewMultiLogger(loggers...), nil
}

// loadSession ingests the operation's paths and waits for the preview of its rule
func loadSession(ctx context.Context, cfg *config.Config, backend storage.Backend, op *models.RenameOperation, logger logging.Logger, listener rename.Listener) (*rename.Session, error) {
	session := rename.NewSession(rename.Options{
		Backend:         backend,
		Logger:          logger,
		Listener:        listener,
		RegexTimeout:    op.RegexTimeout,
		PreviewDebounce: cfg.Rename.PreviewDebounce,
		Exclude:         op.ExcludePatterns,
	})

	if err := session.SetPattern(op.Pattern, op.Replacement); err != nil {
		session.Close()
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	for _, p := range op.Paths {
		if err := session.AddPath(p); err != nil {
			session.Close()
			return nil, fmt.Errorf("failed to add path: %w", err)
		}
	}

	if err := session.WaitIngest(ctx); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to load files: %w", err)
	}
	if err := session.WaitPreview(ctx); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to compute preview: %w", err)
	}

	logger.Info(ctx, "files loaded", logging.Fields{
		"operation_id": op.ID,
		"entries":      session.Len(),
		"pattern":      op.Pattern,
	})

	return session, nil
}
