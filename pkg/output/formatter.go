package output

import (
	"fmt"
	"io"

	"github.com/sdejongh/renamr/pkg/models"
)

// Progress update types
const (
	UpdateProgress = "progress"
	UpdateRenamed  = "entry_renamed"
	UpdateFailed   = "entry_failed"
)

// ProgressUpdate represents a progress notification during a commit
type ProgressUpdate struct {
	Type     string // UpdateProgress, UpdateRenamed or UpdateFailed
	FilePath string
	NewName  string
	Fraction float64 // overall completion in [0, 1]
	Error    error
}

// Formatter defines the interface for output formatting
// Implementations include human-readable, JSON and progress bar formatters
type Formatter interface {
	// Start initializes the formatter for a commit over totalEntries prepared entries
	Start(writer io.Writer, totalEntries int) error

	// Progress reports progress during the commit
	Progress(update ProgressUpdate) error

	// Complete finalizes output and displays summary
	Complete(report *models.RenameReport) error

	// Error reports an error during the commit
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// NewFormatter returns the formatter for format. progress selects the progress bar
// variant of the human output.
func NewFormatter(format string, progress, useColor bool) (Formatter, error) {
	switch format {
	case "human", "":
		if progress {
			return NewProgressFormatter(useColor), nil
		}
		return NewHumanFormatter(useColor), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}
