package output

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/sdejongh/renamr/pkg/models"
)

// palette colours states and outcomes; every colour is switched off together
type palette struct {
	ok, fail, skip, emph *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		ok:   color.New(color.FgGreen),
		fail: color.New(color.FgRed),
		skip: color.New(color.FgYellow),
		emph: color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.ok, p.fail, p.skip, p.emph} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) state(s models.FileState) *color.Color {
	switch s {
	case models.StateRenamed, models.StatePrepared:
		return p.ok
	case models.StateError:
		return p.fail
	default:
		return p.skip
	}
}

func (p palette) status(s models.RenameStatus) *color.Color {
	switch s {
	case models.StatusSuccess:
		return p.ok
	case models.StatusPartial, models.StatusCancelled:
		return p.skip
	default:
		return p.fail
	}
}

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer       io.Writer
	totalEntries int
	startTime    time.Time
	colors       palette
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter(useColor bool) *HumanFormatter {
	return &HumanFormatter{colors: newPalette(useColor)}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, totalEntries int) error {
	f.writer = writer
	f.totalEntries = totalEntries
	f.startTime = time.Now()

	if writer != nil {
		fmt.Fprintf(writer, "Renaming %d files\n", totalEntries)
	}

	return nil
}

// Progress reports renamed and failed entries as they complete
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	if f.writer == nil {
		return nil
	}

	switch update.Type {
	case UpdateRenamed:
		fmt.Fprintf(f.writer, "  %s %s -> %s\n", f.colors.ok.Sprint("✓"), update.FilePath, update.NewName)
	case UpdateFailed:
		fmt.Fprintf(f.writer, "  %s %s: %v\n", f.colors.fail.Sprint("✗"), update.FilePath, update.Error)
	}

	return nil
}

// Complete finalizes output and displays summary
func (f *HumanFormatter) Complete(report *models.RenameReport) error {
	if f.writer == nil {
		f.writer = io.Discard
	}
	writeSummary(f.writer, report, f.colors)
	return nil
}

func writeSummary(w io.Writer, report *models.RenameReport, colors palette) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Rename completed in %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Files:          %d\n", report.Stats.Entries)
	fmt.Fprintf(w, "  To rename:      %d\n", report.Stats.Prepared)
	fmt.Fprintf(w, "  Renamed:        %d\n", report.Stats.Renamed)
	fmt.Fprintf(w, "  Unchanged:      %d\n", report.Stats.Skipped)
	fmt.Fprintf(w, "  Errors:         %d\n", report.Stats.Errored)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Status: %s\n", colors.status(report.Status).Sprint(report.Status))

	if len(report.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, err := range report.Errors {
			fmt.Fprintf(w, "  %s (%s): %s\n", err.FilePath, err.Phase, err.Error)
		}
	}
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	if f.writer != nil {
		fmt.Fprintf(f.writer, "%s %v\n", f.colors.fail.Sprint("Error:"), err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// formatDuration formats duration in human-readable format
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
