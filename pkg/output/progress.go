package output

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"

	"github.com/sdejongh/renamr/pkg/models"
)

// progressSteps is the resolution of the bar; fractions are scaled onto it
const progressSteps = 1000

const progressTemplate = `{{string . "prefix"}}{{bar . }} {{percent . }} {{etime . }}`

// getUpdateInterval returns the progress refresh interval based on OS
// Windows terminals have higher latency with ANSI sequences, so we use a longer interval
func getUpdateInterval() time.Duration {
	if runtime.GOOS == "windows" {
		return 300 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// terminalWidth returns the width of w, or 0 when w is not a terminal
func terminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return 0
	}
	return width
}

// ProgressFormatter renders a single progress bar during the commit and the human
// summary afterwards. Failures are held back until the bar is finished so they do not
// interleave with it.
type ProgressFormatter struct {
	mu           sync.Mutex
	writer       io.Writer
	totalEntries int
	bar          *pb.ProgressBar
	failures     []ProgressUpdate
	errors       []error
	colors       palette
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter(useColor bool) *ProgressFormatter {
	return &ProgressFormatter{colors: newPalette(useColor)}
}

// Start initializes the formatter
func (f *ProgressFormatter) Start(writer io.Writer, totalEntries int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.totalEntries = totalEntries
	f.failures = nil
	f.errors = nil

	bar := pb.New(progressSteps)
	bar.SetWriter(writer)
	bar.SetTemplateString(progressTemplate)
	bar.SetRefreshRate(getUpdateInterval())
	bar.Set("prefix", fmt.Sprintf("Renaming %d files ", totalEntries))
	if width := terminalWidth(writer); width > 0 {
		bar.SetMaxWidth(width)
	}
	f.bar = bar.Start()

	return nil
}

// Progress moves the bar and records failures
func (f *ProgressFormatter) Progress(update ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar == nil {
		return nil
	}

	switch update.Type {
	case UpdateProgress:
		f.bar.SetCurrent(int64(update.Fraction * progressSteps))
	case UpdateFailed:
		f.failures = append(f.failures, update)
	}

	return nil
}

// Complete finishes the bar and displays the summary
func (f *ProgressFormatter) Complete(report *models.RenameReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer == nil {
		f.writer = io.Discard
	}
	if f.bar != nil {
		f.bar.SetCurrent(progressSteps)
		f.bar.Finish()
		f.bar = nil
	}

	for _, err := range f.errors {
		fmt.Fprintf(f.writer, "%s %v\n", f.colors.fail.Sprint("Error:"), err)
	}
	for _, failure := range f.failures {
		fmt.Fprintf(f.writer, "%s %s: %v\n", f.colors.fail.Sprint("✗"), failure.FilePath, failure.Error)
	}
	writeSummary(f.writer, report, f.colors)
	return nil
}

// Error reports an error
func (f *ProgressFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar != nil {
		f.errors = append(f.errors, err)
		return nil
	}
	if f.writer != nil {
		fmt.Fprintf(f.writer, "%s %v\n", f.colors.fail.Sprint("Error:"), err)
	}
	return nil
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}
