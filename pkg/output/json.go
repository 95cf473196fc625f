package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/renamr/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct {
	writer       io.Writer
	totalEntries int
	startTime    time.Time
	events       []JSONEvent
}

// JSONEvent represents a single event recorded during a commit
type JSONEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
}

// JSONStartData represents the data for a start event
type JSONStartData struct {
	TotalEntries int `json:"total_entries"`
}

// JSONFileData represents file-related event data
type JSONFileData struct {
	Path    string `json:"path"`
	NewName string `json:"new_name,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSONReportData represents the final report data
type JSONReportData struct {
	OperationID string           `json:"operation_id" yaml:"operation_id"`
	Status      string           `json:"status" yaml:"status"`
	Pattern     string           `json:"pattern" yaml:"pattern"`
	Replacement string           `json:"replacement" yaml:"replacement"`
	DryRun      bool             `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Duration    string           `json:"duration" yaml:"duration"`
	DurationMs  int64            `json:"duration_ms" yaml:"duration_ms"`
	Stats       JSONStatsData    `json:"stats" yaml:"stats"`
	Results     []JSONResultData `json:"results,omitempty" yaml:"results,omitempty"`
	Errors      []JSONErrorData  `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// JSONStatsData represents statistics in JSON format
type JSONStatsData struct {
	Entries  int `json:"entries" yaml:"entries"`
	Prepared int `json:"prepared" yaml:"prepared"`
	Staged   int `json:"staged" yaml:"staged"`
	Renamed  int `json:"renamed" yaml:"renamed"`
	Errored  int `json:"errored" yaml:"errored"`
	Skipped  int `json:"skipped" yaml:"skipped"`
}

// JSONResultData represents the final state of one entry
type JSONResultData struct {
	Path    string `json:"path" yaml:"path"`
	OldName string `json:"old_name" yaml:"old_name"`
	NewName string `json:"new_name" yaml:"new_name"`
	State   string `json:"state" yaml:"state"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// JSONErrorData represents an error entry
type JSONErrorData struct {
	Path  string `json:"path" yaml:"path"`
	Phase string `json:"phase,omitempty" yaml:"phase,omitempty"`
	Error string `json:"error" yaml:"error"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{
		events: make([]JSONEvent, 0),
	}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, totalEntries int) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.totalEntries = totalEntries
	f.startTime = time.Now()

	f.events = append(f.events, JSONEvent{
		Timestamp: time.Now(),
		Type:      "start",
		Data:      JSONStartData{TotalEntries: totalEntries},
	})

	return nil
}

// Progress records renamed and failed entries. Nothing is written before Complete so
// the output stays a single JSON document.
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	switch update.Type {
	case UpdateRenamed:
		f.events = append(f.events, JSONEvent{
			Timestamp: time.Now(),
			Type:      update.Type,
			Data:      JSONFileData{Path: update.FilePath, NewName: update.NewName},
		})
	case UpdateFailed:
		data := JSONFileData{Path: update.FilePath}
		if update.Error != nil {
			data.Error = update.Error.Error()
		}
		f.events = append(f.events, JSONEvent{
			Timestamp: time.Now(),
			Type:      update.Type,
			Data:      data,
		})
	}
	return nil
}

// Events returns the events recorded so far
func (f *JSONFormatter) Events() []JSONEvent {
	return f.events
}

// Complete finalizes output and displays summary as JSON
func (f *JSONFormatter) Complete(report *models.RenameReport) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	reportData := newJSONReportData(report)

	f.events = append(f.events, JSONEvent{
		Timestamp: time.Now(),
		Type:      "complete",
		Data:      reportData,
	})

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")

	// Output the final report directly (not wrapped in events)
	return encoder.Encode(reportData)
}

func newJSONReportData(report *models.RenameReport) JSONReportData {
	var errors []JSONErrorData
	for _, err := range report.Errors {
		errors = append(errors, JSONErrorData{
			Path:  err.FilePath,
			Phase: err.Phase,
			Error: err.Error,
		})
	}

	var results []JSONResultData
	for _, view := range report.Results {
		results = append(results, JSONResultData{
			Path:    view.FullPath,
			OldName: view.OldName,
			NewName: view.NewName,
			State:   string(view.State),
			Error:   view.ErrorDetail,
		})
	}

	return JSONReportData{
		OperationID: report.OperationID,
		Status:      string(report.Status),
		Pattern:     report.Pattern,
		Replacement: report.Replacement,
		DryRun:      report.DryRun,
		Duration:    report.Duration.Round(time.Millisecond).String(),
		DurationMs:  report.Duration.Milliseconds(),
		Stats: JSONStatsData{
			Entries:  report.Stats.Entries,
			Prepared: report.Stats.Prepared,
			Staged:   report.Stats.Staged,
			Renamed:  report.Stats.Renamed,
			Errored:  report.Stats.Errored,
			Skipped:  report.Stats.Skipped,
		},
		Results: results,
		Errors:  errors,
	}
}

// Error reports an error
func (f *JSONFormatter) Error(err error) error {
	f.events = append(f.events, JSONEvent{
		Timestamp: time.Now(),
		Type:      "error",
		Data: map[string]string{
			"error": err.Error(),
		},
	})
	return nil
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
