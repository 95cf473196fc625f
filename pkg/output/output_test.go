package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/sdejongh/renamr/pkg/models"
)

func sampleReport() *models.RenameReport {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.RenameReport{
		OperationID: "op-1",
		Pattern:     `(\d+)`,
		Replacement: "n$1",
		StartTime:   start,
		EndTime:     start.Add(1500 * time.Millisecond),
		Duration:    1500 * time.Millisecond,
		Stats: models.Statistics{
			Entries:  3,
			Prepared: 2,
			Staged:   2,
			Renamed:  1,
			Errored:  1,
			Skipped:  1,
		},
		Results: []models.EntryView{
			{FullPath: "/data/1.txt", Directory: "/data/", OldName: "1.txt", NewName: "n1.txt", State: models.StateRenamed},
			{FullPath: "/data/2.txt", Directory: "/data/", OldName: "2.txt", NewName: "(rename failed)", State: models.StateError, ErrorDetail: "permission denied"},
			{FullPath: "/data/x.txt", Directory: "/data/", OldName: "x.txt", NewName: "(no match)", State: models.StateLoaded},
		},
		Errors: []models.RenameError{
			{FilePath: "/data/2.txt", Phase: "commit", Error: "permission denied", Timestamp: start},
		},
		Status: models.StatusPartial,
	}
}

// ============== Formatter Tests ==============

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format   string
		progress bool
		want     string
		wantErr  bool
	}{
		{"human", false, "human", false},
		{"", false, "human", false},
		{"human", true, "progress", false},
		{"json", true, "json", false},
		{"xml", false, "", true},
	}

	for _, tt := range tests {
		f, err := NewFormatter(tt.format, tt.progress, false)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewFormatter(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			continue
		}
		if err == nil && f.Name() != tt.want {
			t.Errorf("NewFormatter(%q, %v).Name() = %s, want %s", tt.format, tt.progress, f.Name(), tt.want)
		}
	}
}

func TestHumanFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewHumanFormatter(false)

	if err := f.Start(&buf, 2); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	f.Progress(ProgressUpdate{Type: UpdateProgress, Fraction: 0.5})
	f.Progress(ProgressUpdate{Type: UpdateRenamed, FilePath: "/data/1.txt", NewName: "n1.txt"})
	f.Progress(ProgressUpdate{Type: UpdateFailed, FilePath: "/data/2.txt", Error: errors.New("permission denied")})
	if err := f.Complete(sampleReport()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Renaming 2 files",
		"/data/1.txt -> n1.txt",
		"/data/2.txt: permission denied",
		"Renamed:        1",
		"Status: partial",
		"/data/2.txt (commit): permission denied",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("output contains colour codes with colour disabled")
	}
}

func TestHumanFormatter_Color(t *testing.T) {
	var buf bytes.Buffer
	f := NewHumanFormatter(true)
	f.Start(&buf, 1)
	f.Complete(sampleReport())

	if !strings.Contains(buf.String(), "\x1b[") {
		t.Error("expected colour codes with colour enabled")
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter()
	f.Start(&buf, 2)
	f.Progress(ProgressUpdate{Type: UpdateProgress, Fraction: 0.5})
	f.Progress(ProgressUpdate{Type: UpdateRenamed, FilePath: "/data/1.txt", NewName: "n1.txt"})
	f.Progress(ProgressUpdate{Type: UpdateFailed, FilePath: "/data/2.txt", Error: errors.New("denied")})

	if buf.Len() != 0 {
		t.Fatal("JSON formatter wrote before Complete")
	}
	if err := f.Complete(sampleReport()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	var data JSONReportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if data.Status != "partial" || data.Stats.Renamed != 1 || data.DurationMs != 1500 {
		t.Errorf("report = %+v", data)
	}
	if len(data.Results) != 3 || data.Results[1].Error != "permission denied" {
		t.Errorf("results = %+v", data.Results)
	}
	if len(data.Errors) != 1 || data.Errors[0].Phase != "commit" {
		t.Errorf("errors = %+v", data.Errors)
	}

	// start, renamed, failed, complete; progress is not recorded
	events := f.Events()
	if len(events) != 4 || events[1].Type != UpdateRenamed || events[2].Type != UpdateFailed {
		t.Errorf("events = %+v", events)
	}
}

func TestProgressFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewProgressFormatter(false)
	f.Start(&buf, 2)
	f.Progress(ProgressUpdate{Type: UpdateProgress, Fraction: 0.25})
	f.Progress(ProgressUpdate{Type: UpdateFailed, FilePath: "/data/2.txt", Error: errors.New("permission denied")})
	f.Error(errors.New("late warning"))
	f.Progress(ProgressUpdate{Type: UpdateProgress, Fraction: 1})

	if err := f.Complete(sampleReport()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Renaming 2 files", "100", "/data/2.txt: permission denied", "late warning", "Status: partial"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("IsTerminal(buffer) = true")
	}
}

// ============== Preview Tests ==============

func TestWritePreview_Human(t *testing.T) {
	rows := []models.EntryView{
		{FullPath: "/a/写真.jpg", Directory: "/a/", OldName: "写真.jpg", NewName: "photo.jpg", State: models.StatePrepared},
		{FullPath: "/a/b.jpg", Directory: "/a/", OldName: "b.jpg", NewName: "(no match)", State: models.StateLoaded},
		{FullPath: "/c/d.jpg", Directory: "/c/", OldName: "d.jpg", NewName: "e.jpg", State: models.StatePrepared},
	}

	var buf bytes.Buffer
	if err := WritePreview(&buf, rows, "human", false); err != nil {
		t.Fatalf("WritePreview() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "/a/\n") || !strings.Contains(out, "/c/\n") {
		t.Errorf("missing directory headers:\n%s", out)
	}
	if !strings.Contains(out, "3 files, 2 to rename, 1 unchanged") {
		t.Errorf("missing footer:\n%s", out)
	}

	// the new name column starts at the same cell on every row
	var columns []int
	for _, line := range strings.Split(out, "\n") {
		for _, name := range []string{"photo.jpg", "(no match)", "e.jpg", "NEW NAME"} {
			if i := strings.Index(line, name); i >= 0 {
				columns = append(columns, runewidth.StringWidth(line[:i]))
			}
		}
	}
	if len(columns) != 5 {
		t.Fatalf("found %d name cells, want 5:\n%s", len(columns), out)
	}
	if columns[0] != columns[1] || columns[0] != columns[2] {
		t.Errorf("columns misaligned in /a/: %v\n%s", columns, out)
	}
}

func TestWritePreview_Truncate(t *testing.T) {
	long := strings.Repeat("x", maxColumnWidth+20) + ".txt"
	rows := []models.EntryView{
		{FullPath: "/a/" + long, Directory: "/a/", OldName: long, NewName: "short.txt", State: models.StatePrepared},
	}

	var buf bytes.Buffer
	WritePreview(&buf, rows, "human", false)

	if strings.Contains(buf.String(), long) {
		t.Error("long name was not truncated")
	}
	if !strings.Contains(buf.String(), "…") {
		t.Error("truncated name has no ellipsis")
	}
}

func TestWritePreview_JSON(t *testing.T) {
	rows := []models.EntryView{
		{FullPath: "/a/1.txt", Directory: "/a/", OldName: "1.txt", NewName: "one.txt", State: models.StatePrepared},
		{FullPath: "/a/x.txt", Directory: "/a/", OldName: "x.txt", NewName: "(no match)", State: models.StateLoaded},
	}

	var buf bytes.Buffer
	if err := WritePreview(&buf, rows, "json", false); err != nil {
		t.Fatalf("WritePreview() error = %v", err)
	}

	var data JSONPreviewData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if data.Total != 2 || data.Prepared != 1 || data.Unchanged != 1 || data.Entries[0].NewName != "one.txt" {
		t.Errorf("preview = %+v", data)
	}
}

func TestWritePreview_Empty(t *testing.T) {
	var buf bytes.Buffer
	WritePreview(&buf, nil, "human", false)
	if !strings.Contains(buf.String(), "No files loaded") {
		t.Errorf("output = %q", buf.String())
	}

	if err := WritePreview(&buf, nil, "csv", false); err == nil {
		t.Error("expected error for unknown format")
	}
}

// ============== Report Tests ==============

func TestWriteRenameReport_Human(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	if err := WriteRenameReport(sampleReport(), path, "human"); err != nil {
		t.Fatalf("WriteRenameReport() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{
		"Status:      partial",
		"Failed (1):\n  /data/2.txt: permission denied",
		"Renamed (1):\n  /data/1.txt -> n1.txt",
		"Unchanged (1):\n  /data/x.txt ((no match))",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Not attempted") {
		t.Error("empty section was written")
	}
}

func TestWriteRenameReport_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := WriteRenameReport(sampleReport(), path, "json"); err != nil {
		t.Fatalf("WriteRenameReport() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	var report JSONReportData
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if report.OperationID != "op-1" || report.Pattern != `(\d+)` {
		t.Errorf("report = %+v", report)
	}
}

func TestWriteRenameReportTo_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRenameReportTo(&buf, sampleReport(), "yaml"); err != nil {
		t.Fatalf("WriteRenameReportTo() error = %v", err)
	}

	var report JSONReportData
	if err := yaml.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("report is not YAML: %v", err)
	}
	if report.Status != "partial" || report.Stats.Skipped != 1 || len(report.Results) != 3 {
		t.Errorf("report = %+v", report)
	}
	if !strings.Contains(buf.String(), "operation_id: op-1") {
		t.Errorf("unexpected keys:\n%s", buf.String())
	}
}

func TestWriteRenameReport_Errors(t *testing.T) {
	if err := WriteRenameReport(sampleReport(), filepath.Join(t.TempDir(), "r.txt"), "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
	if err := WriteRenameReport(sampleReport(), filepath.Join(t.TempDir(), "missing", "r.txt"), "json"); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{42 * time.Second, "42s"},
		{3*time.Minute + 5*time.Second, "3m5s"},
		{2*time.Hour + 7*time.Minute, "2h7m"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %s, want %s", tt.d, got, tt.want)
		}
	}
}
