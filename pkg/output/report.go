package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sdejongh/renamr/pkg/models"
)

// WriteRenameReport writes the per-entry outcome of a commit to a file, or to stdout
// when filepath is empty
func WriteRenameReport(report *models.RenameReport, filepath string, format string) error {
	if filepath == "" {
		return WriteRenameReportTo(os.Stdout, report, format)
	}

	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	return WriteRenameReportTo(file, report, format)
}

// WriteRenameReportTo writes the report in format: human, json or yaml
func WriteRenameReportTo(w io.Writer, report *models.RenameReport, format string) error {
	var err error
	switch format {
	case "json":
		err = writeReportJSON(w, report)
	case "yaml":
		err = writeReportYAML(w, report)
	case "human", "":
		err = writeReportHuman(w, report)
	default:
		return fmt.Errorf("unknown report format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func writeReportJSON(w io.Writer, report *models.RenameReport) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newJSONReportData(report))
}

func writeReportYAML(w io.Writer, report *models.RenameReport) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(newJSONReportData(report)); err != nil {
		return err
	}
	return encoder.Close()
}

func writeReportHuman(w io.Writer, report *models.RenameReport) error {
	fmt.Fprintf(w, "Rename Report\n")
	fmt.Fprintf(w, "=============\n\n")
	fmt.Fprintf(w, "Operation:   %s\n", report.OperationID)
	fmt.Fprintf(w, "Pattern:     %s\n", report.Pattern)
	fmt.Fprintf(w, "Replacement: %s\n", report.Replacement)
	fmt.Fprintf(w, "Started:     %s\n", report.StartTime.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration:    %s\n", formatDuration(report.Duration))
	fmt.Fprintf(w, "Status:      %s\n", report.Status)

	groups := map[models.FileState][]models.EntryView{}
	for _, view := range report.Results {
		groups[view.State] = append(groups[view.State], view)
	}

	sections := []struct {
		state models.FileState
		title string
	}{
		{models.StateError, "Failed"},
		{models.StateRenamed, "Renamed"},
		{models.StatePrepared, "Not attempted"},
		{models.StateLoaded, "Unchanged"},
	}

	for _, section := range sections {
		views := groups[section.state]
		if len(views) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s (%d):\n", section.title, len(views))
		for _, view := range views {
			switch section.state {
			case models.StateError:
				fmt.Fprintf(w, "  %s: %s\n", view.FullPath, view.ErrorDetail)
			case models.StateLoaded:
				fmt.Fprintf(w, "  %s (%s)\n", view.FullPath, view.NewName)
			default:
				fmt.Fprintf(w, "  %s -> %s\n", view.FullPath, view.NewName)
			}
		}
	}

	return nil
}
