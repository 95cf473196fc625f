package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"

	"github.com/sdejongh/renamr/pkg/models"
)

// maxColumnWidth caps the name columns of the preview table, in terminal cells
const maxColumnWidth = 48

// JSONPreviewData is the JSON form of a preview
type JSONPreviewData struct {
	Total     int              `json:"total"`
	Prepared  int              `json:"prepared"`
	Unchanged int              `json:"unchanged"`
	Entries   []JSONResultData `json:"entries"`
}

// WritePreview writes the candidate name of every entry. rows are expected in path
// order; the human format groups them by directory.
func WritePreview(w io.Writer, rows []models.EntryView, format string, useColor bool) error {
	switch format {
	case "json":
		return writePreviewJSON(w, rows)
	case "human", "":
		return writePreviewHuman(w, rows, newPalette(useColor))
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func countStates(rows []models.EntryView) (prepared, unchanged int) {
	for _, row := range rows {
		switch row.State {
		case models.StatePrepared:
			prepared++
		case models.StateLoaded:
			unchanged++
		}
	}
	return prepared, unchanged
}

func writePreviewJSON(w io.Writer, rows []models.EntryView) error {
	prepared, unchanged := countStates(rows)
	data := JSONPreviewData{
		Total:     len(rows),
		Prepared:  prepared,
		Unchanged: unchanged,
		Entries:   make([]JSONResultData, 0, len(rows)),
	}
	for _, row := range rows {
		data.Entries = append(data.Entries, JSONResultData{
			Path:    row.FullPath,
			OldName: row.OldName,
			NewName: row.NewName,
			State:   string(row.State),
			Error:   row.ErrorDetail,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func writePreviewHuman(w io.Writer, rows []models.EntryView, colors palette) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No files loaded")
		return err
	}

	oldWidth := columnWidth("OLD NAME", rows, func(r models.EntryView) string { return r.OldName })
	newWidth := columnWidth("NEW NAME", rows, func(r models.EntryView) string { return r.NewName })

	directory := ""
	for _, row := range rows {
		if row.Directory != directory {
			if directory != "" {
				fmt.Fprintln(w)
			}
			directory = row.Directory
			fmt.Fprintln(w, colors.emph.Sprint(directory))
			fmt.Fprintf(w, "  %s  %s  %s\n", cell("OLD NAME", oldWidth), cell("NEW NAME", newWidth), "STATE")
		}
		fmt.Fprintf(w, "  %s  %s  %s\n",
			cell(row.OldName, oldWidth),
			cell(row.NewName, newWidth),
			colors.state(row.State).Sprint(row.State))
	}

	prepared, unchanged := countStates(rows)
	_, err := fmt.Fprintf(w, "\n%d files, %d to rename, %d unchanged\n", len(rows), prepared, unchanged)
	return err
}

func columnWidth(header string, rows []models.EntryView, value func(models.EntryView) string) int {
	width := runewidth.StringWidth(header)
	for _, row := range rows {
		if n := runewidth.StringWidth(value(row)); n > width {
			width = n
		}
	}
	if width > maxColumnWidth {
		width = maxColumnWidth
	}
	return width
}

// cell truncates s to width cells and pads it on the right
func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}
