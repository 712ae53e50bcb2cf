package output

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/jamesainslie/arbor/pkg/arbor/view"
)

// jsonOutput represents the full JSON output structure.
type jsonOutput struct {
	Rows  []jsonRow `json:"rows"`
	Stats jsonStats `json:"stats"`
	Meta  jsonMeta  `json:"meta"`
}

// jsonRow represents one tree row in JSON output.
type jsonRow struct {
	Path         string    `json:"path"`
	Name         string    `json:"name"`
	Kind         string    `json:"kind"`
	Depth        int       `json:"depth"`
	Size         int64     `json:"size"`
	SizeHuman    string    `json:"size_human"`
	PhysicalSize int64     `json:"physical_size"`
	FileCount    int64     `json:"file_count"`
	DirCount     int64     `json:"dir_count"`
	ModTime      time.Time `json:"mod_time,omitempty"`
	LinkTarget   string    `json:"link_target,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// jsonStats represents walk statistics in JSON output.
type jsonStats struct {
	DirsScanned  int64  `json:"dirs_scanned"`
	FilesScanned int64  `json:"files_scanned"`
	BytesScanned int64  `json:"bytes_scanned"`
	Elapsed      string `json:"elapsed"`
}

// jsonMeta represents run metadata in JSON output.
type jsonMeta struct {
	Root     string   `json:"root"`
	ScanID   string   `json:"scan_id"`
	Warnings []string `json:"warnings,omitempty"`
}

// JSONFormatter formats output as a single indented JSON object with
// rows, stats, and meta sections.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildOutput(r))
}

// buildOutput converts Result to the JSON output structure.
func buildOutput(r *Result) jsonOutput {
	rows := make([]jsonRow, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = buildRow(r, row)
	}

	return jsonOutput{
		Rows: rows,
		Stats: jsonStats{
			DirsScanned:  r.Stats.DirsScanned,
			FilesScanned: r.Stats.FilesScanned,
			BytesScanned: r.Stats.BytesScanned,
			Elapsed:      r.Stats.Elapsed.String(),
		},
		Meta: jsonMeta{
			Root:     r.Root,
			ScanID:   r.ScanID,
			Warnings: warningStrings(r),
		},
	}
}

func buildRow(r *Result, row view.Row) jsonRow {
	return jsonRow{
		Path:         row.Entry.Path,
		Name:         row.Entry.Name,
		Kind:         row.Entry.Kind.String(),
		Depth:        row.Depth,
		Size:         row.AggSize,
		SizeHuman:    r.formatSize(row.AggSize),
		PhysicalSize: row.AggPhysical,
		FileCount:    row.FileCount,
		DirCount:     row.DirCount,
		ModTime:      row.Entry.ModTime,
		LinkTarget:   row.Entry.LinkTarget,
		Error:        row.Err.String(),
	}
}

// warningStrings flattens the walk's non-fatal errors for metadata
// sections.
func warningStrings(r *Result) []string {
	if len(r.Errors) == 0 {
		return nil
	}
	warnings := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		warnings[i] = e.Path + ": " + e.Kind.String()
	}
	return warnings
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)

// JSONLFormatter formats output as newline-delimited JSON, one compact
// row object per line, suitable for streaming into jq.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, row := range r.Rows {
		data, err := json.Marshal(buildRow(r, row))
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

// Ensure JSONLFormatter implements Formatter.
var _ Formatter = (*JSONLFormatter)(nil)
