package output

import (
	"bytes"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlOutput represents the full YAML output structure.
type yamlOutput struct {
	Rows  []yamlRow `yaml:"rows"`
	Stats yamlStats `yaml:"stats"`
	Meta  yamlMeta  `yaml:"meta"`
}

// yamlRow represents one tree row in YAML output.
type yamlRow struct {
	Path         string    `yaml:"path"`
	Name         string    `yaml:"name"`
	Kind         string    `yaml:"kind"`
	Depth        int       `yaml:"depth"`
	Size         int64     `yaml:"size"`
	SizeHuman    string    `yaml:"size_human"`
	PhysicalSize int64     `yaml:"physical_size"`
	FileCount    int64     `yaml:"file_count"`
	DirCount     int64     `yaml:"dir_count"`
	ModTime      time.Time `yaml:"mod_time,omitempty"`
	LinkTarget   string    `yaml:"link_target,omitempty"`
	Error        string    `yaml:"error,omitempty"`
}

// yamlStats represents walk statistics in YAML output.
type yamlStats struct {
	DirsScanned  int64  `yaml:"dirs_scanned"`
	FilesScanned int64  `yaml:"files_scanned"`
	BytesScanned int64  `yaml:"bytes_scanned"`
	Elapsed      string `yaml:"elapsed"`
}

// yamlMeta represents run metadata in YAML output.
type yamlMeta struct {
	Root     string   `yaml:"root"`
	ScanID   string   `yaml:"scan_id"`
	Warnings []string `yaml:"warnings,omitempty"`
}

// YAMLFormatter formats output as a YAML document.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	rows := make([]yamlRow, len(r.Rows))
	for i, row := range r.Rows {
		jr := buildRow(r, row)
		rows[i] = yamlRow{
			Path:         jr.Path,
			Name:         jr.Name,
			Kind:         jr.Kind,
			Depth:        jr.Depth,
			Size:         jr.Size,
			SizeHuman:    jr.SizeHuman,
			PhysicalSize: jr.PhysicalSize,
			FileCount:    jr.FileCount,
			DirCount:     jr.DirCount,
			ModTime:      jr.ModTime,
			LinkTarget:   jr.LinkTarget,
			Error:        jr.Error,
		}
	}

	doc := yamlOutput{
		Rows: rows,
		Stats: yamlStats{
			DirsScanned:  r.Stats.DirsScanned,
			FilesScanned: r.Stats.FilesScanned,
			BytesScanned: r.Stats.BytesScanned,
			Elapsed:      r.Stats.Elapsed.String(),
		},
		Meta: yamlMeta{
			Root:     r.Root,
			ScanID:   r.ScanID,
			Warnings: warningStrings(r),
		},
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return err
	}
	return encoder.Close()
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
