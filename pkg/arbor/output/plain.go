package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/jamesainslie/arbor/pkg/arbor/types"
)

// PlainFormatter emits one tab-aligned line per row with no styling or
// glyphs, suitable for grep and awk pipelines.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(tw, "SIZE\tFILES\tPATH")
	for _, row := range r.Rows {
		size := r.formatSize(r.size(row))
		if row.Err != types.ErrNone {
			size = "[" + row.Err.String() + "]"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", size, row.FileCount, row.Entry.Path)
	}

	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
