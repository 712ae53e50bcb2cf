package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/arbor/pkg/arbor/types"
	"github.com/jamesainslie/arbor/pkg/arbor/view"
)

// Tree connector glyphs.
const (
	glyphBranch = "├── "
	glyphCorner = "└── "
	glyphBar    = "│   "
	glyphGap    = "    "
)

// TreeFormatter renders the row sequence as a connected tree with a
// size column, the default human-facing format.
type TreeFormatter struct {
	// NoColor disables lipgloss styling.
	NoColor bool
}

// Format writes the formatted output to the buffer.
func (f *TreeFormatter) Format(w *bytes.Buffer, r *Result) error {
	// lastAt[d] records whether the most recent ancestor at depth d was
	// the last of its siblings, which decides bar-versus-gap continuation.
	var lastAt []bool

	for _, row := range r.Rows {
		for len(lastAt) <= row.Depth {
			lastAt = append(lastAt, false)
		}
		lastAt[row.Depth] = row.IsLast

		w.WriteString(f.sizeColumn(r, row))
		w.WriteString("  ")
		w.WriteString(f.prefix(lastAt, row))
		w.WriteString(f.name(row))
		w.WriteByte('\n')
	}

	f.writeSummary(w, r)
	return nil
}

// sizeColumn renders the right-aligned size cell, or an error marker
// for degraded rows.
func (f *TreeFormatter) sizeColumn(r *Result, row view.Row) string {
	if row.Err != types.ErrNone {
		return f.style(ErrorStyle, fmt.Sprintf("%10s", "["+row.Err.String()+"]"))
	}
	return f.style(SizeStyle, fmt.Sprintf("%10s", r.formatSize(r.size(row))))
}

// prefix builds the connector glyphs for one row from the ancestor
// last-sibling state.
func (f *TreeFormatter) prefix(lastAt []bool, row view.Row) string {
	if row.Depth == 0 {
		return ""
	}

	var b strings.Builder
	for d := 1; d < row.Depth; d++ {
		if lastAt[d] {
			b.WriteString(glyphGap)
		} else {
			b.WriteString(glyphBar)
		}
	}
	if row.IsLast {
		b.WriteString(glyphCorner)
	} else {
		b.WriteString(glyphBranch)
	}
	return f.style(GlyphStyle, b.String())
}

// name renders the styled entry name, with kind decorations.
func (f *TreeFormatter) name(row view.Row) string {
	switch row.Entry.Kind {
	case types.KindDir:
		return f.style(DirStyle, row.Entry.Name+"/")
	case types.KindSymlink:
		s := row.Entry.Name
		if row.Entry.LinkTarget != "" {
			s += " -> " + row.Entry.LinkTarget
		}
		return f.style(LinkStyle, s)
	default:
		return f.style(FileStyle, row.Entry.Name)
	}
}

// writeSummary appends the footer totals and any degradation notices.
func (f *TreeFormatter) writeSummary(w *bytes.Buffer, r *Result) {
	if len(r.Rows) == 0 {
		return
	}

	root := r.Rows[0]
	summary := fmt.Sprintf("%s in %d files, %d directories (%d scanned in %s)",
		r.formatSize(r.size(root)),
		root.FileCount,
		root.DirCount,
		r.Stats.DirsScanned,
		r.Stats.Elapsed.Round(time.Millisecond))
	w.WriteByte('\n')
	w.WriteString(f.style(SummaryStyle, summary))
	w.WriteByte('\n')

	if len(r.Errors) > 0 {
		notice := fmt.Sprintf("%d entries could not be read", len(r.Errors))
		w.WriteString(f.style(WarningStyle, notice))
		w.WriteByte('\n')
	}
}

// style applies s unless color is disabled.
func (f *TreeFormatter) style(s lipgloss.Style, text string) string {
	if f.NoColor {
		return text
	}
	return s.Render(text)
}

func init() {
	Register("tree", func() Formatter {
		return &TreeFormatter{}
	})
}

// Ensure TreeFormatter implements Formatter.
var _ Formatter = (*TreeFormatter)(nil)
