package output

import "github.com/charmbracelet/lipgloss"

// Color constants using ANSI 256-color palette.
// These provide a consistent color scheme across all formatters.
const (
	// ColorPrimary is used for sizes and headers (bright blue).
	ColorPrimary = lipgloss.Color("39")

	// ColorSuccess is used for positive status indicators (green).
	ColorSuccess = lipgloss.Color("42")

	// ColorWarning is used for warning messages (orange/yellow).
	ColorWarning = lipgloss.Color("214")

	// ColorDanger is used for errors and degraded entries (red).
	ColorDanger = lipgloss.Color("196")

	// ColorMuted is used for tree glyphs and secondary text (gray).
	ColorMuted = lipgloss.Color("245")
)

// Text styles for tree rendering.
var (
	// DirStyle is used for directory names.
	DirStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// FileStyle is used for regular file names.
	FileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	// LinkStyle is used for symlink names and targets.
	LinkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51"))

	// SizeStyle is used for size columns.
	SizeStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// GlyphStyle is used for tree connector glyphs.
	GlyphStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// ErrorStyle is used for degraded-entry markers.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	// SummaryStyle is used for the footer summary line.
	SummaryStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// WarningStyle is used for the non-fatal error listing.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)
)
