package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/arbor/pkg/arbor/types"
	"github.com/jamesainslie/arbor/pkg/arbor/walker"
)

// WalkModel represents the walking phase of the TUI.
type WalkModel struct {
	progress    walker.Progress
	spinner     spinner.Model
	currentPath string
	startTime   time.Time
	width       int
	height      int
	rootPath    string
	done        bool
	err         error
}

// ProgressMsg is sent when walk progress is updated.
type ProgressMsg walker.Progress

// WalkCompleteMsg is sent when the walk and aggregation finish.
type WalkCompleteMsg struct {
	Result  *walker.Result
	Err     error
	Elapsed time.Duration
}

// NewWalkModel creates a new walking model.
func NewWalkModel(rootPath string) WalkModel {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return WalkModel{
		spinner:   s,
		startTime: time.Now(),
		width:     80,
		height:    24,
		rootPath:  rootPath,
	}
}

// Init initializes the walking model.
func (m WalkModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages for the walking model.
func (m WalkModel) Update(msg tea.Msg) (WalkModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ProgressMsg:
		m.progress = walker.Progress(msg)
		m.currentPath = msg.CurrentPath
		return m, nil

	case WalkCompleteMsg:
		m.done = true
		m.err = msg.Err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the walking model.
func (m WalkModel) View() string {
	var b strings.Builder

	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	b.WriteString("\n")

	header := m.renderHeader(contentWidth)
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n\n")

	if m.done {
		if m.err != nil {
			b.WriteString(errorTextStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		} else {
			b.WriteString(successTextStyle.Render("  Walk complete!"))
		}
	} else {
		walkingText := fmt.Sprintf("  %s Walking: %s",
			m.spinner.View(),
			truncatePath(m.currentPath, contentWidth-20))
		b.WriteString(walkingText)
	}
	b.WriteString("\n")

	b.WriteString("\n")
	b.WriteString(m.renderProgressBar(contentWidth))
	b.WriteString("\n\n")

	b.WriteString(m.renderStats(contentWidth))
	b.WriteString("\n")

	content := b.String()
	contentLines := strings.Count(content, "\n") + 1

	availableLines := m.height - 2
	if availableLines > contentLines {
		padding := availableLines - contentLines
		content += strings.Repeat("\n", padding)
	}

	return outerBoxStyle.Width(m.width - 2).Height(m.height - 2).Render(content)
}

// renderHeader renders the header section.
func (m WalkModel) renderHeader(width int) string {
	title := titleStyle.Render("  arbor")
	hint := mutedTextStyle.Render("[Ctrl+C to stop]")

	spacing := width - lipgloss.Width(title) - lipgloss.Width(hint)
	if spacing < 1 {
		spacing = 1
	}

	return title + strings.Repeat(" ", spacing) + hint
}

// renderProgressBar renders an indeterminate animated progress bar:
// the total entry count is unknown until the walk completes.
func (m WalkModel) renderProgressBar(width int) string {
	barWidth := width - 4
	if barWidth < 10 {
		barWidth = 10
	}

	elapsed := time.Since(m.startTime)
	position := int(elapsed.Seconds()*2) % (barWidth * 2)
	if position > barWidth {
		position = barWidth*2 - position
	}

	var bar strings.Builder
	bar.WriteString("  ")

	pulseWidth := barWidth / 5
	if pulseWidth < 3 {
		pulseWidth = 3
	}

	for i := range barWidth {
		dist := i - position
		if dist < 0 {
			dist = -dist
		}
		if dist < pulseWidth {
			bar.WriteString(progressFillStyle.Render("█"))
		} else {
			bar.WriteString(progressEmptyStyle.Render("░"))
		}
	}

	return bar.String()
}

// renderStats renders the statistics boxes.
func (m WalkModel) renderStats(totalWidth int) string {
	boxWidth := (totalWidth - 10) / 4
	if boxWidth < 10 {
		boxWidth = 10
	}

	dirsVal := humanize.Comma(m.progress.DirsScanned)
	filesVal := humanize.Comma(m.progress.FilesScanned)
	sizeVal := types.FormatSize(m.progress.BytesScanned)
	elapsedVal := formatDuration(time.Since(m.startTime))

	dirsBox := m.renderStatBox("Dirs", dirsVal, boxWidth)
	filesBox := m.renderStatBox("Files", filesVal, boxWidth)
	sizeBox := m.renderStatBox("Size", sizeVal, boxWidth)
	elapsedBox := m.renderStatBox("Time", elapsedVal, boxWidth)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		"  ", dirsBox, " ", filesBox, " ", sizeBox, " ", elapsedBox)
}

// renderStatBox renders a single stat box.
func (m WalkModel) renderStatBox(label, value string, width int) string {
	labelStr := statsLabelStyle.Render(label)
	valueStr := statsValueStyle.Render(value)

	content := lipgloss.JoinVertical(lipgloss.Center,
		center(labelStr, width-4),
		center(valueStr, width-4))

	return statsBoxStyle.Width(width).Render(content)
}

// formatDuration formats a duration as M:SS.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d", m, s)
}

// SetProgress updates the progress.
func (m *WalkModel) SetProgress(p walker.Progress) {
	m.progress = p
	m.currentPath = p.CurrentPath
}

// SetDone marks the walk as complete.
func (m *WalkModel) SetDone(err error) {
	m.done = true
	m.err = err
}

// IsDone returns true if the walk is complete.
func (m WalkModel) IsDone() bool {
	return m.done
}

// Error returns any error from the walk.
func (m WalkModel) Error() error {
	return m.err
}
