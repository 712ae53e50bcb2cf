package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/charmbracelet/bubbles/spinner"

	"github.com/jamesainslie/arbor/pkg/arbor/aggregate"
	"github.com/jamesainslie/arbor/pkg/arbor/output"
	"github.com/jamesainslie/arbor/pkg/arbor/types"
	"github.com/jamesainslie/arbor/pkg/arbor/view"
	"github.com/jamesainslie/arbor/pkg/arbor/walker"
)

// AppState represents the current state of the application.
type AppState int

const (
	StateWalking AppState = iota
	StateBrowse
	StateError
)

// Options configures the TUI application.
type Options struct {
	Walk         walker.Options
	SortKey      view.SortKey
	SortOrder    view.Order
	Filters      view.Filters
	Unit         output.Unit
	ShowPhysical bool
}

// Model is the main Bubble Tea model for the arbor TUI.
type Model struct {
	state     AppState
	walkModel WalkModel
	treeView  *TreeView
	options   Options

	ctx          context.Context
	cancel       context.CancelFunc
	result       *walker.Result
	walkErr      error
	progressChan chan walker.Progress

	width  int
	height int
}

// NewModel creates a new TUI model with the given options.
func NewModel(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:        StateWalking,
		walkModel:    NewWalkModel(opts.Walk.Root),
		options:      opts,
		ctx:          ctx,
		cancel:       cancel,
		width:        80,
		height:       24,
		progressChan: make(chan walker.Progress, 100),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.walkModel.Init(),
		m.startWalk(),
		m.listenForProgress(),
		m.tickUI(),
	)
}

// tickUIMsg triggers a UI refresh.
type tickUIMsg struct{}

// tickUI returns a command that periodically triggers UI updates.
func (m Model) tickUI() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(time.Time) tea.Msg {
		return tickUIMsg{}
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.walkModel.width = msg.Width
		m.walkModel.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickUIMsg:
		if m.state == StateWalking {
			return m, m.tickUI()
		}
		return m, nil

	case ProgressMsg:
		m.walkModel.SetProgress(walker.Progress(msg))
		return m, m.listenForProgress()

	case WalkCompleteMsg:
		m.result = msg.Result
		m.walkErr = msg.Err
		m.walkModel.SetDone(msg.Err)

		if msg.Err != nil {
			m.state = StateError
			return m, nil
		}

		m.state = StateBrowse
		m.treeView = NewTreeView(
			m.result.Arena, m.result.Root,
			m.options.ShowPhysical, m.options.Unit == output.UnitSI)
		return m, nil

	case spinner.TickMsg:
		if m.state == StateWalking {
			var cmd tea.Cmd
			m.walkModel.spinner, cmd = m.walkModel.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

// handleKey handles keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global keys
	if key == "ctrl+c" {
		m.cancel()
		return m, tea.Quit
	}

	switch m.state {
	case StateWalking:
		if key == "q" || key == "esc" {
			m.cancel()
			return m, tea.Quit
		}

	case StateBrowse:
		switch key {
		case "q", "esc":
			return m, tea.Quit
		case "up", "k":
			m.treeView.MoveUp()
		case "down", "j":
			m.treeView.MoveDown()
		case "enter", " ":
			m.treeView.Toggle()
		case "right", "l":
			m.treeView.Expand()
		case "left", "h":
			m.treeView.Collapse()
		case "g", "home":
			m.treeView.MoveTop()
		case "G", "end":
			m.treeView.MoveBottom()
		}

	case StateError:
		if key == "q" || key == "enter" || key == "esc" {
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the current state.
func (m Model) View() string {
	switch m.state {
	case StateWalking:
		return m.walkModel.View()
	case StateBrowse:
		return m.renderBrowse()
	case StateError:
		return m.renderError()
	}
	return ""
}

// renderBrowse renders the tree browser.
func (m Model) renderBrowse() string {
	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	var b strings.Builder

	title := titleStyle.Render("  arbor")
	rootLabel := mutedTextStyle.Render(truncatePath(m.options.Walk.Root, contentWidth/2))
	spacing := contentWidth - len("  arbor") - len(m.options.Walk.Root)
	if spacing < 1 {
		spacing = 1
	}
	b.WriteString(title + strings.Repeat(" ", spacing) + rootLabel)
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")

	// Leave room for header (3 lines) and footer (2 lines).
	treeHeight := m.height - 7
	if treeHeight < 3 {
		treeHeight = 3
	}
	b.WriteString(m.treeView.View(contentWidth, treeHeight))

	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")
	b.WriteString(m.renderFooter(contentWidth))

	return outerBoxStyle.Width(m.width - 2).Render(b.String())
}

// renderFooter renders the key hint bar and summary.
func (m Model) renderFooter(width int) string {
	hints := strings.Join([]string{
		keyStyle.Render("↑/↓") + " " + keyDescStyle.Render("move"),
		keyStyle.Render("enter") + " " + keyDescStyle.Render("toggle"),
		keyStyle.Render("←/→") + " " + keyDescStyle.Render("collapse/expand"),
		keyStyle.Render("q") + " " + keyDescStyle.Render("quit"),
	}, "  ")

	root := m.result.Arena.Get(m.result.Root)
	size := root.AggSize
	if m.options.ShowPhysical {
		size = root.AggPhysical
	}
	var sizeStr string
	if m.options.Unit == output.UnitSI {
		sizeStr = types.FormatSizeSI(size)
	} else {
		sizeStr = types.FormatSize(size)
	}
	summary := mutedTextStyle.Render(fmt.Sprintf("%s in %d files", sizeStr, root.FileCount))

	return "  " + hints + "   " + summary
}

// renderError renders a fatal walk error.
func (m Model) renderError() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(errorTextStyle.Render(fmt.Sprintf("  Walk failed: %v", m.walkErr)))
	b.WriteString("\n\n")
	b.WriteString(center(keyStyle.Render("[Enter]")+" "+keyDescStyle.Render("Exit"), m.width-4))
	b.WriteString("\n")
	return outerBoxStyle.Width(m.width - 2).Render(b.String())
}

// startWalk walks, aggregates, and finalizes the tree in the
// background.
func (m Model) startWalk() tea.Cmd {
	progressChan := m.progressChan
	opts := m.options
	ctx := m.ctx

	return func() tea.Msg {
		startTime := time.Now()

		walkOpts := opts.Walk
		walkOpts.OnProgress = func(p walker.Progress) {
			select {
			case progressChan <- p:
			default:
				// Channel full, skip this update
			}
		}

		res, err := walker.New(walkOpts).Walk(ctx)
		close(progressChan)
		if err != nil {
			return WalkCompleteMsg{Err: err, Elapsed: time.Since(startTime)}
		}

		if err := aggregate.Run(res); err != nil {
			return WalkCompleteMsg{Err: err, Elapsed: time.Since(startTime)}
		}

		view.Sort(res.Arena, res.Root, opts.SortKey, opts.SortOrder)
		view.Prune(res.Arena, res.Root, opts.Filters)

		return WalkCompleteMsg{Result: res, Elapsed: time.Since(startTime)}
	}
}

// listenForProgress returns a command that waits for progress updates.
func (m Model) listenForProgress() tea.Cmd {
	progressChan := m.progressChan
	return func() tea.Msg {
		p, ok := <-progressChan
		if !ok {
			// Channel closed, walk is done
			return nil
		}
		return ProgressMsg(p)
	}
}

// Run starts the TUI application.
func Run(opts Options) error {
	model := NewModel(opts)

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
