package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/arbor/pkg/arbor/arena"
	"github.com/jamesainslie/arbor/pkg/arbor/types"
)

// Tree view icons using Unicode symbols.
const (
	iconExpanded  = "▼" // Black down-pointing triangle
	iconCollapsed = "▶" // Black right-pointing triangle
	iconLeaf      = "·" // Middle dot
)

// flatRow is one visible line of the tree: a node plus its indentation
// depth.
type flatRow struct {
	id    arena.NodeID
	depth int
}

// TreeView displays the aggregated tree with expand/collapse, cursor
// movement, and scrolling.
type TreeView struct {
	arena        *arena.Arena
	root         arena.NodeID
	expanded     map[arena.NodeID]bool
	flat         []flatRow
	cursor       int
	offset       int
	showPhysical bool
	si           bool
}

// NewTreeView creates a TreeView over an aggregated arena. The root
// starts expanded one level.
func NewTreeView(a *arena.Arena, root arena.NodeID, showPhysical, si bool) *TreeView {
	tv := &TreeView{
		arena:        a,
		root:         root,
		expanded:     map[arena.NodeID]bool{root: true},
		showPhysical: showPhysical,
		si:           si,
	}
	tv.refresh()
	return tv
}

// refresh rebuilds the flat list from the current expansion state.
func (tv *TreeView) refresh() {
	tv.flat = tv.flat[:0]
	tv.flatten(tv.root, 0)

	if tv.cursor >= len(tv.flat) {
		tv.cursor = len(tv.flat) - 1
	}
	if tv.cursor < 0 {
		tv.cursor = 0
	}
}

func (tv *TreeView) flatten(id arena.NodeID, depth int) {
	tv.flat = append(tv.flat, flatRow{id: id, depth: depth})
	if !tv.expanded[id] {
		return
	}
	for _, child := range tv.arena.Get(id).Children {
		tv.flatten(child, depth+1)
	}
}

// MoveUp moves the cursor up one position.
func (tv *TreeView) MoveUp() {
	if tv.cursor > 0 {
		tv.cursor--
	}
}

// MoveDown moves the cursor down one position.
func (tv *TreeView) MoveDown() {
	if tv.cursor < len(tv.flat)-1 {
		tv.cursor++
	}
}

// MoveTop moves the cursor to the first row.
func (tv *TreeView) MoveTop() {
	tv.cursor = 0
	tv.offset = 0
}

// MoveBottom moves the cursor to the last row.
func (tv *TreeView) MoveBottom() {
	tv.cursor = len(tv.flat) - 1
}

// Toggle expands or collapses the directory under the cursor.
func (tv *TreeView) Toggle() {
	node := tv.SelectedNode()
	if node == nil || node.Entry.Kind != types.KindDir || len(node.Children) == 0 {
		return
	}

	id := tv.flat[tv.cursor].id
	tv.expanded[id] = !tv.expanded[id]
	tv.refresh()
}

// Expand opens the directory under the cursor.
func (tv *TreeView) Expand() {
	node := tv.SelectedNode()
	if node == nil || node.Entry.Kind != types.KindDir || len(node.Children) == 0 {
		return
	}

	id := tv.flat[tv.cursor].id
	if !tv.expanded[id] {
		tv.expanded[id] = true
		tv.refresh()
	}
}

// Collapse closes the directory under the cursor, or jumps to the
// parent when the cursor is on a collapsed node.
func (tv *TreeView) Collapse() {
	if len(tv.flat) == 0 {
		return
	}

	row := tv.flat[tv.cursor]
	if tv.expanded[row.id] {
		tv.expanded[row.id] = false
		tv.refresh()
		return
	}

	parent := tv.arena.Get(row.id).Parent
	if parent == arena.InvalidNode {
		return
	}
	for i, r := range tv.flat {
		if r.id == parent {
			tv.cursor = i
			return
		}
	}
}

// SelectedNode returns the node under the cursor.
func (tv *TreeView) SelectedNode() *arena.Node {
	if len(tv.flat) == 0 || tv.cursor < 0 || tv.cursor >= len(tv.flat) {
		return nil
	}
	return tv.arena.Get(tv.flat[tv.cursor].id)
}

// View renders the tree view within the given dimensions.
func (tv *TreeView) View(width, height int) string {
	if len(tv.flat) == 0 {
		return center(mutedTextStyle.Render("Nothing to display"), width) + "\n"
	}

	var b strings.Builder

	visibleRows := height
	if visibleRows < 1 {
		visibleRows = 1
	}
	tv.ensureVisible(visibleRows)

	for i := tv.offset; i < tv.offset+visibleRows && i < len(tv.flat); i++ {
		b.WriteString(tv.renderRow(tv.flat[i], width, i == tv.cursor))
		b.WriteString("\n")
	}

	rendered := min(tv.offset+visibleRows, len(tv.flat))
	for i := rendered - tv.offset; i < visibleRows; i++ {
		b.WriteString("\n")
	}

	return b.String()
}

// ensureVisible adjusts offset to keep the cursor on screen.
func (tv *TreeView) ensureVisible(visible int) {
	if tv.cursor < tv.offset {
		tv.offset = tv.cursor
	} else if tv.cursor >= tv.offset+visible {
		tv.offset = tv.cursor - visible + 1
	}
	if tv.offset < 0 {
		tv.offset = 0
	}
}

// renderRow renders a single visible line.
func (tv *TreeView) renderRow(row flatRow, width int, isCursor bool) string {
	node := tv.arena.Get(row.id)
	indent := strings.Repeat("  ", row.depth)

	var content strings.Builder
	content.WriteString(indent)

	if node.Entry.Kind == types.KindDir && len(node.Children) > 0 {
		if tv.expanded[row.id] {
			content.WriteString(iconExpanded)
		} else {
			content.WriteString(iconCollapsed)
		}
	} else {
		content.WriteString(iconLeaf)
	}
	content.WriteString(" ")
	content.WriteString(node.Entry.Name)
	if node.Entry.Kind == types.KindDir {
		content.WriteString("/")
	}

	sizeStr := tv.sizeCell(node)

	contentLen := lipgloss.Width(content.String())
	sizeLen := lipgloss.Width(sizeStr)
	padding := width - contentLen - sizeLen - 1
	if padding < 1 {
		padding = 1
	}

	line := content.String() + strings.Repeat(" ", padding) + sizeStr
	if isCursor {
		return cursorRowStyle.Width(width).Render(line)
	}
	return normalRowStyle.Width(width).Render(line)
}

// sizeCell formats the aggregate column for one node.
func (tv *TreeView) sizeCell(node *arena.Node) string {
	if node.Err != types.ErrNone {
		return errorMarkStyle.Render("[" + node.Err.String() + "]")
	}

	size := node.AggSize
	if tv.showPhysical {
		size = node.AggPhysical
	}

	var s string
	if tv.si {
		s = types.FormatSizeSI(size)
	} else {
		s = types.FormatSize(size)
	}

	if node.Entry.Kind == types.KindDir && node.FileCount > 0 {
		s = fmt.Sprintf("(%d files) %s", node.FileCount, s)
	}
	return sizeColumnStyle.Render(s)
}
