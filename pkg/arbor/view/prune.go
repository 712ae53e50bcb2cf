package view

import (
	"regexp"

	"github.com/jamesainslie/arbor/pkg/arbor/arena"
	"github.com/jamesainslie/arbor/pkg/arbor/types"
)

// Filters selects which aggregated nodes remain visible. All criteria
// operate on already-aggregated values: pruning controls what is shown,
// never what surviving nodes report.
type Filters struct {
	// MinSize hides nodes whose aggregate apparent size is below the
	// threshold. 0 disables.
	MinSize int64

	// MaxDepth hides nodes deeper than this below the root. 0 disables.
	MaxDepth int

	// Pattern keeps only non-directory entries whose name matches.
	// Directories survive while they still contain a match.
	Pattern *regexp.Regexp

	// KeepDirs retains directories even when all their children are
	// pruned.
	KeepDirs bool
}

// empty reports whether no filter is active.
func (f Filters) empty() bool {
	return f.MinSize == 0 && f.MaxDepth == 0 && f.Pattern == nil
}

// Prune detaches nodes failing the filters from their parents. Detached
// subtrees remain in the arena; only the child links are cut. The root
// itself is never pruned.
func Prune(a *arena.Arena, root arena.NodeID, f Filters) {
	if f.empty() {
		return
	}
	pruneNode(a, root, 0, f)
}

// pruneNode filters the subtree at id and reports whether id survives.
// Children are decided first so a directory can be dropped when nothing
// beneath it survives.
func pruneNode(a *arena.Arena, id arena.NodeID, depth int, f Filters) bool {
	node := a.Get(id)

	if f.MaxDepth > 0 && depth > f.MaxDepth {
		return false
	}

	if node.Entry.Kind != types.KindDir {
		if f.Pattern != nil && !f.Pattern.MatchString(node.Entry.Name) {
			return false
		}
		if f.MinSize > 0 && node.AggSize < f.MinSize {
			return false
		}
		return true
	}

	hadChildren := len(node.Children) > 0

	// Copy: Detach mutates the child list being ranged.
	children := make([]arena.NodeID, len(node.Children))
	copy(children, node.Children)
	for _, child := range children {
		if !pruneNode(a, child, depth+1, f) {
			a.Detach(id, child)
		}
	}

	if depth == 0 {
		return true
	}
	if f.MinSize > 0 && node.AggSize < f.MinSize {
		return false
	}

	// A directory at the display-depth boundary legitimately shows empty;
	// the emptied-directory rule applies only to filter pruning.
	depthTruncated := f.MaxDepth > 0 && depth+1 > f.MaxDepth
	if depthTruncated || f.KeepDirs || len(node.Children) > 0 {
		return true
	}
	if hadChildren || f.Pattern != nil {
		return false
	}
	return true
}
