package view

import (
	"iter"

	"github.com/jamesainslie/arbor/pkg/arbor/arena"
	"github.com/jamesainslie/arbor/pkg/arbor/types"
)

// Row is one line of finalized output. It carries everything a renderer
// needs to draw tree glyphs without access to the arena.
type Row struct {
	// Depth is the distance below the emitted root (root = 0).
	Depth int `json:"depth"`

	// IsLast reports whether this node is the last of its siblings, for
	// connective glyph selection.
	IsLast bool `json:"is_last"`

	// Entry is the node's descriptor snapshot.
	Entry types.Entry `json:"entry"`

	// Aggregates computed for the node.
	AggSize     int64 `json:"aggregate_size"`
	AggPhysical int64 `json:"aggregate_physical_size"`
	FileCount   int64 `json:"aggregate_file_count"`
	DirCount    int64 `json:"aggregate_dir_count"`

	// Err flags a degraded node; renderers show a marker in place of
	// the size.
	Err types.ErrorKind `json:"error,omitempty"`
}

// Rows flattens the finalized tree into a lazy depth-first pre-order
// sequence. The sequence is single-pass over a frozen tree: it must not
// be consumed while any phase still mutates the arena.
func Rows(a *arena.Arena, root arena.NodeID) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		emit(a, root, 0, true, yield)
	}
}

func emit(a *arena.Arena, id arena.NodeID, depth int, isLast bool, yield func(Row) bool) bool {
	node := a.Get(id)

	row := Row{
		Depth:       depth,
		IsLast:      isLast,
		Entry:       node.Entry,
		AggSize:     node.AggSize,
		AggPhysical: node.AggPhysical,
		FileCount:   node.FileCount,
		DirCount:    node.DirCount,
		Err:         node.Err,
	}
	if !yield(row) {
		return false
	}

	for i, child := range node.Children {
		if !emit(a, child, depth+1, i == len(node.Children)-1, yield) {
			return false
		}
	}
	return true
}
