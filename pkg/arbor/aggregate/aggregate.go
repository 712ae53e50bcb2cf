// Package aggregate computes per-node totals for a finished walk:
// apparent size, physical size, file count, and directory count, each
// rolled up bottom-up with hard links counted exactly once.
package aggregate

import (
	"errors"

	"github.com/jamesainslie/arbor/pkg/arbor/arena"
	"github.com/jamesainslie/arbor/pkg/arbor/types"
	"github.com/jamesainslie/arbor/pkg/arbor/walker"
)

// ErrIncomplete rejects aggregation over a cancelled walk. A partial
// arena would produce totals that look valid but are not.
var ErrIncomplete = errors.New("cannot aggregate an incomplete walk")

// Run fills the aggregate fields of every node in the result's arena.
// It runs single-threaded after the walk's join barrier.
//
// Nodes are processed in reverse index order. A child's index is always
// greater than its parent's, so reverse index order is a reverse
// topological order: every child is final before its parent sums it.
func Run(res *walker.Result) error {
	if !res.Complete {
		return ErrIncomplete
	}

	a := res.Arena
	for i := a.Len() - 1; i >= 0; i-- {
		id := arena.NodeID(i)
		node := a.Get(id)

		switch node.Entry.Kind {
		case types.KindFile:
			size, physical := fileContribution(res.Registry, id, &node.Entry)
			node.AggSize = size
			node.AggPhysical = physical
			node.FileCount = 1
			node.DirCount = 0

		case types.KindDir:
			// A directory's own entry metadata counts toward its total,
			// the way du and friends report it.
			node.AggSize = node.Entry.Size
			node.AggPhysical = node.Entry.PhysicalSize
			node.FileCount = 0
			node.DirCount = 0
			for _, childID := range node.Children {
				child := a.Get(childID)
				node.AggSize += child.AggSize
				node.AggPhysical += child.AggPhysical
				node.FileCount += child.FileCount
				node.DirCount += child.DirCount
				if child.Entry.Kind == types.KindDir {
					node.DirCount++
				}
			}

		case types.KindSymlink, types.KindOther:
			// A link contributes only its own descriptor size. In
			// follow mode the walker already replaced the entry with the
			// resolved target, so this arm never sees followed links.
			node.AggSize = node.Entry.Size
			node.AggPhysical = node.Entry.PhysicalSize
			node.FileCount = 0
			node.DirCount = 0
		}
	}

	return nil
}

// fileContribution applies hard-link dedup: an identity claimed by a
// different node contributes nothing here. The claimant is chosen by
// lexicographic path order in the registry, so results do not depend on
// worker scheduling.
func fileContribution(reg *arena.InodeRegistry, id arena.NodeID, entry *types.Entry) (size, physical int64) {
	if entry.HasIdentity() {
		key := arena.InodeKey{Device: entry.Device, Inode: entry.Inode}
		if claimant := reg.Claimant(key); claimant != arena.InvalidNode && claimant != id {
			return 0, 0
		}
	}
	return entry.Size, entry.PhysicalSize
}
