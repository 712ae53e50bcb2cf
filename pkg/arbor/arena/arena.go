// Package arena owns the nodes of a single walk's filesystem tree. Nodes
// reference each other by stable integer index rather than by pointer, so
// the structure is acyclic by construction and safe to share across
// goroutines once the walk completes. During the walk, inserts and
// lookups from different workers serialize on one lock.
package arena

import (
	"sync"

	"github.com/jamesainslie/arbor/pkg/arbor/types"
)

// NodeID is a stable index into an Arena.
type NodeID int32

// InvalidNode marks the absent parent of the root node.
const InvalidNode NodeID = -1

// Node is one tree position. Shape fields (Entry, Parent, Children) are
// final once the walk's join barrier passes; aggregate fields are zero
// until the aggregator runs.
type Node struct {
	// Entry is the immutable descriptor captured during the walk.
	Entry types.Entry

	// Parent is the owning directory's node, or InvalidNode for the root.
	Parent NodeID

	// Children holds this directory's admitted children. Order is
	// unspecified until sorting; a child's ID is always greater than its
	// parent's.
	Children []NodeID

	// Err records a non-fatal failure on this entry.
	Err types.ErrorKind

	// Aggregates, populated bottom-up after the walk.
	AggSize     int64
	AggPhysical int64
	FileCount   int64
	DirCount    int64
}

// Arena is the append-only node store for one run. NewNode, Get, SetErr,
// and Len are safe for concurrent use while the walk is running; Detach
// and Walk run single-threaded after it.
type Arena struct {
	mu    sync.Mutex
	nodes []*Node
}

// New returns an empty arena. It grows as the walk discovers entries.
func New() *Arena {
	return &Arena{nodes: make([]*Node, 0, 256)}
}

// NewNode appends a node for entry under parent and links it into the
// parent's child list, returning its index. Safe for concurrent use; the
// append and the parent link happen under the same critical section so
// the parent/child invariant never has a half-visible state.
func (a *Arena) NewNode(entry types.Entry, parent NodeID) NodeID {
	node := &Node{Entry: entry, Parent: parent}

	a.mu.Lock()
	id := NodeID(len(a.nodes))
	a.nodes = append(a.nodes, node)
	if parent != InvalidNode {
		p := a.nodes[parent]
		p.Children = append(p.Children, id)
	}
	a.mu.Unlock()
	return id
}

// Get returns the node at id. The returned pointer stays valid for the
// arena's lifetime. The lock covers the slice read, which races with
// NewNode's append; the node's shape fields are written only by the
// worker that created it.
func (a *Arena) Get(id NodeID) *Node {
	a.mu.Lock()
	n := a.nodes[id]
	a.mu.Unlock()
	return n
}

// Len returns the number of nodes in the arena.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.nodes)
}

// SetErr marks the node at id with a non-fatal error kind. Safe to call
// while other workers are inserting.
func (a *Arena) SetErr(id NodeID, kind types.ErrorKind) {
	a.mu.Lock()
	a.nodes[id].Err = kind
	a.mu.Unlock()
}

// Detach removes child from parent's child list. The node itself stays
// in the arena; only the link is cut. Used by pruning, which runs
// single-threaded after aggregation.
func (a *Arena) Detach(parent, child NodeID) {
	p := a.Get(parent)
	for i, c := range p.Children {
		if c == child {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			return
		}
	}
}

// Walk visits id and every node reachable beneath it in pre-order,
// calling fn with each node's ID and depth below id. fn returning false
// skips the subtree below that node.
func (a *Arena) Walk(id NodeID, fn func(id NodeID, depth int) bool) {
	a.walk(id, 0, fn)
}

func (a *Arena) walk(id NodeID, depth int, fn func(id NodeID, depth int) bool) {
	if !fn(id, depth) {
		return
	}
	for _, child := range a.Get(id).Children {
		a.walk(child, depth+1, fn)
	}
}
