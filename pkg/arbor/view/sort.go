// Package view finalizes a walked and aggregated tree for presentation:
// it orders children deterministically, prunes entries that fail display
// filters, and flattens the result into renderer-ready rows.
package view

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jamesainslie/arbor/pkg/arbor/arena"
	"github.com/jamesainslie/arbor/pkg/arbor/types"
)

// SortKey specifies the field children are ordered by.
type SortKey int

const (
	// SortName orders by name, locale-independent byte order.
	SortName SortKey = iota
	// SortSize orders by aggregate apparent size.
	SortSize
	// SortTime orders by modification time.
	SortTime
	// SortType orders by entry kind, then name.
	SortType
)

// Sort key string constants.
const (
	sortKeyName = "name"
	sortKeySize = "size"
	sortKeyTime = "mtime"
	sortKeyType = "type"
)

// String returns the string representation of the sort key.
func (k SortKey) String() string {
	switch k {
	case SortName:
		return sortKeyName
	case SortSize:
		return sortKeySize
	case SortTime:
		return sortKeyTime
	case SortType:
		return sortKeyType
	default:
		return sortKeySize
	}
}

// ErrInvalidSortKey indicates the sort key string could not be parsed.
var ErrInvalidSortKey = errors.New("invalid sort key")

// ParseSortKey parses a string into a SortKey. Valid values are "name",
// "size", "mtime", and "type" (case-insensitive).
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(s) {
	case sortKeyName:
		return SortName, nil
	case sortKeySize:
		return SortSize, nil
	case sortKeyTime, "time":
		return SortTime, nil
	case sortKeyType:
		return SortType, nil
	default:
		return SortSize, fmt.Errorf("%w: %q", ErrInvalidSortKey, s)
	}
}

// Order is the sort direction.
type Order int

const (
	// Descending puts the largest (or last) value first.
	Descending Order = iota
	// Ascending puts the smallest (or first) value first.
	Ascending
)

// ErrInvalidOrder indicates the order string could not be parsed.
var ErrInvalidOrder = errors.New("invalid sort order")

// ParseOrder parses "asc"/"ascending" or "desc"/"descending".
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(s) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Descending, fmt.Errorf("%w: %q", ErrInvalidOrder, s)
	}
}

// kindRank orders entry kinds for SortType: directories group first,
// then files, links, and specials.
func kindRank(k types.EntryKind) int {
	switch k {
	case types.KindDir:
		return 0
	case types.KindFile:
		return 1
	case types.KindSymlink:
		return 2
	case types.KindOther:
		return 3
	default:
		return 4
	}
}

// Sort orders every child list under root by key and order. Ties always
// break by name in ascending byte order, so repeated runs over the same
// snapshot produce identical output.
func Sort(a *arena.Arena, root arena.NodeID, key SortKey, order Order) {
	a.Walk(root, func(id arena.NodeID, depth int) bool {
		node := a.Get(id)
		if len(node.Children) > 1 {
			sortChildren(a, node.Children, key, order)
		}
		return true
	})
}

func sortChildren(a *arena.Arena, children []arena.NodeID, key SortKey, order Order) {
	sort.Slice(children, func(i, j int) bool {
		x, y := a.Get(children[i]), a.Get(children[j])

		c := compare(x, y, key)
		if c == 0 {
			return x.Entry.Name < y.Entry.Name
		}
		if order == Descending {
			return c > 0
		}
		return c < 0
	})
}

// compare returns the three-way ordering of x and y under key, ignoring
// direction.
func compare(x, y *arena.Node, key SortKey) int {
	switch key {
	case SortName:
		return strings.Compare(x.Entry.Name, y.Entry.Name)
	case SortSize:
		switch {
		case x.AggSize < y.AggSize:
			return -1
		case x.AggSize > y.AggSize:
			return 1
		}
		return 0
	case SortTime:
		switch {
		case x.Entry.ModTime.Before(y.Entry.ModTime):
			return -1
		case x.Entry.ModTime.After(y.Entry.ModTime):
			return 1
		}
		return 0
	case SortType:
		return kindRank(x.Entry.Kind) - kindRank(y.Entry.Kind)
	default:
		return 0
	}
}
