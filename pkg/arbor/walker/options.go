// Package walker builds a tree arena from a directory subtree using a
// bounded pool of workers pulling directory-expansion tasks from a shared
// queue. The walk terminates on a join barrier: when the queue is drained
// and every in-flight task has completed, downstream phases may read the
// arena without synchronization.
package walker

import (
	"runtime"

	"github.com/jamesainslie/arbor/pkg/arbor/ignore"
)

// Options configures a walk.
type Options struct {
	// Root is the directory the walk starts from.
	Root string

	// MaxDepth bounds expansion: directories at this depth are recorded
	// but never expanded, so deeper nodes are never created. 0 means
	// unlimited.
	MaxDepth int

	// FollowSymlinks resolves symlink targets and descends into linked
	// directories, with cycle detection along the active descent path.
	FollowSymlinks bool

	// Workers is the number of concurrent expansion workers.
	// Defaults to the host parallelism.
	Workers int

	// Ignore configures exclusion rules for the walk.
	Ignore ignore.Options

	// OnProgress, when set, receives throttled progress updates. It must
	// be safe to call from multiple goroutines.
	OnProgress func(Progress)
}

// Progress is a point-in-time snapshot of a running walk.
type Progress struct {
	// DirsScanned is the number of directories expanded so far.
	DirsScanned int64 `json:"dirs_scanned"`

	// FilesScanned is the number of file entries recorded so far.
	FilesScanned int64 `json:"files_scanned"`

	// BytesScanned is the apparent size of all files recorded so far.
	BytesScanned int64 `json:"bytes_scanned"`

	// CurrentPath is a directory currently being expanded.
	CurrentPath string `json:"current_path"`
}

// setDefaults replaces unset or out-of-range values with defaults.
func (o *Options) setDefaults() {
	if o.Root == "" {
		o.Root = "."
	}
	if o.Workers < 1 {
		o.Workers = runtime.NumCPU()
	}
	if o.MaxDepth < 0 {
		o.MaxDepth = 0
	}
}
