package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/arbor/pkg/arbor/arena"
	"github.com/jamesainslie/arbor/pkg/arbor/ignore"
	"github.com/jamesainslie/arbor/pkg/arbor/logging"
	"github.com/jamesainslie/arbor/pkg/arbor/types"
)

// ErrRootUnreadable indicates the traversal root could not be statted.
// This is the only per-path condition that fails the whole walk.
var ErrRootUnreadable = errors.New("traversal root is unreadable")

// ErrNotDirectory indicates the traversal root is not a directory.
var ErrNotDirectory = errors.New("traversal root is not a directory")

// ErrScanCancelled indicates the walk was cancelled before completion.
// The partial result it accompanies must not be aggregated.
var ErrScanCancelled = errors.New("scan cancelled")

// errSymlinkCycle marks a followed link pointing back to an ancestor.
var errSymlinkCycle = errors.New("symlink cycle")

// taskQueueDepth bounds the shared task channel. A worker that cannot
// enqueue expands the directory inline instead of blocking, so the walk
// cannot deadlock on a full queue.
const taskQueueDepth = 4096

// Stats summarizes a finished walk.
type Stats struct {
	// DirsScanned is the number of directories expanded.
	DirsScanned int64 `json:"dirs_scanned"`

	// FilesScanned is the number of file entries recorded.
	FilesScanned int64 `json:"files_scanned"`

	// BytesScanned is the apparent size of all recorded files.
	BytesScanned int64 `json:"bytes_scanned"`

	// Elapsed is the wall time of the walk.
	Elapsed time.Duration `json:"elapsed"`
}

// Result is the outcome of one walk: the arena, the inode registry the
// aggregator needs for hard-link dedup, and per-entry errors.
type Result struct {
	// Arena holds every node created by the walk.
	Arena *arena.Arena

	// Root is the traversal root's node.
	Root arena.NodeID

	// Registry records (device, inode) claims for hard-link dedup.
	Registry *arena.InodeRegistry

	// ScanID uniquely identifies this run in logs and output.
	ScanID string `json:"scan_id"`

	// Stats summarizes the walk.
	Stats Stats `json:"stats"`

	// Errors lists the non-fatal failures encountered.
	Errors []types.ScanError `json:"errors,omitempty"`

	// Complete is false when the walk was cancelled. Incomplete results
	// must not be aggregated.
	Complete bool `json:"complete"`
}

// task is one unit of work: expand a single directory node.
type task struct {
	node  arena.NodeID
	path  string
	depth int
	frame *ignore.Frame

	// chain holds the (device, inode) identities open along the descent
	// path. Populated only in follow-symlinks mode, for cycle detection.
	chain *linkChain
}

// linkChain is an immutable list shared structurally between sibling
// tasks.
type linkChain struct {
	key  arena.InodeKey
	next *linkChain
}

func (c *linkChain) contains(key arena.InodeKey) bool {
	for n := c; n != nil; n = n.next {
		if n.key == key {
			return true
		}
	}
	return false
}

// Walker performs one concurrent walk. Create with New; a Walker is
// single-use.
type Walker struct {
	opts Options

	arena    *arena.Arena
	registry *arena.InodeRegistry
	igctx    *ignore.Context

	dirsScanned  atomic.Int64
	filesScanned atomic.Int64
	bytesScanned atomic.Int64
	currentPath  atomic.Value
	lastProgress atomic.Int64

	errors   []types.ScanError
	errorsMu sync.Mutex

	logger *logging.Logger
}

// New creates a Walker with the given options, applying defaults for
// unset values.
func New(opts Options) *Walker {
	opts.setDefaults()
	w := &Walker{
		opts:   opts,
		logger: logging.Get("walker"),
	}
	w.currentPath.Store("")
	return w
}

// Walk traverses the root subtree and returns the populated arena. A
// stat failure on the root itself is fatal; every other failure degrades
// a single node and the walk continues. Cancelling ctx stops the walk
// and returns the partial result alongside ErrScanCancelled.
func (w *Walker) Walk(ctx context.Context) (*Result, error) {
	start := time.Now()

	root, err := filepath.Abs(w.opts.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootUnreadable, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootUnreadable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	scanID := uuid.New().String()
	w.logger.Info("walk started",
		"scan_id", scanID, "root", root,
		"workers", w.opts.Workers, "follow_symlinks", w.opts.FollowSymlinks)

	w.arena = arena.New()
	w.registry = arena.NewInodeRegistry()
	w.igctx = ignore.NewContext(root, w.opts.Ignore)

	rootEntry := newEntry(root, info, 0)
	rootID := w.arena.NewNode(rootEntry, arena.InvalidNode)

	w.currentPath.Store(root)
	w.reportProgressForce()

	// joinCtx ends either when the caller cancels or when the last
	// in-flight task finishes: the join barrier.
	joinCtx, finish := context.WithCancel(ctx)
	defer finish()

	tasks := make(chan task, taskQueueDepth)
	var inFlight atomic.Int64
	inFlight.Store(1)

	// The root task starts with a nil frame; expand pushes the root's
	// own .gitignore when it lists the directory.
	rootTask := task{node: rootID, path: root, depth: 0}
	if w.opts.FollowSymlinks && rootEntry.HasIdentity() {
		rootTask.chain = &linkChain{key: arena.InodeKey{Device: rootEntry.Device, Inode: rootEntry.Inode}}
	}
	tasks <- rootTask

	var wg sync.WaitGroup
	for i := 0; i < w.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-joinCtx.Done():
					return
				case t := <-tasks:
					w.expand(joinCtx, t, tasks, &inFlight)
					if inFlight.Add(-1) == 0 {
						finish()
						return
					}
				}
			}
		}()
	}

	<-joinCtx.Done()
	wg.Wait()

	complete := ctx.Err() == nil
	w.reportProgressForce()

	result := &Result{
		Arena:    w.arena,
		Root:     rootID,
		Registry: w.registry,
		ScanID:   scanID,
		Stats: Stats{
			DirsScanned:  w.dirsScanned.Load(),
			FilesScanned: w.filesScanned.Load(),
			BytesScanned: w.bytesScanned.Load(),
			Elapsed:      time.Since(start),
		},
		Errors:   w.errors,
		Complete: complete,
	}

	if !complete {
		w.logger.Warn("walk cancelled", "scan_id", scanID, "nodes", w.arena.Len())
		return result, ErrScanCancelled
	}

	w.logger.Info("walk finished",
		"scan_id", scanID,
		"dirs", result.Stats.DirsScanned,
		"files", result.Stats.FilesScanned,
		"errors", len(result.Errors),
		"elapsed", result.Stats.Elapsed)
	return result, nil
}

// expand lists one directory, records its admitted children, and
// enqueues child directories for expansion.
func (w *Walker) expand(ctx context.Context, t task, tasks chan task, inFlight *atomic.Int64) {
	w.currentPath.Store(t.path)
	w.dirsScanned.Add(1)
	w.reportProgress()

	entries, err := os.ReadDir(t.path)
	if err != nil {
		w.recordEntryError(t.node, t.path, classifyError(err, types.ErrReadDir), err)
		return
	}

	frame := w.igctx.Push(t.frame, t.path)

	for _, dirent := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}

		full := filepath.Join(t.path, dirent.Name())
		if w.igctx.IsExcluded(frame, full, dirent.IsDir()) {
			continue
		}

		info, err := dirent.Info()
		if err != nil {
			id := w.arena.NewNode(types.Entry{
				Path:  full,
				Name:  dirent.Name(),
				Kind:  types.KindOf(dirent.Type()),
				Depth: t.depth + 1,
			}, t.node)
			w.recordEntryError(id, full, classifyError(err, types.ErrStat), err)
			continue
		}

		w.addEntry(ctx, t, frame, full, info, tasks, inFlight)
	}
}

// addEntry creates the node for one admitted child and, for directories,
// schedules its expansion.
func (w *Walker) addEntry(ctx context.Context, parent task, frame *ignore.Frame,
	path string, info os.FileInfo, tasks chan task, inFlight *atomic.Int64,
) {
	depth := parent.depth + 1
	entry := newEntry(path, info, depth)

	if entry.Kind == types.KindSymlink {
		if target, err := os.Readlink(path); err == nil {
			entry.LinkTarget = target
		}

		if w.opts.FollowSymlinks {
			tinfo, err := os.Stat(path)
			if err != nil {
				id := w.arena.NewNode(entry, parent.node)
				w.recordEntryError(id, path, classifyError(err, types.ErrStat), err)
				return
			}

			resolved := newEntry(path, tinfo, depth)
			resolved.LinkTarget = entry.LinkTarget
			entry = resolved

			if entry.Kind == types.KindDir && entry.HasIdentity() &&
				parent.chain.contains(arena.InodeKey{Device: entry.Device, Inode: entry.Inode}) {
				id := w.arena.NewNode(entry, parent.node)
				w.recordEntryError(id, path, types.ErrCycle, errSymlinkCycle)
				return
			}
		}
	}

	id := w.arena.NewNode(entry, parent.node)

	switch entry.Kind {
	case types.KindFile:
		w.filesScanned.Add(1)
		w.bytesScanned.Add(entry.Size)
		// In follow mode every file registers: two links resolving to
		// the same inode must still count once.
		if entry.HasIdentity() && (entry.NLink > 1 || w.opts.FollowSymlinks) {
			w.registry.Register(arena.InodeKey{Device: entry.Device, Inode: entry.Inode}, id, entry.Path)
		}

	case types.KindDir:
		if w.opts.MaxDepth != 0 && depth >= w.opts.MaxDepth {
			return
		}
		child := task{node: id, path: path, depth: depth, frame: frame}
		if w.opts.FollowSymlinks && entry.HasIdentity() {
			child.chain = &linkChain{
				key:  arena.InodeKey{Device: entry.Device, Inode: entry.Inode},
				next: parent.chain,
			}
		}
		w.enqueue(ctx, child, tasks, inFlight)

	case types.KindSymlink, types.KindOther:
		// Recorded as-is; contributes only its own descriptor size.
	}
}

// enqueue schedules a child expansion. When the queue is full the task
// runs inline; the enclosing task's in-flight count guarantees the
// counter cannot reach zero during the inline expansion.
func (w *Walker) enqueue(ctx context.Context, t task, tasks chan task, inFlight *atomic.Int64) {
	inFlight.Add(1)
	select {
	case tasks <- t:
		return
	case <-ctx.Done():
		inFlight.Add(-1)
		return
	default:
	}

	w.expand(ctx, t, tasks, inFlight)
	inFlight.Add(-1)
}

// recordEntryError marks the node degraded and collects the error. The
// walk always continues.
func (w *Walker) recordEntryError(id arena.NodeID, path string, kind types.ErrorKind, err error) {
	w.arena.SetErr(id, kind)

	w.errorsMu.Lock()
	w.errors = append(w.errors, types.ScanError{Path: path, Kind: kind, Error: err.Error()})
	w.errorsMu.Unlock()

	w.logger.Debug("entry degraded", "path", path, "kind", kind.String(), "error", err)
}

// classifyError refines fallback with permission detection.
func classifyError(err error, fallback types.ErrorKind) types.ErrorKind {
	if errors.Is(err, fs.ErrPermission) {
		return types.ErrPermission
	}
	return fallback
}

// newEntry builds the immutable descriptor for one filesystem object.
func newEntry(path string, info os.FileInfo, depth int) types.Entry {
	st := platformStat(info)
	return types.Entry{
		Path:         path,
		Name:         filepath.Base(path),
		Kind:         types.KindOf(info.Mode()),
		Device:       st.dev,
		Inode:        st.ino,
		NLink:        st.nlink,
		Size:         info.Size(),
		PhysicalSize: st.physical,
		Depth:        depth,
		ModTime:      info.ModTime(),
		Mode:         info.Mode(),
	}
}

// reportProgress invokes the progress callback, throttled to one update
// per 10ms across all workers.
func (w *Walker) reportProgress() {
	if w.opts.OnProgress == nil {
		return
	}

	now := time.Now().UnixMilli()
	last := w.lastProgress.Load()
	if now-last < 10 {
		return
	}
	if !w.lastProgress.CompareAndSwap(last, now) {
		return
	}

	w.sendProgress()
}

// reportProgressForce bypasses the throttle for walk start and end.
func (w *Walker) reportProgressForce() {
	if w.opts.OnProgress == nil {
		return
	}
	w.lastProgress.Store(time.Now().UnixMilli())
	w.sendProgress()
}

func (w *Walker) sendProgress() {
	currentPath, _ := w.currentPath.Load().(string)
	w.opts.OnProgress(Progress{
		DirsScanned:  w.dirsScanned.Load(),
		FilesScanned: w.filesScanned.Load(),
		BytesScanned: w.bytesScanned.Load(),
		CurrentPath:  currentPath,
	})
}
