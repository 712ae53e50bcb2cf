// Package ignore decides which filesystem entries are excluded from a
// walk. It composes three rule sources: a global hidden-file rule,
// user-supplied glob patterns, and per-directory .gitignore files stacked
// from the traversal root down. Deeper gitignore rules override shallower
// ones, including negations.
package ignore

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/jamesainslie/arbor/pkg/arbor/logging"
)

// Options configures an ignore Context.
type Options struct {
	// RespectGitignore enables .gitignore processing and skips .git
	// directories.
	RespectGitignore bool

	// IncludeHidden disables the dotfile rule.
	IncludeHidden bool

	// Patterns are extra exclusion globs matched against the entry name
	// and the root-relative path.
	Patterns []string
}

// Context answers exclusion queries for one walk. It is immutable after
// construction and safe for concurrent use.
type Context struct {
	root  string
	opts  Options
	globs []glob.Glob
}

// Frame carries the gitignore rules visible from one directory: its own
// .gitignore plus a chain to every ancestor frame. Frames are immutable,
// so concurrent walkers expanding sibling directories can share them.
type Frame struct {
	parent  *Frame
	dir     string
	matcher *gitignore.GitIgnore
}

// NewContext builds a Context rooted at root. Malformed glob patterns are
// reported once as warnings and then ignored; they never fail the walk.
func NewContext(root string, opts Options) *Context {
	c := &Context{root: root, opts: opts}

	logger := logging.Get("ignore")
	for _, pattern := range opts.Patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			logger.Warn("malformed exclude pattern, ignoring", "pattern", pattern, "error", err)
			continue
		}
		c.globs = append(c.globs, g)
	}

	return c
}

// Push returns the frame for dir, chained to parent. The traversal root
// pushes onto a nil parent. When dir has no
// readable .gitignore (or gitignore processing is off) the parent frame
// is returned unchanged, so frame chains only grow where rules exist.
func (c *Context) Push(parent *Frame, dir string) *Frame {
	if !c.opts.RespectGitignore {
		return parent
	}

	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return parent
	}

	matcher, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		logging.Get("ignore").Warn("unreadable .gitignore, skipping", "path", path, "error", err)
		return parent
	}

	return &Frame{parent: parent, dir: dir, matcher: matcher}
}

// IsExcluded reports whether path should be excluded from the walk.
// frame must be the frame of the directory containing path. An excluded
// directory is never descended into.
func (c *Context) IsExcluded(frame *Frame, path string, isDir bool) bool {
	base := filepath.Base(path)

	if !c.opts.IncludeHidden && strings.HasPrefix(base, ".") {
		return true
	}

	if c.opts.RespectGitignore && isDir && base == ".git" {
		return true
	}

	if c.matchGlobs(path, base) {
		return true
	}

	// Deepest frame wins: the first frame whose rules mention the path
	// decides, negations included.
	for f := frame; f != nil; f = f.parent {
		rel, err := filepath.Rel(f.dir, path)
		if err != nil {
			continue
		}
		candidate := filepath.ToSlash(rel)
		if isDir {
			candidate += "/"
		}
		if matched, pattern := f.matcher.MatchesPathHow(candidate); pattern != nil {
			return matched
		}
	}

	return false
}

// matchGlobs checks the extra exclusion globs against the entry name and
// the root-relative path.
func (c *Context) matchGlobs(path, base string) bool {
	if len(c.globs) == 0 {
		return false
	}

	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	for _, g := range c.globs {
		if g.Match(base) || g.Match(rel) {
			return true
		}
	}
	return false
}
