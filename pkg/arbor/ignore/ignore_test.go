package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates a file with the given content under dir.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestHiddenRule(t *testing.T) {
	root := t.TempDir()

	t.Run("dotfiles excluded by default", func(t *testing.T) {
		ctx := NewContext(root, Options{})
		frame := ctx.Push(nil, root)
		assert.True(t, ctx.IsExcluded(frame, filepath.Join(root, ".profile"), false))
		assert.True(t, ctx.IsExcluded(frame, filepath.Join(root, ".config"), true))
		assert.False(t, ctx.IsExcluded(frame, filepath.Join(root, "visible.txt"), false))
	})

	t.Run("include hidden disables the rule", func(t *testing.T) {
		ctx := NewContext(root, Options{IncludeHidden: true})
		frame := ctx.Push(nil, root)
		assert.False(t, ctx.IsExcluded(frame, filepath.Join(root, ".profile"), false))
	})
}

func TestGitignoreRules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "*.log\nbuild/\n")

	ctx := NewContext(root, Options{RespectGitignore: true, IncludeHidden: true})
	frame := ctx.Push(nil, root)

	assert.True(t, ctx.IsExcluded(frame, filepath.Join(root, "debug.log"), false))
	assert.True(t, ctx.IsExcluded(frame, filepath.Join(root, "build"), true))
	assert.False(t, ctx.IsExcluded(frame, filepath.Join(root, "main.go"), false))
}

func TestGitDirectorySkipped(t *testing.T) {
	root := t.TempDir()

	ctx := NewContext(root, Options{RespectGitignore: true, IncludeHidden: true})
	frame := ctx.Push(nil, root)

	assert.True(t, ctx.IsExcluded(frame, filepath.Join(root, ".git"), true))
	// Only directories named .git are special.
	assert.False(t, ctx.IsExcluded(frame, filepath.Join(root, ".git"), false))
}

func TestGitignoreDisabled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "*.log\n")

	ctx := NewContext(root, Options{RespectGitignore: false, IncludeHidden: true})
	frame := ctx.Push(nil, root)

	assert.False(t, ctx.IsExcluded(frame, filepath.Join(root, "debug.log"), false))
	assert.False(t, ctx.IsExcluded(frame, filepath.Join(root, ".git"), true))
}

func TestDeeperRulesOverrideShallower(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "*.log\n")
	sub := filepath.Join(root, "sub")
	writeFile(t, sub, ".gitignore", "!keep.log\n")

	ctx := NewContext(root, Options{RespectGitignore: true, IncludeHidden: true})
	rootFrame := ctx.Push(nil, root)
	subFrame := ctx.Push(rootFrame, sub)

	// Root rule still applies in sub for unmatched names.
	assert.True(t, ctx.IsExcluded(subFrame, filepath.Join(sub, "trace.log"), false))
	// Negation in the deeper .gitignore wins.
	assert.False(t, ctx.IsExcluded(subFrame, filepath.Join(sub, "keep.log"), false))
	// The negation does not leak to the parent directory.
	assert.True(t, ctx.IsExcluded(rootFrame, filepath.Join(root, "keep.log"), false))
}

func TestRootPushCreatesSingleFrame(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "*.log\n")

	ctx := NewContext(root, Options{RespectGitignore: true, IncludeHidden: true})
	frame := ctx.Push(nil, root)

	require.NotNil(t, frame)
	// The root's rules live in exactly one frame with nothing above it.
	assert.Nil(t, frame.parent)
	assert.True(t, ctx.IsExcluded(frame, filepath.Join(root, "debug.log"), false))
}

func TestPushWithoutGitignoreReturnsParent(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	ctx := NewContext(root, Options{RespectGitignore: true})
	rootFrame := ctx.Push(nil, root)
	assert.Same(t, rootFrame, ctx.Push(rootFrame, sub))
}

func TestExtraGlobPatterns(t *testing.T) {
	root := t.TempDir()

	ctx := NewContext(root, Options{IncludeHidden: true, Patterns: []string{"*.tmp", "vendor"}})
	frame := ctx.Push(nil, root)

	assert.True(t, ctx.IsExcluded(frame, filepath.Join(root, "scratch.tmp"), false))
	assert.True(t, ctx.IsExcluded(frame, filepath.Join(root, "vendor"), true))
	assert.False(t, ctx.IsExcluded(frame, filepath.Join(root, "main.go"), false))
}

func TestMalformedPatternIsNoOp(t *testing.T) {
	root := t.TempDir()

	// "[" does not compile; the context must still work.
	ctx := NewContext(root, Options{IncludeHidden: true, Patterns: []string{"[", "*.tmp"}})
	frame := ctx.Push(nil, root)

	assert.True(t, ctx.IsExcluded(frame, filepath.Join(root, "scratch.tmp"), false))
	assert.False(t, ctx.IsExcluded(frame, filepath.Join(root, "anything.txt"), false))
}
