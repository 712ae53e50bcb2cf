package aggregate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/arbor/pkg/arbor/arena"
	"github.com/jamesainslie/arbor/pkg/arbor/ignore"
	"github.com/jamesainslie/arbor/pkg/arbor/types"
	"github.com/jamesainslie/arbor/pkg/arbor/walker"
)

func writeFile(t *testing.T, root, rel string, size int) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	return path
}

func walkAndAggregate(t *testing.T, root string) *walker.Result {
	t.Helper()
	result, err := walker.New(walker.Options{
		Root:    root,
		Workers: 4,
		Ignore:  ignore.Options{IncludeHidden: true},
	}).Walk(context.Background())
	require.NoError(t, err)
	require.NoError(t, Run(result))
	return result
}

func findNode(a *arena.Arena, root arena.NodeID, name string) arena.NodeID {
	found := arena.InvalidNode
	a.Walk(root, func(id arena.NodeID, depth int) bool {
		if found != arena.InvalidNode {
			return false
		}
		if a.Get(id).Entry.Name == name {
			found = id
			return false
		}
		return true
	})
	return found
}

// synthetic builds an arena by hand so directory entry sizes are exactly
// zero and totals are predictable.
type synthetic struct {
	a   *arena.Arena
	reg *arena.InodeRegistry
}

func newSynthetic() *synthetic {
	return &synthetic{a: arena.New(), reg: arena.NewInodeRegistry()}
}

func (s *synthetic) dir(name string, parent arena.NodeID) arena.NodeID {
	return s.a.NewNode(types.Entry{Path: "/" + name, Name: name, Kind: types.KindDir}, parent)
}

func (s *synthetic) file(path string, parent arena.NodeID, size int64, dev, ino, nlink uint64) arena.NodeID {
	id := s.a.NewNode(types.Entry{
		Path: path, Name: filepath.Base(path), Kind: types.KindFile,
		Size: size, PhysicalSize: size,
		Device: dev, Inode: ino, NLink: nlink,
	}, parent)
	if nlink > 1 {
		s.reg.Register(arena.InodeKey{Device: dev, Inode: ino}, id, path)
	}
	return id
}

func (s *synthetic) result(root arena.NodeID) *walker.Result {
	return &walker.Result{Arena: s.a, Root: root, Registry: s.reg, Complete: true}
}

func TestHardLinkCountedOnce(t *testing.T) {
	// root contains a (4096), b/c (2048), and d hard-linked to c.
	s := newSynthetic()
	root := s.dir("root", arena.InvalidNode)
	s.file("/root/a", root, 4096, 1, 10, 1)
	b := s.dir("b", root)
	c := s.file("/root/b/c", b, 2048, 1, 20, 2)
	d := s.file("/root/d", root, 2048, 1, 20, 2)

	require.NoError(t, Run(s.result(root)))

	assert.Equal(t, int64(6144), s.a.Get(root).AggSize)
	assert.Equal(t, int64(2048), s.a.Get(b).AggSize)
	// /root/b/c claims the inode (smallest path); /root/d contributes zero.
	assert.Equal(t, int64(2048), s.a.Get(c).AggSize)
	assert.Equal(t, int64(0), s.a.Get(d).AggSize)
	assert.Equal(t, int64(3), s.a.Get(root).FileCount)
	assert.Equal(t, int64(1), s.a.Get(root).DirCount)
}

func TestClaimOrderIsPathDeterministic(t *testing.T) {
	// Register the later-created, lexicographically smaller path second;
	// it must still win the claim.
	s := newSynthetic()
	root := s.dir("root", arena.InvalidNode)
	z := s.file("/root/z", root, 100, 1, 7, 2)
	b := s.file("/root/b", root, 100, 1, 7, 2)

	require.NoError(t, Run(s.result(root)))

	assert.Equal(t, int64(0), s.a.Get(z).AggSize)
	assert.Equal(t, int64(100), s.a.Get(b).AggSize)
	assert.Equal(t, int64(100), s.a.Get(root).AggSize)
}

func TestRootEqualsSumOfChildren(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", 1000)
	writeFile(t, root, "s1/b.txt", 2000)
	writeFile(t, root, "s1/s2/c.txt", 3000)
	writeFile(t, root, "s3/d.txt", 4000)

	result := walkAndAggregate(t, root)
	a := result.Arena

	// At every level: a directory's aggregate equals its own entry size
	// plus the sum of its children's aggregates, exactly.
	a.Walk(result.Root, func(id arena.NodeID, depth int) bool {
		node := a.Get(id)
		if node.Entry.Kind != types.KindDir {
			return true
		}
		sum := node.Entry.Size
		sumPhys := node.Entry.PhysicalSize
		for _, childID := range node.Children {
			sum += a.Get(childID).AggSize
			sumPhys += a.Get(childID).AggPhysical
		}
		assert.Equal(t, sum, node.AggSize, "apparent mismatch at %s", node.Entry.Path)
		assert.Equal(t, sumPhys, node.AggPhysical, "physical mismatch at %s", node.Entry.Path)
		return true
	})

	assert.Equal(t, int64(4), a.Get(result.Root).FileCount)
	assert.Equal(t, int64(3), a.Get(result.Root).DirCount)
}

func TestHardLinksOnDisk(t *testing.T) {
	root := t.TempDir()
	original := writeFile(t, root, "b/c", 2048)
	writeFile(t, root, "a", 4096)
	require.NoError(t, os.Link(original, filepath.Join(root, "d")))

	result := walkAndAggregate(t, root)
	a := result.Arena

	c := findNode(a, result.Root, "c")
	d := findNode(a, result.Root, "d")
	b := findNode(a, result.Root, "b")
	require.NotEqual(t, arena.InvalidNode, c)
	require.NotEqual(t, arena.InvalidNode, d)

	// Combined contribution of both links is one instance.
	assert.Equal(t, int64(2048), a.Get(c).AggSize+a.Get(d).AggSize)
	assert.Equal(t, int64(2048+a.Get(b).Entry.Size), a.Get(b).AggSize)

	rootNode := a.Get(result.Root)
	want := rootNode.Entry.Size + int64(4096) + a.Get(b).AggSize + a.Get(d).AggSize
	assert.Equal(t, want, rootNode.AggSize)
}

func TestSymlinkDoesNotContributeTargetSize(t *testing.T) {
	root := t.TempDir()
	target := writeFile(t, root, "big.bin", 1<<20)
	require.NoError(t, os.Symlink(target, filepath.Join(root, "link")))

	result := walkAndAggregate(t, root)
	a := result.Arena

	link := findNode(a, result.Root, "link")
	require.NotEqual(t, arena.InvalidNode, link)
	node := a.Get(link)
	assert.Equal(t, node.Entry.Size, node.AggSize)
	assert.Less(t, node.AggSize, int64(1<<20))
	assert.Equal(t, int64(0), node.FileCount)
}

func TestFollowedLinksDeduplicateTarget(t *testing.T) {
	root := t.TempDir()
	target := writeFile(t, root, "data.bin", 4096)
	require.NoError(t, os.Symlink(target, filepath.Join(root, "alias")))

	result, err := walker.New(walker.Options{
		Root:           root,
		Workers:        2,
		FollowSymlinks: true,
		Ignore:         ignore.Options{IncludeHidden: true},
	}).Walk(context.Background())
	require.NoError(t, err)
	require.NoError(t, Run(result))

	a := result.Arena
	data := findNode(a, result.Root, "data.bin")
	alias := findNode(a, result.Root, "alias")
	require.NotEqual(t, arena.InvalidNode, data)
	require.NotEqual(t, arena.InvalidNode, alias)

	// The file and its resolved alias share an identity; only one
	// contributes.
	assert.Equal(t, int64(4096), a.Get(data).AggSize+a.Get(alias).AggSize)
}

func TestIncompleteResultRejected(t *testing.T) {
	s := newSynthetic()
	root := s.dir("root", arena.InvalidNode)
	res := s.result(root)
	res.Complete = false

	assert.ErrorIs(t, Run(res), ErrIncomplete)
}
