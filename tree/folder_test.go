package tree

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// names returns the child names of f in order
func names(f *Folder) []string {
	out := make([]string, 0, f.Len())
	for _, c := range f.Contents() {
		out = append(out, c.Name())
	}
	return out
}

// requireConsistent checks the folder invariants: sorted contents, no
// duplicate identities and every child pointing back at f with f's repository
func requireConsistent(t *testing.T, f *Folder) {
	t.Helper()
	require.True(t, slices.IsSortedFunc(f.contents, compareItems), "contents must stay sorted: %v", names(f))
	for i, c := range f.contents {
		require.Same(t, f, c.Parent(), "child %d parent", i)
		require.Equal(t, f.Repository(), c.Repository(), "child %d repository", i)
		require.Equal(t, i, f.IndexOf(c), "child %d appears more than once", i)
	}
}

func TestNewFolder(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	f := NewFolder("docs", id)

	assert.Equal(t, id, f.ID())
	assert.Equal(t, "docs", f.Name())
	assert.True(t, f.IsContainer())
	assert.Zero(t, f.Len())
	assert.Nil(t, f.Parent())
	assert.Nil(t, f.Repository())
	assert.Equal(t, []uuid.UUID{id}, f.IDPath())
}

func TestFolder_Add_SortsByName(t *testing.T) {
	t.Parallel()

	f := NewFolder("", uuid.New())
	for _, n := range []string{"c", "a", "B", "b", "a.txt"} {
		require.NoError(t, f.Add(NewFile(n, uuid.New())))
		requireConsistent(t, f)
	}

	// bytewise: upper case sorts before lower case
	assert.Equal(t, []string{"B", "a", "a.txt", "b", "c"}, names(f))
}

func TestFolder_Add_TiesBrokenByID(t *testing.T) {
	t.Parallel()

	low := NewFile("same", uuid.MustParse("00000000-0000-0000-0000-000000000001"))
	high := NewFile("same", uuid.MustParse("ffffffff-0000-0000-0000-000000000000"))
	f := NewFolder("", uuid.New())

	require.NoError(t, f.Add(high))
	require.NoError(t, f.Add(low))

	assert.Same(t, low, f.At(0))
	assert.Same(t, high, f.At(1))
}

func TestFolder_Add_SetsParent(t *testing.T) {
	t.Parallel()

	f := NewFolder("parent", uuid.New())
	file := NewFile("child.txt", uuid.New())

	require.NoError(t, f.Add(file))

	assert.Same(t, f, file.Parent())
	assert.Equal(t, []uuid.UUID{f.ID(), file.ID()}, file.IDPath())
	child, ok := f.Child(file.ID())
	require.True(t, ok)
	assert.Same(t, file, child)
}

func TestFolder_Add_Duplicate_Panics(t *testing.T) {
	t.Parallel()

	f := NewFolder("", uuid.New())
	file := NewFile("a", uuid.New())
	require.NoError(t, f.Add(file))

	assert.Panics(t, func() { _ = f.Add(file) })
	assert.Equal(t, 1, f.Len(), "contents must be untouched after the violation")
}

func TestFolder_Add_AttachedElsewhere_Panics(t *testing.T) {
	t.Parallel()

	a := NewFolder("a", uuid.New())
	b := NewFolder("b", uuid.New())
	file := NewFile("x", uuid.New())
	require.NoError(t, a.Add(file))

	assert.Panics(t, func() { _ = b.Add(file) })
	assert.Zero(t, b.Len())
	assert.Same(t, a, file.Parent())
}

func TestFolder_Add_BelowItself_Panics(t *testing.T) {
	t.Parallel()

	outer := NewFolder("outer", uuid.New())
	inner := NewFolder("inner", uuid.New())
	require.NoError(t, outer.Add(inner))

	assert.Panics(t, func() { _ = inner.Add(outer) })
	assert.Panics(t, func() { _ = outer.Add(outer) })
}

func TestFolder_Remove(t *testing.T) {
	t.Parallel()

	f := NewFolder("", uuid.New())
	a := NewFile("a", uuid.New())
	b := NewFile("b", uuid.New())
	require.NoError(t, f.Add(a))
	require.NoError(t, f.Add(b))

	require.NoError(t, f.Remove(a))

	assert.Equal(t, []string{"b"}, names(f))
	assert.Nil(t, a.Parent())
	assert.Equal(t, -1, f.IndexOf(a))
	requireConsistent(t, f)
}

func TestFolder_Remove_Absent_IsNoop(t *testing.T) {
	t.Parallel()

	f := NewFolder("", uuid.New())
	other := NewFolder("other", uuid.New())
	a := NewFile("a", uuid.New())
	stranger := NewFile("a", uuid.New())
	require.NoError(t, f.Add(a))
	require.NoError(t, other.Add(stranger))

	require.NoError(t, f.Remove(stranger))

	assert.Equal(t, 1, f.Len())
	assert.Same(t, other, stranger.Parent(), "removing a non-child must not detach it")
}

func TestFolder_Remove_Nil_IsNoop(t *testing.T) {
	t.Parallel()

	f := NewFolder("", uuid.New())
	require.NoError(t, f.Add(NewFile("a", uuid.New())))

	require.NotPanics(t, func() { require.NoError(t, f.Remove(nil)) })
	var typedNil *File
	require.NotPanics(t, func() { require.NoError(t, f.Remove(typedNil)) })
	assert.Equal(t, 1, f.Len())
}

func TestFolder_Resort(t *testing.T) {
	t.Parallel()

	f := NewFolder("", uuid.New())
	a := NewFile("a", uuid.New())
	b := NewFile("b", uuid.New())
	c := NewFile("c", uuid.New())
	for _, it := range []Item{a, b, c} {
		require.NoError(t, f.Add(it))
	}

	c.name = "0"
	prev, cur := f.Resort(c)

	assert.Equal(t, 2, prev)
	assert.Equal(t, 0, cur)
	assert.Equal(t, []string{"0", "a", "b"}, names(f))
}

func TestFolder_Resort_Absent_Panics(t *testing.T) {
	t.Parallel()

	f := NewFolder("", uuid.New())
	assert.Panics(t, func() { f.Resort(NewFile("x", uuid.New())) })
}

func TestItem_Rename_Detached(t *testing.T) {
	t.Parallel()

	file := NewFile("old", uuid.New())
	require.NoError(t, file.Rename("new"))
	assert.Equal(t, "new", file.Name())
}

func TestItem_Rename_Reorders(t *testing.T) {
	t.Parallel()

	f := NewFolder("", uuid.New())
	a := NewFile("a", uuid.New())
	sub := NewFolder("m", uuid.New())
	require.NoError(t, f.Add(a))
	require.NoError(t, f.Add(sub))

	require.NoError(t, sub.Rename("0"))

	assert.Equal(t, []string{"0", "a"}, names(f))
	requireConsistent(t, f)
}

func TestFolder_Resolve(t *testing.T) {
	t.Parallel()

	root := NewFolder("", uuid.New())
	dir := NewFolder("dir", uuid.New())
	nested := NewFolder("nested", uuid.New())
	file := NewFile("file.txt", uuid.New())
	require.NoError(t, root.Add(dir))
	require.NoError(t, dir.Add(nested))
	require.NoError(t, nested.Add(file))

	for _, it := range []Item{root, dir, nested, file} {
		got, ok := root.Resolve(it.IDPath())
		require.True(t, ok, "resolve %s", it.Name())
		assert.Same(t, it, got)
	}

	t.Run("empty path", func(t *testing.T) {
		_, ok := root.Resolve(nil)
		assert.False(t, ok)
	})
	t.Run("wrong root id", func(t *testing.T) {
		_, ok := root.Resolve([]uuid.UUID{uuid.New(), dir.ID()})
		assert.False(t, ok)
	})
	t.Run("skipped level", func(t *testing.T) {
		_, ok := root.Resolve([]uuid.UUID{root.ID(), file.ID()})
		assert.False(t, ok)
	})
	t.Run("path past a file", func(t *testing.T) {
		_, ok := root.Resolve(append(file.IDPath(), uuid.New()))
		assert.False(t, ok)
	})
}

func TestFile_Resolve(t *testing.T) {
	t.Parallel()

	file := NewFile("f", uuid.New())

	got, ok := file.Resolve([]uuid.UUID{file.ID()})
	require.True(t, ok)
	assert.Same(t, file, got)

	_, ok = file.Resolve([]uuid.UUID{file.ID(), file.ID()})
	assert.False(t, ok)
	_, ok = file.Resolve([]uuid.UUID{uuid.New()})
	assert.False(t, ok)
	assert.False(t, file.IsContainer())
}

func TestItem_Detach_ThenResolveFails(t *testing.T) {
	t.Parallel()

	root := NewFolder("", uuid.New())
	file := NewFile("f", uuid.New())
	require.NoError(t, root.Add(file))
	path := file.IDPath()

	require.NoError(t, root.Remove(file))

	_, ok := root.Resolve(path)
	assert.False(t, ok)
	assert.Equal(t, []uuid.UUID{file.ID()}, file.IDPath())
}

// TestFolder_RandomOps_StaySorted applies a seeded random sequence of adds,
// removes and renames and checks the invariants after every call
func TestFolder_RandomOps_StaySorted(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	f := NewFolder("", uuid.New())
	var live []Item

	for i := range 500 {
		switch op := rng.IntN(3); {
		case op == 0 || len(live) == 0:
			var it Item = NewFile(fmt.Sprintf("n%02d", rng.IntN(40)), uuid.New())
			if rng.IntN(4) == 0 {
				it = NewFolder(fmt.Sprintf("n%02d", rng.IntN(40)), uuid.New())
			}
			require.NoError(t, f.Add(it))
			live = append(live, it)
		case op == 1:
			j := rng.IntN(len(live))
			require.NoError(t, f.Remove(live[j]))
			live = slices.Delete(live, j, j+1)
		default:
			require.NoError(t, live[rng.IntN(len(live))].Rename(fmt.Sprintf("n%02d", rng.IntN(40))))
		}
		requireConsistent(t, f)
		require.Equal(t, len(live), f.Len(), "step %d", i)
	}
}
