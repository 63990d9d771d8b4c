package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odvcencio/guts/pkg/object"
)

func TestWriteTreeFlat(t *testing.T) {
	store := object.NewStore(t.TempDir())
	blob, err := store.WriteBlob(&object.Blob{Data: []byte("hello\n")})
	require.NoError(t, err)

	idx := New()
	idx.Set(&Entry{Mode: ModeFile, ID: blob, Path: "a.txt", Stage: StageMerged})

	root, err := idx.WriteTree(store)
	require.NoError(t, err)

	tree, err := store.ReadTree(root)
	require.NoError(t, err)
	require.Len(t, tree.Entries, 1)
	require.Equal(t, "a.txt", tree.Entries[0].Name)
	require.Equal(t, blob, tree.Entries[0].ID)
}

func TestWriteTreeNested(t *testing.T) {
	store := object.NewStore(t.TempDir())
	blob, err := store.WriteBlob(&object.Blob{Data: []byte("x")})
	require.NoError(t, err)

	idx := New()
	idx.Set(&Entry{Mode: ModeFile, ID: blob, Path: "a", Stage: StageMerged})
	idx.Set(&Entry{Mode: ModeFile, ID: blob, Path: "b/c", Stage: StageMerged})
	idx.Set(&Entry{Mode: ModeFile, ID: blob, Path: "b/d/e", Stage: StageMerged})

	root, err := idx.WriteTree(store)
	require.NoError(t, err)

	tree, err := store.ReadTree(root)
	require.NoError(t, err)
	require.Len(t, tree.Entries, 2)
	// File "a" sorts before subtree "b" ("a" < "b/").
	require.Equal(t, "a", tree.Entries[0].Name)
	require.Equal(t, "b", tree.Entries[1].Name)
	require.Equal(t, object.TreeModeDir, tree.Entries[1].Mode)

	sub, err := store.ReadTree(tree.Entries[1].ID)
	require.NoError(t, err)
	require.Len(t, sub.Entries, 2)
	require.Equal(t, "c", sub.Entries[0].Name)
	require.Equal(t, "d", sub.Entries[1].Name)
}

func TestWriteTreeDeterministic(t *testing.T) {
	storeA := object.NewStore(t.TempDir())
	storeB := object.NewStore(t.TempDir())

	build := func(store *object.Store, order []string) object.Hash {
		blob, err := store.WriteBlob(&object.Blob{Data: []byte("same")})
		require.NoError(t, err)
		idx := New()
		for _, p := range order {
			idx.Set(&Entry{Mode: ModeFile, ID: blob, Path: p, Stage: StageMerged})
		}
		root, err := idx.WriteTree(store)
		require.NoError(t, err)
		return root
	}

	a := build(storeA, []string{"x/y", "a", "x/z"})
	b := build(storeB, []string{"x/z", "x/y", "a"})
	require.Equal(t, a, b)
}

func TestWriteTreeRefusesConflicts(t *testing.T) {
	store := object.NewStore(t.TempDir())
	idx := New()
	idx.SetConflict("f",
		&Entry{ID: id(1), Mode: ModeFile},
		&Entry{ID: id(2), Mode: ModeFile},
		&Entry{ID: id(3), Mode: ModeFile},
	)
	_, err := idx.WriteTree(store)
	require.ErrorIs(t, err, ErrUnmergedEntries)
}

func TestWriteTreeEmptyIndex(t *testing.T) {
	store := object.NewStore(t.TempDir())
	root, err := New().WriteTree(store)
	require.NoError(t, err)

	tree, err := store.ReadTree(root)
	require.NoError(t, err)
	require.Empty(t, tree.Entries)
}

func TestFromTree(t *testing.T) {
	store := object.NewStore(t.TempDir())
	blob, err := store.WriteBlob(&object.Blob{Data: []byte("x")})
	require.NoError(t, err)

	idx := New()
	idx.Set(&Entry{Mode: ModeFile, ID: blob, Path: "a", Stage: StageMerged})
	idx.Set(&Entry{Mode: ModeExecutable, ID: blob, Path: "b/c", Stage: StageMerged})
	root, err := idx.WriteTree(store)
	require.NoError(t, err)

	rebuilt, err := FromTree(store, root)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b/c"}, rebuilt.Paths())

	e, ok := rebuilt.Get("b/c")
	require.True(t, ok)
	require.Equal(t, uint32(ModeExecutable), e.Mode)
	// Fingerprints are zeroed: nothing is assumed fresh.
	require.Zero(t, e.MTimeSec)
	require.Zero(t, e.Size)
}

func TestFromTreeZeroRoot(t *testing.T) {
	store := object.NewStore(t.TempDir())
	idx, err := FromTree(store, object.ZeroHash)
	require.NoError(t, err)
	require.Empty(t, idx.Entries)
}
