package index

import (
	"crypto/sha1"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odvcencio/guts/pkg/object"
)

func id(b byte) object.Hash {
	var h object.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func entry(path string, b byte) *Entry {
	return &Entry{
		MTimeSec: 1700000000, MTimeNsec: 42, Size: 10,
		Mode: ModeFile, ID: id(b), Path: path, Stage: StageMerged,
	}
}

func TestSetKeepsCanonicalOrder(t *testing.T) {
	idx := New()
	idx.Set(entry("b.txt", 2))
	idx.Set(entry("a.txt", 1))
	idx.Set(entry("a/c.txt", 3))

	require.Equal(t, []string{"a.txt", "a/c.txt", "b.txt"}, idx.Paths())
}

func TestSetReplaces(t *testing.T) {
	idx := New()
	idx.Set(entry("a.txt", 1))
	idx.Set(entry("a.txt", 2))

	require.Len(t, idx.Entries, 1)
	e, ok := idx.Get("a.txt")
	require.True(t, ok)
	require.Equal(t, id(2), e.ID)
}

func TestRemove(t *testing.T) {
	idx := New()
	idx.Set(entry("a.txt", 1))
	require.True(t, idx.Remove("a.txt"))
	require.False(t, idx.Remove("a.txt"))
	require.Empty(t, idx.Entries)
}

func TestConflictStages(t *testing.T) {
	idx := New()
	idx.Set(entry("f.txt", 1))
	idx.SetConflict("f.txt",
		&Entry{ID: id(1), Mode: ModeFile},
		&Entry{ID: id(2), Mode: ModeFile},
		&Entry{ID: id(3), Mode: ModeFile},
	)

	require.True(t, idx.HasConflicts())
	require.Equal(t, []string{"f.txt"}, idx.ConflictPaths())
	require.Len(t, idx.Entries, 3)
	require.Equal(t, StageBase, idx.Entries[0].Stage)
	require.Equal(t, StageOurs, idx.Entries[1].Stage)
	require.Equal(t, StageTheirs, idx.Entries[2].Stage)

	// Resolving by staging at stage 0 clears the conflict.
	idx.Set(entry("f.txt", 4))
	require.False(t, idx.HasConflicts())
	require.Len(t, idx.Entries, 1)
}

func TestConflictSkipsMissingSides(t *testing.T) {
	idx := New()
	idx.SetConflict("f.txt",
		nil,
		&Entry{ID: id(2), Mode: ModeFile},
		&Entry{ID: id(3), Mode: ModeFile},
	)
	require.Len(t, idx.Entries, 2)
	require.Equal(t, StageOurs, idx.Entries[0].Stage)
}

func TestMarshalRoundTrip(t *testing.T) {
	idx := New()
	idx.Set(entry("a.txt", 1))
	idx.Set(entry("dir/b.txt", 2))
	e := entry("x.sh", 3)
	e.Mode = ModeExecutable
	idx.Set(e)

	data := idx.Marshal()
	parsed, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, idx.Entries, parsed.Entries)
	require.Equal(t, data, parsed.Marshal())
}

func TestMarshalDeterministic(t *testing.T) {
	// Same entry set, different insertion order, identical bytes.
	a := New()
	a.Set(entry("one", 1))
	a.Set(entry("two", 2))

	b := New()
	b.Set(entry("two", 2))
	b.Set(entry("one", 1))

	require.Equal(t, a.Marshal(), b.Marshal())
}

func TestMarshalConflictStagesRoundTrip(t *testing.T) {
	idx := New()
	idx.SetConflict("f.txt",
		&Entry{ID: id(1), Mode: ModeFile},
		&Entry{ID: id(2), Mode: ModeFile},
		&Entry{ID: id(3), Mode: ModeFile},
	)
	parsed, err := Unmarshal(idx.Marshal())
	require.NoError(t, err)
	require.Equal(t, []string{"f.txt"}, parsed.ConflictPaths())
	require.Len(t, parsed.Entries, 3)
}

func TestUnmarshalRejectsCorruption(t *testing.T) {
	idx := New()
	idx.Set(entry("a.txt", 1))
	data := idx.Marshal()

	// Flip one byte in the body: checksum fails.
	tampered := append([]byte(nil), data...)
	tampered[14] ^= 0xff
	_, err := Unmarshal(tampered)
	require.ErrorIs(t, err, ErrMalformedIndex)

	// Truncation fails.
	_, err = Unmarshal(data[:8])
	require.ErrorIs(t, err, ErrMalformedIndex)

	// Wrong magic fails even with a fixed-up checksum.
	bad := New().Marshal()
	bad[0] = 'X'
	sum := sha1.Sum(bad[:len(bad)-sha1.Size])
	copy(bad[len(bad)-sha1.Size:], sum[:])
	_, err = Unmarshal(bad)
	require.ErrorIs(t, err, ErrMalformedIndex)
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	idx, err := Load(filepath.Join(t.TempDir(), "index"))
	require.NoError(t, err)
	require.Empty(t, idx.Entries)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index")

	idx := New()
	idx.Set(entry("a.txt", 1))
	require.NoError(t, idx.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, idx.Entries, loaded.Entries)

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFreshAgainst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	e, err := EntryFromFile(path, "f", id(1))
	require.NoError(t, err)

	fi, err := os.Lstat(path)
	require.NoError(t, err)
	require.True(t, e.FreshAgainst(fi))

	// Size change breaks freshness.
	require.NoError(t, os.WriteFile(path, []byte("changed size!"), 0o644))
	fi, err = os.Lstat(path)
	require.NoError(t, err)
	require.False(t, e.FreshAgainst(fi))

	// A zeroed fingerprint always forces the hash check.
	zeroed := &Entry{Mode: ModeFile, ID: id(1), Path: "f"}
	require.False(t, zeroed.FreshAgainst(fi))
}

func TestEntryFromFileModes(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0o644))
	e, err := EntryFromFile(plain, "plain", id(1))
	require.NoError(t, err)
	require.Equal(t, uint32(ModeFile), e.Mode)
	require.Equal(t, object.TreeModeFile, e.TreeMode())

	exec := filepath.Join(dir, "exec")
	require.NoError(t, os.WriteFile(exec, []byte("x"), 0o755))
	e, err = EntryFromFile(exec, "exec", id(2))
	require.NoError(t, err)
	require.Equal(t, uint32(ModeExecutable), e.Mode)

	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink("plain", link))
	e, err = EntryFromFile(link, "link", id(3))
	require.NoError(t, err)
	require.Equal(t, uint32(ModeSymlink), e.Mode)
	require.Equal(t, object.TreeModeSymlink, e.TreeMode())
}
