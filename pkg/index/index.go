// Package index implements the staging area: a flat, sorted list of paths
// with object ids and stat fingerprints, persisted in the binary index file
// format (version 2).
package index

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/odvcencio/guts/pkg/object"
)

// ErrMalformedIndex reports index bytes that violate the on-disk format,
// including a bad magic, version, or checksum.
var ErrMalformedIndex = errors.New("malformed index")

// Stage identifies which side of a merge an entry belongs to. Stage 0 is a
// normal (merged) entry; 1/2/3 are base/ours/theirs during a conflict.
const (
	StageMerged = 0
	StageBase   = 1
	StageOurs   = 2
	StageTheirs = 3
)

// File mode bits as stored in the index (octal, matching tree semantics).
const (
	ModeFile       = 0o100644
	ModeExecutable = 0o100755
	ModeSymlink    = 0o120000
)

// Entry is one staged path. The ten stat fields form the fingerprint
// stored on disk; any of them may be zero on platforms that lack the
// field. FreshAgainst compares only size and mtime, and an entry whose
// size and mtime are all zero is always re-checked by hash.
type Entry struct {
	CTimeSec  uint32
	CTimeNsec uint32
	MTimeSec  uint32
	MTimeNsec uint32
	Dev       uint32
	Ino       uint32
	Mode      uint32
	UID       uint32
	GID       uint32
	Size      uint32

	ID    object.Hash
	Stage int
	Path  string
}

// TreeMode maps the entry's mode bits to the wire mode string used in
// trees.
func (e *Entry) TreeMode() string {
	switch e.Mode {
	case ModeExecutable:
		return object.TreeModeExecutable
	case ModeSymlink:
		return object.TreeModeSymlink
	default:
		return object.TreeModeFile
	}
}

// FreshAgainst reports whether the on-disk file can be assumed unchanged
// without re-hashing. A zeroed fingerprint never matches, so such entries
// are always re-checked by hash.
func (e *Entry) FreshAgainst(fi fs.FileInfo) bool {
	if e.Size == 0 && e.MTimeSec == 0 && e.MTimeNsec == 0 {
		return false
	}
	if e.Size != uint32(fi.Size()) {
		return false
	}
	mt := fi.ModTime()
	return e.MTimeSec == uint32(mt.Unix()) && e.MTimeNsec == uint32(mt.Nanosecond())
}

// Index is an in-memory staging area. Entries are kept sorted by
// (path, stage) at all times.
type Index struct {
	Entries []*Entry
}

// New returns an empty index.
func New() *Index {
	return &Index{}
}

func entryLess(a, b *Entry) bool {
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	return a.Stage < b.Stage
}

func (idx *Index) sortEntries() {
	sort.Slice(idx.Entries, func(i, j int) bool {
		return entryLess(idx.Entries[i], idx.Entries[j])
	})
}

// Get returns the stage-0 entry for path.
func (idx *Index) Get(path string) (*Entry, bool) {
	for _, e := range idx.Entries {
		if e.Path == path && e.Stage == StageMerged {
			return e, true
		}
	}
	return nil, false
}

// Set inserts or replaces an entry. Setting a stage-0 entry clears any
// conflict stages for the same path; setting a conflict stage replaces
// only that (path, stage) slot.
func (idx *Index) Set(e *Entry) {
	kept := idx.Entries[:0]
	for _, old := range idx.Entries {
		if old.Path != e.Path {
			kept = append(kept, old)
			continue
		}
		if e.Stage != StageMerged && old.Stage != e.Stage {
			kept = append(kept, old)
		}
	}
	idx.Entries = append(kept, e)
	idx.sortEntries()
}

// Remove deletes all stages of path, reporting whether anything was
// removed.
func (idx *Index) Remove(path string) bool {
	kept := idx.Entries[:0]
	removed := false
	for _, e := range idx.Entries {
		if e.Path == path {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	idx.Entries = kept
	return removed
}

// SetConflict records the three merge stages for a path, replacing
// whatever was there. Entries with a zero id (a side where the path does
// not exist) are skipped.
func (idx *Index) SetConflict(path string, base, ours, theirs *Entry) {
	idx.Remove(path)
	for stage, e := range map[int]*Entry{StageBase: base, StageOurs: ours, StageTheirs: theirs} {
		if e == nil || e.ID.IsZero() {
			continue
		}
		e.Path = path
		e.Stage = stage
		idx.Entries = append(idx.Entries, e)
	}
	idx.sortEntries()
}

// ConflictPaths returns the sorted distinct paths with stage!=0 entries.
func (idx *Index) ConflictPaths() []string {
	var paths []string
	seen := map[string]bool{}
	for _, e := range idx.Entries {
		if e.Stage != StageMerged && !seen[e.Path] {
			seen[e.Path] = true
			paths = append(paths, e.Path)
		}
	}
	return paths
}

// HasConflicts reports whether any entry is at a merge stage.
func (idx *Index) HasConflicts() bool {
	for _, e := range idx.Entries {
		if e.Stage != StageMerged {
			return true
		}
	}
	return false
}

// Paths returns all stage-0 paths in canonical order.
func (idx *Index) Paths() []string {
	var paths []string
	for _, e := range idx.Entries {
		if e.Stage == StageMerged {
			paths = append(paths, e.Path)
		}
	}
	return paths
}

// EntryFromFile builds a stage-0 entry for a working file: fingerprint
// from stat, id supplied by the caller (who has already written the blob).
func EntryFromFile(absPath, relPath string, id object.Hash) (*Entry, error) {
	fi, err := os.Lstat(absPath)
	if err != nil {
		return nil, fmt.Errorf("index entry %s: %w", relPath, err)
	}
	e := &Entry{ID: id, Path: relPath, Stage: StageMerged}
	fillFingerprint(e, fi)
	switch {
	case fi.Mode()&fs.ModeSymlink != 0:
		e.Mode = ModeSymlink
	case fi.Mode()&0o111 != 0:
		e.Mode = ModeExecutable
	default:
		e.Mode = ModeFile
	}
	return e, nil
}
