package repo

import (
	"sort"

	"github.com/odvcencio/guts/pkg/object"
)

// ChangeKind classifies one path in a status listing.
type ChangeKind int

const (
	Added ChangeKind = iota
	Modified
	Deleted
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	}
	return "unknown"
}

// Change is one path difference between two of the three trees status
// compares.
type Change struct {
	Path string
	Kind ChangeKind
}

// Status is the three-way comparison of HEAD, index, and working tree.
type Status struct {
	Head      HeadState
	Staged    []Change // HEAD tree vs index
	Unstaged  []Change // index vs working tree
	Untracked []string // working tree paths absent from the index
	Conflicts []string // paths with unmerged index stages
}

// Clean reports whether nothing is staged, modified, untracked, or
// conflicted.
func (s *Status) Clean() bool {
	return len(s.Staged) == 0 && len(s.Unstaged) == 0 &&
		len(s.Untracked) == 0 && len(s.Conflicts) == 0
}

// Status computes the repository status. Staged changes compare the HEAD
// tree against the index; unstaged changes compare the index against the
// working tree, trusting stat fingerprints and re-hashing only on
// mismatch; untracked files are working files absent from the index and
// not ignored.
func (r *Repo) Status() (*Status, error) {
	head, err := r.Head()
	if err != nil {
		return nil, err
	}
	idx, err := r.LoadIndex()
	if err != nil {
		return nil, err
	}
	headTree, err := r.CommitTree(head.ID)
	if err != nil {
		return nil, err
	}

	st := &Status{Head: head, Conflicts: idx.ConflictPaths()}

	// HEAD vs index.
	indexed := make(map[string]object.Hash)
	for _, e := range idx.Entries {
		if e.Stage != 0 {
			continue
		}
		indexed[e.Path] = e.ID
		if te, ok := headTree[e.Path]; !ok {
			st.Staged = append(st.Staged, Change{Path: e.Path, Kind: Added})
		} else if te.ID != e.ID || te.Mode != e.TreeMode() {
			st.Staged = append(st.Staged, Change{Path: e.Path, Kind: Modified})
		}
	}
	for path := range headTree {
		if _, ok := indexed[path]; !ok {
			st.Staged = append(st.Staged, Change{Path: path, Kind: Deleted})
		}
	}

	// Index vs working tree.
	ignore := NewIgnoreMatcher(r.RootDir)
	work, err := r.ScanWorktree(ignore)
	if err != nil {
		return nil, err
	}
	for _, e := range idx.Entries {
		if e.Stage != 0 {
			continue
		}
		wf, ok := work[e.Path]
		if !ok {
			st.Unstaged = append(st.Unstaged, Change{Path: e.Path, Kind: Deleted})
			continue
		}
		if e.FreshAgainst(wf.Info) {
			continue
		}
		content, err := r.readWorkFile(e.Path)
		if err != nil {
			return nil, err
		}
		id, _ := object.HashObject(object.TypeBlob, content)
		if id != e.ID {
			st.Unstaged = append(st.Unstaged, Change{Path: e.Path, Kind: Modified})
		}
	}

	for path := range work {
		if _, ok := indexed[path]; !ok && !conflicted(st.Conflicts, path) {
			st.Untracked = append(st.Untracked, path)
		}
	}

	sortChanges(st.Staged)
	sortChanges(st.Unstaged)
	sort.Strings(st.Untracked)
	return st, nil
}

func sortChanges(cs []Change) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Path < cs[j].Path })
}

func conflicted(paths []string, path string) bool {
	for _, p := range paths {
		if p == path {
			return true
		}
	}
	return false
}
