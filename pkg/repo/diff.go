package repo

import (
	"os"
	"sort"
	"strings"

	"github.com/odvcencio/guts/pkg/diff"
)

// DiffWorktree renders unified diffs of unstaged changes: each tracked
// path whose working content differs from its index entry.
func (r *Repo) DiffWorktree() (string, error) {
	idx, err := r.LoadIndex()
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, e := range idx.Entries {
		if e.Stage != 0 {
			continue
		}
		staged, err := r.Store.ReadBlob(e.ID)
		if err != nil {
			return "", err
		}
		working, err := r.readWorkFile(e.Path)
		if err != nil {
			if os.IsNotExist(err) {
				working = nil
			} else {
				return "", err
			}
		}
		out.WriteString(diff.Unified(e.Path, staged.Data, working))
	}
	return out.String(), nil
}

// DiffStaged renders unified diffs of staged changes: the HEAD tree
// against the index.
func (r *Repo) DiffStaged() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", err
	}
	headTree, err := r.CommitTree(head.ID)
	if err != nil {
		return "", err
	}
	idx, err := r.LoadIndex()
	if err != nil {
		return "", err
	}

	paths := map[string]bool{}
	for p := range headTree {
		paths[p] = true
	}
	indexed := map[string][]byte{}
	for _, e := range idx.Entries {
		if e.Stage != 0 {
			continue
		}
		blob, err := r.Store.ReadBlob(e.ID)
		if err != nil {
			return "", err
		}
		indexed[e.Path] = blob.Data
		paths[e.Path] = true
	}

	var sorted []string
	for p := range paths {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	var out strings.Builder
	for _, p := range sorted {
		var old []byte
		if te, ok := headTree[p]; ok {
			blob, err := r.Store.ReadBlob(te.ID)
			if err != nil {
				return "", err
			}
			old = blob.Data
		}
		out.WriteString(diff.Unified(p, old, indexed[p]))
	}
	return out.String(), nil
}
