package repo

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/odvcencio/guts/pkg/diff3"
	"github.com/odvcencio/guts/pkg/index"
	"github.com/odvcencio/guts/pkg/object"
)

// MergeBase returns the lowest common ancestor of two commits: every
// ancestor of a is marked by one breadth-first walk, then a second walk
// from b returns the first marked commit it reaches. A zero hash means
// no common ancestor.
func (r *Repo) MergeBase(a, b object.Hash) (object.Hash, error) {
	marked := map[object.Hash]bool{}
	if err := r.bfsAncestors(a, func(h object.Hash) bool {
		marked[h] = true
		return false
	}); err != nil {
		return object.ZeroHash, err
	}

	var base object.Hash
	if err := r.bfsAncestors(b, func(h object.Hash) bool {
		if marked[h] {
			base = h
			return true
		}
		return false
	}); err != nil {
		return object.ZeroHash, err
	}
	return base, nil
}

// bfsAncestors walks the commit graph breadth-first from start, calling
// visit on each commit. A true return stops the walk.
func (r *Repo) bfsAncestors(start object.Hash, visit func(object.Hash) bool) error {
	seen := map[object.Hash]bool{}
	queue := []object.Hash{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		if visit(cur) {
			return nil
		}
		c, err := r.Store.ReadCommit(cur)
		if err != nil {
			return err
		}
		queue = append(queue, c.Parents...)
	}
	return nil
}

// mergeOutcome is the decision for a single path.
type mergeOutcome struct {
	path string

	// Clean result: content+mode to keep, or absent (delete).
	content []byte
	mode    string
	absent  bool

	// Conflict state.
	conflict            bool
	base, ours, theirs  FlatEntry // zero ID where a side lacks the path
	hasBase, hasOurs    bool
	hasTheirs           bool
}

// Merge three-way merges the commit named by other into HEAD. On success
// it creates a commit with two parents and advances HEAD. On conflicts
// it writes marker files, records stages 1/2/3 in the index, and returns
// a MergeConflictError; no commit is created.
func (r *Repo) Merge(other object.Hash, message string, signer CommitSigner) (object.Hash, error) {
	head, err := r.Head()
	if err != nil {
		return object.ZeroHash, err
	}
	if head.Kind == HeadUnborn {
		return object.ZeroHash, fmt.Errorf("%w: nothing to merge into", ErrUnbornHead)
	}
	if other == head.ID {
		return object.ZeroHash, ErrAlreadyUpToDate
	}

	base, err := r.MergeBase(head.ID, other)
	if err != nil {
		return object.ZeroHash, err
	}
	if base == other {
		return object.ZeroHash, ErrAlreadyUpToDate
	}

	baseTree, err := r.CommitTree(base)
	if err != nil {
		return object.ZeroHash, err
	}
	oursTree, err := r.CommitTree(head.ID)
	if err != nil {
		return object.ZeroHash, err
	}
	theirsTree, err := r.CommitTree(other)
	if err != nil {
		return object.ZeroHash, err
	}

	outcomes, err := r.mergeTrees(baseTree, oursTree, theirsTree)
	if err != nil {
		return object.ZeroHash, err
	}

	idx, err := r.LoadIndex()
	if err != nil {
		return object.ZeroHash, err
	}
	if unsafe := r.mergeUnsafePaths(idx, oursTree, outcomes); len(unsafe) > 0 {
		return object.ZeroHash, &WouldOverwriteError{Paths: unsafe}
	}

	var conflicts []string
	for _, out := range outcomes {
		if err := r.applyMergeOutcome(idx, out); err != nil {
			return object.ZeroHash, err
		}
		if out.conflict {
			conflicts = append(conflicts, out.path)
		}
	}
	if err := r.SaveIndex(idx); err != nil {
		return object.ZeroHash, err
	}

	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		r.log.Trace().Strs("paths", conflicts).Msg("merge stopped on conflicts")
		return object.ZeroHash, &MergeConflictError{Paths: conflicts}
	}

	return r.Commit(CommitOptions{
		Message: message,
		Signer:  signer,
		Merging: []object.Hash{other},
	})
}

// mergeTrees applies the per-path decision table and returns an outcome
// for every path whose result differs from ours (plus every conflict).
func (r *Repo) mergeTrees(base, ours, theirs map[string]FlatEntry) ([]mergeOutcome, error) {
	paths := map[string]bool{}
	for p := range base {
		paths[p] = true
	}
	for p := range ours {
		paths[p] = true
	}
	for p := range theirs {
		paths[p] = true
	}

	var sorted []string
	for p := range paths {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	var outcomes []mergeOutcome
	for _, path := range sorted {
		b, hasB := base[path]
		o, hasO := ours[path]
		t, hasT := theirs[path]

		switch {
		case hasO == hasT && o == t:
			// Both sides agree; nothing to do.
			continue
		case hasO == hasB && o == b:
			// Only theirs changed.
			out := mergeOutcome{path: path}
			if hasT {
				blob, err := r.Store.ReadBlob(t.ID)
				if err != nil {
					return nil, err
				}
				out.content, out.mode = blob.Data, t.Mode
			} else {
				out.absent = true
			}
			outcomes = append(outcomes, out)
		case hasT == hasB && t == b:
			// Only ours changed; working tree already has it.
			continue
		default:
			out, err := r.mergeBothChanged(path, b, o, t, hasB, hasO, hasT)
			if err != nil {
				return nil, err
			}
			outcomes = append(outcomes, out)
		}
	}
	return outcomes, nil
}

// mergeBothChanged handles paths both sides touched: attempt a line-level
// merge when both sides still have the file, conflict otherwise.
func (r *Repo) mergeBothChanged(path string, b, o, t FlatEntry, hasB, hasO, hasT bool) (mergeOutcome, error) {
	out := mergeOutcome{
		path: path,
		base: b, ours: o, theirs: t,
		hasBase: hasB, hasOurs: hasO, hasTheirs: hasT,
	}

	if !hasO || !hasT {
		// Delete on one side, modify on the other. Keep the surviving
		// side's content on disk and record the conflict.
		out.conflict = true
		side := o
		if !hasO {
			side = t
		}
		blob, err := r.Store.ReadBlob(side.ID)
		if err != nil {
			return out, err
		}
		out.content, out.mode = blob.Data, side.Mode
		return out, nil
	}

	baseData := []byte{}
	if hasB {
		blob, err := r.Store.ReadBlob(b.ID)
		if err != nil {
			return out, err
		}
		baseData = blob.Data
	}
	oursBlob, err := r.Store.ReadBlob(o.ID)
	if err != nil {
		return out, err
	}
	theirsBlob, err := r.Store.ReadBlob(t.ID)
	if err != nil {
		return out, err
	}

	// Files with NUL bytes are not line-mergeable; keep ours on disk and
	// surface the conflict.
	if bytes.IndexByte(oursBlob.Data, 0) >= 0 || bytes.IndexByte(theirsBlob.Data, 0) >= 0 ||
		bytes.IndexByte(baseData, 0) >= 0 {
		out.conflict = true
		out.content, out.mode = oursBlob.Data, o.Mode
		return out, nil
	}

	result := diff3.Merge(baseData, oursBlob.Data, theirsBlob.Data)
	out.content, out.mode = result.Merged, o.Mode
	out.conflict = result.HasConflicts
	return out, nil
}

// mergeUnsafePaths lists paths the merge would rewrite whose working
// copy differs from the index (or which are untracked but present).
func (r *Repo) mergeUnsafePaths(idx *index.Index, ours map[string]FlatEntry, outcomes []mergeOutcome) []string {
	var unsafe []string
	for _, out := range outcomes {
		if e, ok := idx.Get(out.path); ok {
			if te, inOurs := ours[out.path]; inOurs && te.ID == e.ID {
				clean, exists := r.workMatchesEntry(e)
				if !exists || clean {
					continue
				}
			}
			unsafe = append(unsafe, out.path)
			continue
		}
		if _, err := os.Lstat(r.WorkPath(out.path)); err == nil {
			unsafe = append(unsafe, out.path)
		}
	}
	sort.Strings(unsafe)
	return unsafe
}

// applyMergeOutcome writes one path's result to disk and index.
func (r *Repo) applyMergeOutcome(idx *index.Index, out mergeOutcome) error {
	if out.absent {
		idx.Remove(out.path)
		if err := os.Remove(r.WorkPath(out.path)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("merge remove %s: %w", out.path, err)
		}
		removeEmptyParents(r.RootDir, out.path)
		return nil
	}

	mode := out.mode
	if mode == "" {
		mode = object.TreeModeFile
	}
	blobID, err := r.Store.WriteBlob(&object.Blob{Data: out.content})
	if err != nil {
		return err
	}
	if _, err := r.writeWorkFile(out.path, FlatEntry{Mode: mode, ID: blobID}); err != nil {
		return err
	}

	if !out.conflict {
		entry, err := index.EntryFromFile(r.WorkPath(out.path), out.path, blobID)
		if err != nil {
			return err
		}
		idx.Set(entry)
		return nil
	}

	idx.SetConflict(out.path,
		conflictEntry(out.base, out.hasBase),
		conflictEntry(out.ours, out.hasOurs),
		conflictEntry(out.theirs, out.hasTheirs),
	)
	return nil
}

func conflictEntry(fe FlatEntry, present bool) *index.Entry {
	if !present {
		return nil
	}
	mode := uint32(index.ModeFile)
	switch fe.Mode {
	case object.TreeModeExecutable:
		mode = index.ModeExecutable
	case object.TreeModeSymlink:
		mode = index.ModeSymlink
	}
	return &index.Entry{Mode: mode, ID: fe.ID}
}
