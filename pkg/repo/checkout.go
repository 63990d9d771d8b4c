package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/odvcencio/guts/pkg/index"
	"github.com/odvcencio/guts/pkg/object"
)

// CheckoutBranch materializes the tip of refs/heads/<name> and points
// HEAD at the branch. Local modifications that would be clobbered abort
// the whole operation before any file is touched.
func (r *Repo) CheckoutBranch(name string) error {
	id, err := r.readRef("refs/heads/" + name)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrRefNotFound, name)
		}
		return err
	}
	target, err := r.CommitTree(id)
	if err != nil {
		return err
	}
	if err := r.materializeTree(target, false); err != nil {
		return err
	}
	return r.SetHeadSymbolic(name)
}

// CheckoutDetached materializes the tree of the given commit and detaches
// HEAD at it.
func (r *Repo) CheckoutDetached(id object.Hash) error {
	target, err := r.CommitTree(id)
	if err != nil {
		return err
	}
	if err := r.materializeTree(target, false); err != nil {
		return err
	}
	return r.SetHeadDetached(id)
}

// CheckoutNewBranch creates a branch at the current HEAD commit and
// switches to it. The working tree and index are untouched. On an unborn
// HEAD only the symbolic ref moves; the branch is born with the first
// commit.
func (r *Repo) CheckoutNewBranch(name string) error {
	head, err := r.Head()
	if err != nil {
		return err
	}
	if head.Kind != HeadUnborn {
		if err := r.CreateBranch(name, head.ID); err != nil {
			return err
		}
	} else if err := validateBranchName(name); err != nil {
		return err
	}
	return r.SetHeadSymbolic(name)
}

// materializeTree rewrites the working tree and index to match target.
//
// The safety check is a pure pre-pass: every path is proven safe before
// the first disk mutation, so a WouldOverwriteError means nothing
// changed. force skips the check and is how reset --hard discards local
// modifications.
func (r *Repo) materializeTree(target map[string]FlatEntry, force bool) error {
	idx, err := r.LoadIndex()
	if err != nil {
		return err
	}

	if !force {
		if unsafe := r.unsafePaths(idx, target); len(unsafe) > 0 {
			return &WouldOverwriteError{Paths: unsafe}
		}
	}

	// Delete tracked files that are gone from the target.
	for _, e := range idx.Entries {
		if _, keep := target[e.Path]; keep {
			continue
		}
		if err := os.Remove(r.WorkPath(e.Path)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("checkout remove %s: %w", e.Path, err)
		}
		removeEmptyParents(r.RootDir, e.Path)
	}

	// Write target content, reusing fingerprints for files already in
	// place.
	next := index.New()
	for path, te := range target {
		old, tracked := idx.Get(path)
		if tracked && old.ID == te.ID && old.TreeMode() == te.Mode {
			if fi, err := os.Lstat(r.WorkPath(path)); err == nil && old.FreshAgainst(fi) {
				next.Set(old)
				continue
			}
		}
		entry, err := r.writeWorkFile(path, te)
		if err != nil {
			return err
		}
		next.Set(entry)
	}

	if err := r.SaveIndex(next); err != nil {
		return err
	}
	r.log.Trace().Int("paths", len(target)).Msg("tree materialized")
	return nil
}

// unsafePaths lists every path the transition to target would clobber:
// tracked files with local modifications that target deletes or rewrites,
// and untracked files that target would overwrite with different
// content.
func (r *Repo) unsafePaths(idx *index.Index, target map[string]FlatEntry) []string {
	var unsafe []string
	seen := map[string]bool{}

	for _, e := range idx.Entries {
		seen[e.Path] = true
		te, inTarget := target[e.Path]
		if inTarget && te.ID == e.ID && te.Mode == e.TreeMode() {
			continue
		}
		// Target deletes or rewrites this path; local modifications
		// would be lost.
		clean, exists := r.workMatchesEntry(e)
		if exists && !clean {
			unsafe = append(unsafe, e.Path)
		}
	}

	for path, te := range target {
		if seen[path] {
			continue
		}
		content, err := r.readWorkFile(path)
		if err != nil {
			continue // absent: nothing to clobber
		}
		id, _ := object.HashObject(object.TypeBlob, content)
		if id != te.ID {
			unsafe = append(unsafe, path)
		}
	}

	sort.Strings(unsafe)
	return unsafe
}

// workMatchesEntry reports whether the working file at e.Path exists and
// carries exactly the staged content.
func (r *Repo) workMatchesEntry(e *index.Entry) (clean, exists bool) {
	fi, err := os.Lstat(r.WorkPath(e.Path))
	if err != nil {
		return false, false
	}
	if e.FreshAgainst(fi) {
		return true, true
	}
	content, err := r.readWorkFile(e.Path)
	if err != nil {
		return false, true
	}
	id, _ := object.HashObject(object.TypeBlob, content)
	return id == e.ID, true
}

// writeWorkFile materializes one blob at path and returns its fresh index
// entry.
func (r *Repo) writeWorkFile(path string, te FlatEntry) (*index.Entry, error) {
	blob, err := r.Store.ReadBlob(te.ID)
	if err != nil {
		return nil, err
	}
	abs := r.WorkPath(path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("checkout %s: %w", path, err)
	}

	switch te.Mode {
	case object.TreeModeSymlink:
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("checkout %s: %w", path, err)
		}
		if err := os.Symlink(string(blob.Data), abs); err != nil {
			return nil, fmt.Errorf("checkout %s: %w", path, err)
		}
	default:
		perm := os.FileMode(0o644)
		if te.Mode == object.TreeModeExecutable {
			perm = 0o755
		}
		if err := os.WriteFile(abs, blob.Data, perm); err != nil {
			return nil, fmt.Errorf("checkout %s: %w", path, err)
		}
		// WriteFile leaves the old mode on an existing file.
		if err := os.Chmod(abs, perm); err != nil {
			return nil, fmt.Errorf("checkout %s: %w", path, err)
		}
	}

	return index.EntryFromFile(abs, path, te.ID)
}
