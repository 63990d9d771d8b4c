package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/guts/pkg/object"
)

// CreateBranch creates refs/heads/<name> pointing at id. Fails if the
// branch already exists or the name is unusable.
func (r *Repo) CreateBranch(name string, id object.Hash) error {
	if err := validateBranchName(name); err != nil {
		return err
	}
	if r.BranchExists(name) {
		return fmt.Errorf("%w: %s", ErrBranchExists, name)
	}
	return r.UpdateBranch(name, id)
}

// DeleteBranch removes refs/heads/<name>. The branch HEAD is on cannot
// be deleted.
func (r *Repo) DeleteBranch(name string) error {
	head, err := r.Head()
	if err != nil {
		return err
	}
	if head.Kind != HeadDetached && head.Branch == name {
		return fmt.Errorf("delete branch %q: checked out", name)
	}
	path := filepath.Join(r.GitDir, "refs", "heads", filepath.FromSlash(name))
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrRefNotFound, name)
		}
		return fmt.Errorf("delete branch %q: %w", name, err)
	}
	return nil
}

// Branch is one entry from ListBranches.
type Branch struct {
	Name    string
	ID      object.Hash
	Current bool
}

// ListBranches enumerates local branches sorted by name, marking the one
// HEAD is on.
func (r *Repo) ListBranches() ([]Branch, error) {
	refs, err := r.ListRefs()
	if err != nil {
		return nil, err
	}
	head, err := r.Head()
	if err != nil {
		return nil, err
	}

	var branches []Branch
	for _, ref := range refs {
		name, ok := strings.CutPrefix(ref.Name, "refs/heads/")
		if !ok {
			continue
		}
		branches = append(branches, Branch{
			Name:    name,
			ID:      ref.ID,
			Current: head.Kind == HeadOnBranch && head.Branch == name,
		})
	}
	return branches, nil
}

// validateBranchName rejects names that would collide with the ref
// layout or revision syntax.
func validateBranchName(name string) error {
	if name == "" || name == "HEAD" ||
		strings.HasPrefix(name, "-") || strings.HasPrefix(name, "/") ||
		strings.HasSuffix(name, "/") || strings.HasSuffix(name, ".lock") ||
		strings.Contains(name, "..") || strings.ContainsAny(name, " ~^:?*[\\\x00") {
		return fmt.Errorf("invalid branch name %q", name)
	}
	return nil
}
