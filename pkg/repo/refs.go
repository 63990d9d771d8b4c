package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/odvcencio/guts/pkg/object"
)

// symbolicChainLimit bounds the resolution loop in Head. Head takes a
// single "ref: " hop: the ref HEAD names is read as a plain id, so a ref
// file that itself holds "ref: " fails to parse rather than being followed.
const symbolicChainLimit = 5

const (
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

// HeadKind enumerates the states HEAD can be in.
type HeadKind int

const (
	// HeadUnborn: HEAD is symbolic to a branch that has no commits yet.
	HeadUnborn HeadKind = iota
	// HeadOnBranch: HEAD is symbolic to an existing branch.
	HeadOnBranch
	// HeadDetached: HEAD holds a raw commit id.
	HeadDetached
)

// HeadState is the resolved state of HEAD. Branch is set for Unborn and
// OnBranch; ID is set for OnBranch and Detached.
type HeadState struct {
	Kind   HeadKind
	Branch string
	ID     object.Hash
}

// Head reads and resolves .git/HEAD into a HeadState. A symbolic HEAD
// whose target branch does not exist resolves to Unborn rather than
// failing.
func (r *Repo) Head() (HeadState, error) {
	target := "HEAD"
	for hop := 0; hop < symbolicChainLimit; hop++ {
		data, err := os.ReadFile(filepath.Join(r.GitDir, filepath.FromSlash(target)))
		if err != nil {
			return HeadState{}, fmt.Errorf("read %s: %w", target, err)
		}
		content := strings.TrimSpace(string(data))

		if ref, ok := strings.CutPrefix(content, "ref: "); ok {
			branch := strings.TrimPrefix(ref, "refs/heads/")
			id, err := r.readRef(ref)
			if err != nil {
				if os.IsNotExist(err) {
					return HeadState{Kind: HeadUnborn, Branch: branch}, nil
				}
				return HeadState{}, err
			}
			return HeadState{Kind: HeadOnBranch, Branch: branch, ID: id}, nil
		}

		id, err := object.ParseHash(content)
		if err != nil {
			return HeadState{}, fmt.Errorf("parse %s: %w", target, err)
		}
		return HeadState{Kind: HeadDetached, ID: id}, nil
	}
	return HeadState{}, fmt.Errorf("resolve HEAD: symbolic chain longer than %d", symbolicChainLimit)
}

// CurrentBranch returns the branch HEAD is on, or false when detached.
func (r *Repo) CurrentBranch() (string, bool, error) {
	head, err := r.Head()
	if err != nil {
		return "", false, err
	}
	if head.Kind == HeadDetached {
		return "", false, nil
	}
	return head.Branch, true, nil
}

// readRef reads a single ref file given its full name, e.g.
// "refs/heads/main".
func (r *Repo) readRef(name string) (object.Hash, error) {
	data, err := os.ReadFile(filepath.Join(r.GitDir, filepath.FromSlash(name)))
	if err != nil {
		return object.ZeroHash, err
	}
	return object.ParseHash(strings.TrimSpace(string(data)))
}

// ResolveRevision resolves a user-supplied revision to a commit-ish id.
//
// Resolution order:
//  1. "HEAD" (an unborn HEAD is an error here).
//  2. A full ref path under .git/ ("refs/...").
//  3. A branch name ("refs/heads/<rev>").
//  4. A full 40-hex id or a short prefix (at least 4 hex digits).
func (r *Repo) ResolveRevision(rev string) (object.Hash, error) {
	if rev == "HEAD" {
		head, err := r.Head()
		if err != nil {
			return object.ZeroHash, err
		}
		if head.Kind == HeadUnborn {
			return object.ZeroHash, fmt.Errorf("%w: %s", ErrUnbornHead, head.Branch)
		}
		return head.ID, nil
	}

	if strings.HasPrefix(rev, "refs/") {
		id, err := r.readRef(rev)
		if err == nil {
			return id, nil
		}
		if !os.IsNotExist(err) {
			return object.ZeroHash, err
		}
		return object.ZeroHash, fmt.Errorf("%w: %s", ErrRefNotFound, rev)
	}

	if id, err := r.readRef("refs/heads/" + rev); err == nil {
		return id, nil
	} else if !os.IsNotExist(err) {
		return object.ZeroHash, err
	}

	id, err := r.Store.ResolvePrefix(rev)
	if err == nil {
		return id, nil
	}
	if errors.Is(err, object.ErrAmbiguousPrefix) {
		return object.ZeroHash, err
	}
	return object.ZeroHash, fmt.Errorf("%w: %s", ErrRefNotFound, rev)
}

// BranchExists reports whether refs/heads/<name> exists.
func (r *Repo) BranchExists(name string) bool {
	_, err := os.Stat(filepath.Join(r.GitDir, "refs", "heads", filepath.FromSlash(name)))
	return err == nil
}

// UpdateBranch writes refs/heads/<name> atomically: the new value goes to
// a lock file which is then renamed over the ref.
func (r *Repo) UpdateBranch(name string, h object.Hash) error {
	return r.updateRef("refs/heads/"+name, h)
}

func (r *Repo) updateRef(name string, h object.Hash) error {
	refPath := filepath.Join(r.GitDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireRefLock(lockPath)
	if err != nil {
		return fmt.Errorf("update ref %q: lock: %w", name, err)
	}
	cleanupLock := true
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		if cleanupLock {
			_ = os.Remove(lockPath)
		}
	}()

	if _, err := lockFile.WriteString(h.String() + "\n"); err != nil {
		return fmt.Errorf("update ref %q: write: %w", name, err)
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("update ref %q: sync: %w", name, err)
	}
	if err := lockFile.Close(); err != nil {
		lockFile = nil
		return fmt.Errorf("update ref %q: close: %w", name, err)
	}
	lockFile = nil

	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("update ref %q: rename: %w", name, err)
	}
	cleanupLock = false

	r.log.Trace().Str("ref", name).Str("id", h.String()).Msg("ref updated")
	return nil
}

func acquireRefLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(refLockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
			}
			time.Sleep(refLockRetryDelay)
			continue
		}
		return nil, err
	}
}

// SetHeadSymbolic points HEAD at a branch by name.
func (r *Repo) SetHeadSymbolic(branch string) error {
	content := "ref: refs/heads/" + branch + "\n"
	if err := os.WriteFile(filepath.Join(r.GitDir, "HEAD"), []byte(content), 0o644); err != nil {
		return fmt.Errorf("set HEAD: %w", err)
	}
	return nil
}

// SetHeadDetached points HEAD at a raw commit id.
func (r *Repo) SetHeadDetached(h object.Hash) error {
	if err := os.WriteFile(filepath.Join(r.GitDir, "HEAD"), []byte(h.String()+"\n"), 0o644); err != nil {
		return fmt.Errorf("set HEAD: %w", err)
	}
	return nil
}

// Ref is one name→id mapping from ListRefs.
type Ref struct {
	Name string // full name, e.g. "refs/heads/main" or "HEAD"
	ID   object.Hash
}

// ListRefs enumerates refs/heads/* sorted by name, plus HEAD when it
// resolves to a commit.
func (r *Repo) ListRefs() ([]Ref, error) {
	root := filepath.Join(r.GitDir, "refs")
	var refs []Ref
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasSuffix(path, ".lock") {
			return nil
		}
		rel, err := filepath.Rel(r.GitDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		id, err := r.readRef(name)
		if err != nil {
			return err
		}
		refs = append(refs, Ref{Name: name, ID: id})
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })

	head, err := r.Head()
	if err == nil && head.Kind != HeadUnborn {
		refs = append([]Ref{{Name: "HEAD", ID: head.ID}}, refs...)
	}
	return refs, nil
}
