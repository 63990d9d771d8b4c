// Package repo implements repository state and the operations the
// porcelain commands compose: staging, status, checkout, reset, commit,
// branches, and merging.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/odvcencio/guts/pkg/index"
	"github.com/odvcencio/guts/pkg/object"
)

// Repo represents an opened repository.
type Repo struct {
	RootDir string        // working directory root
	GitDir  string        // .git/ directory
	Store   *object.Store // content-addressed object store

	log zerolog.Logger
}

// Open searches upward from path for a .git/ directory and opens the
// repository.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gitDir := filepath.Join(cur, ".git")
		info, err := os.Stat(gitDir)
		if err == nil && info.IsDir() {
			return &Repo{
				RootDir: cur,
				GitDir:  gitDir,
				Store:   object.NewStore(gitDir),
				log:     traceLogger(),
			}, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("%w (searched from %s up to /)", ErrNotARepository, abs)
		}
		cur = parent
	}
}

// IndexPath returns the location of the binary index file.
func (r *Repo) IndexPath() string {
	return filepath.Join(r.GitDir, "index")
}

// LoadIndex reads the staging area; a missing file yields an empty index.
func (r *Repo) LoadIndex() (*index.Index, error) {
	return index.Load(r.IndexPath())
}

// SaveIndex persists the staging area atomically.
func (r *Repo) SaveIndex(idx *index.Index) error {
	return idx.Save(r.IndexPath())
}

// WorkPath maps a repo-relative path to its absolute location in the
// working tree.
func (r *Repo) WorkPath(rel string) string {
	return filepath.Join(r.RootDir, filepath.FromSlash(rel))
}

// RelPath normalizes a user-supplied path (absolute or relative to the
// process working directory) into the repo-relative slash form used
// throughout. Paths outside the working tree are rejected.
func (r *Repo) RelPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidPath, path, err)
	}
	rel, err := filepath.Rel(r.RootDir, abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidPath, path, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %s is outside the repository", ErrInvalidPath, path)
	}
	if rel == ".git" || strings.HasPrefix(rel, ".git/") {
		return "", fmt.Errorf("%w: %s is inside .git", ErrInvalidPath, path)
	}
	return rel, nil
}
