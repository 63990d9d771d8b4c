package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/odvcencio/guts/pkg/index"
	"github.com/odvcencio/guts/pkg/object"
)

// Add stages the given paths. A directory argument is walked (honoring
// ignore rules) and every file under it is staged. A missing path is an
// error unless it is currently tracked, in which case the entry is
// removed, mirroring what happened on disk.
func (r *Repo) Add(paths []string) error {
	idx, err := r.LoadIndex()
	if err != nil {
		return err
	}
	ignore := NewIgnoreMatcher(r.RootDir)

	for _, p := range paths {
		rel, err := r.RelPath(p)
		if err != nil {
			return err
		}

		fi, err := os.Lstat(r.WorkPath(rel))
		if err != nil {
			if os.IsNotExist(err) {
				if _, tracked := idx.Get(rel); tracked {
					idx.Remove(rel)
					r.log.Trace().Str("path", rel).Msg("staged deletion")
					continue
				}
				return fmt.Errorf("%w: %s does not exist", ErrInvalidPath, p)
			}
			return fmt.Errorf("add %s: %w", p, err)
		}

		if fi.IsDir() {
			if err := r.addDir(idx, ignore, rel); err != nil {
				return err
			}
			continue
		}
		if err := r.stageFile(idx, rel); err != nil {
			return err
		}
	}

	return r.SaveIndex(idx)
}

func (r *Repo) addDir(idx *index.Index, ignore *IgnoreMatcher, rel string) error {
	root := r.WorkPath(rel)
	return filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		sub, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return err
		}
		sub = filepath.ToSlash(sub)
		if d.IsDir() {
			if ignore.Ignored(sub, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if ignore.Ignored(sub, false) {
			return nil
		}
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		return r.stageFile(idx, sub)
	})
}

// stageFile hashes one working file into the store and records it at
// stage 0. Files whose stat fingerprint matches the existing entry are
// left alone.
func (r *Repo) stageFile(idx *index.Index, rel string) error {
	abs := r.WorkPath(rel)
	fi, err := os.Lstat(abs)
	if err != nil {
		return fmt.Errorf("add %s: %w", rel, err)
	}
	if existing, ok := idx.Get(rel); ok && existing.FreshAgainst(fi) {
		return nil
	}

	content, err := r.readWorkFile(rel)
	if err != nil {
		return fmt.Errorf("add %s: %w", rel, err)
	}
	id, err := r.Store.WriteBlob(&object.Blob{Data: content})
	if err != nil {
		return err
	}

	entry, err := index.EntryFromFile(abs, rel, id)
	if err != nil {
		return err
	}
	idx.Set(entry)
	r.log.Trace().Str("path", rel).Str("blob", id.String()).Msg("staged")
	return nil
}

// Remove unstages the given paths. Unless cached is set, the working
// files are deleted too. Paths not in the index are an error.
func (r *Repo) Remove(paths []string, cached bool) error {
	idx, err := r.LoadIndex()
	if err != nil {
		return err
	}

	var rels []string
	for _, p := range paths {
		rel, err := r.RelPath(p)
		if err != nil {
			return err
		}
		if _, ok := idx.Get(rel); !ok {
			return fmt.Errorf("%w: %s is not tracked", ErrInvalidPath, p)
		}
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	for _, rel := range rels {
		idx.Remove(rel)
		if cached {
			continue
		}
		if err := os.Remove(r.WorkPath(rel)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("rm %s: %w", rel, err)
		}
		removeEmptyParents(r.RootDir, rel)
	}

	return r.SaveIndex(idx)
}

// removeEmptyParents deletes now-empty directories between rel's parent
// and the repository root.
func removeEmptyParents(root, rel string) {
	dir := filepath.Dir(filepath.Join(root, filepath.FromSlash(rel)))
	for dir != root {
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
