package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WorkFile is one file found by the scanner.
type WorkFile struct {
	Path string // repo-relative, slash-separated
	Info fs.FileInfo
}

// ScanWorktree walks the working tree from the repository root, skipping
// .git and ignored paths, and returns the regular files and symlinks
// found, keyed by repo-relative path.
func (r *Repo) ScanWorktree(ignore *IgnoreMatcher) (map[string]WorkFile, error) {
	files := make(map[string]WorkFile)
	err := filepath.WalkDir(r.RootDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == r.RootDir {
			return nil
		}
		rel, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if ignore.Ignored(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if ignore.Ignored(rel, false) {
			return nil
		}
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files[rel] = WorkFile{Path: rel, Info: info}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan worktree: %w", err)
	}
	return files, nil
}

// readWorkFile reads a working file's content as it would be stored: a
// symlink becomes the bytes of its target path.
func (r *Repo) readWorkFile(rel string) ([]byte, error) {
	abs := r.WorkPath(rel)
	fi, err := os.Lstat(abs)
	if err != nil {
		return nil, err
	}
	if fi.Mode()&fs.ModeSymlink != 0 {
		target, err := os.Readlink(abs)
		if err != nil {
			return nil, err
		}
		return []byte(target), nil
	}
	return os.ReadFile(abs)
}
