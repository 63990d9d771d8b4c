package repo

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotARepository reports that no repository was found at or above
	// the starting directory.
	ErrNotARepository = errors.New("not a guts repository")

	// ErrRefNotFound reports a revision that resolves to nothing: not a
	// ref, not an object id prefix.
	ErrRefNotFound = errors.New("ref not found")

	// ErrUnbornHead reports an operation that needs a commit on HEAD
	// while HEAD points at a branch with no commits yet.
	ErrUnbornHead = errors.New("HEAD points at an unborn branch")

	// ErrMissingIdentity reports a commit attempted without a configured
	// author name and email.
	ErrMissingIdentity = errors.New("author identity not configured (set GUTS_AUTHOR_NAME and GUTS_AUTHOR_EMAIL)")

	// ErrInvalidPath reports a path outside the working tree, an absolute
	// path, or a directory where a file is required.
	ErrInvalidPath = errors.New("invalid path")

	// ErrNothingToCommit reports a commit attempt with nothing staged.
	ErrNothingToCommit = errors.New("nothing to commit")

	// ErrBranchExists reports branch creation over an existing branch.
	ErrBranchExists = errors.New("branch already exists")

	// ErrAlreadyUpToDate reports a merge whose other side is already
	// reachable from HEAD.
	ErrAlreadyUpToDate = errors.New("already up to date")
)

// WouldOverwriteError aborts a checkout that would clobber local
// modifications. When it is returned, the working tree has not been
// touched.
type WouldOverwriteError struct {
	Paths []string
}

func (e *WouldOverwriteError) Error() string {
	return fmt.Sprintf("checkout would overwrite local changes: %s", strings.Join(e.Paths, ", "))
}

// MergeConflictError reports a merge that stopped with conflicts. The
// index holds the conflict stages. Files merged line by line carry
// markers; binary and delete/modify conflicts keep one side's content.
type MergeConflictError struct {
	Paths []string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("merge conflict in: %s", strings.Join(e.Paths, ", "))
}
