package repo

import (
	"github.com/odvcencio/guts/pkg/index"
	"github.com/odvcencio/guts/pkg/object"
)

// ResetMode selects how much state Reset rewrites.
type ResetMode int

const (
	// ResetSoft moves HEAD only.
	ResetSoft ResetMode = iota
	// ResetMixed also resets the index to the target commit's tree.
	ResetMixed
	// ResetHard also rewrites the working tree, discarding local
	// modifications.
	ResetHard
)

// Reset moves HEAD (the branch pointer when on a branch, HEAD itself when
// detached) to the given commit, then rewrites index and working tree
// according to mode. --hard deliberately skips the overwrite safety
// check.
func (r *Repo) Reset(target object.Hash, mode ResetMode) error {
	c, err := r.Store.ReadCommit(target)
	if err != nil {
		return err
	}

	if mode == ResetHard {
		tree, err := r.FlattenTree(c.Tree)
		if err != nil {
			return err
		}
		if err := r.materializeTree(tree, true); err != nil {
			return err
		}
	} else if mode == ResetMixed {
		idx, err := index.FromTree(r.Store, c.Tree)
		if err != nil {
			return err
		}
		if err := r.SaveIndex(idx); err != nil {
			return err
		}
	}

	head, err := r.Head()
	if err != nil {
		return err
	}
	if head.Kind == HeadDetached {
		return r.SetHeadDetached(target)
	}
	return r.UpdateBranch(head.Branch, target)
}
