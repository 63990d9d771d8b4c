package repo

import (
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/guts/pkg/object"
)

// CommitSigner produces a detached signature over the commit payload.
// The returned text is stored under the commit's signature header.
type CommitSigner func(payload []byte) (string, error)

// CommitOptions configures Commit.
type CommitOptions struct {
	Message string
	Signer  CommitSigner  // optional
	Merging []object.Hash // extra parents recorded by a merge
}

// Commit writes the staged tree and a commit object, then advances HEAD.
// Objects are written before the ref moves, so an interrupted commit can
// leave unreferenced objects but never a ref pointing at a missing one.
//
// A commit with nothing staged (empty index on an unborn branch, or a
// staged tree identical to HEAD's) is refused, except when recording a
// merge.
func (r *Repo) Commit(opts CommitOptions) (object.Hash, error) {
	if strings.TrimSpace(opts.Message) == "" {
		return object.ZeroHash, fmt.Errorf("empty commit message")
	}
	identity, err := r.Identity()
	if err != nil {
		return object.ZeroHash, err
	}

	idx, err := r.LoadIndex()
	if err != nil {
		return object.ZeroHash, err
	}
	if idx.HasConflicts() {
		return object.ZeroHash, fmt.Errorf("cannot commit with unresolved conflicts: %s", strings.Join(idx.ConflictPaths(), ", "))
	}

	head, err := r.Head()
	if err != nil {
		return object.ZeroHash, err
	}
	if head.Kind == HeadUnborn && len(idx.Entries) == 0 {
		return object.ZeroHash, ErrNothingToCommit
	}

	tree, err := idx.WriteTree(r.Store)
	if err != nil {
		return object.ZeroHash, err
	}

	var parents []object.Hash
	if head.Kind != HeadUnborn {
		parents = append(parents, head.ID)
		if len(opts.Merging) == 0 {
			parent, err := r.Store.ReadCommit(head.ID)
			if err != nil {
				return object.ZeroHash, err
			}
			if parent.Tree == tree {
				return object.ZeroHash, ErrNothingToCommit
			}
		}
	}
	parents = append(parents, opts.Merging...)

	msg := opts.Message
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	sig := identity.Signature(time.Now())
	c := &object.Commit{
		Tree:      tree,
		Parents:   parents,
		Author:    sig,
		Committer: sig,
		Message:   msg,
	}

	if opts.Signer != nil {
		signature, err := opts.Signer(object.SigningPayload(c))
		if err != nil {
			return object.ZeroHash, fmt.Errorf("sign commit: %w", err)
		}
		object.AttachSignature(c, signature)
	}

	id, err := r.Store.WriteCommit(c)
	if err != nil {
		return object.ZeroHash, err
	}

	switch head.Kind {
	case HeadDetached:
		err = r.SetHeadDetached(id)
	default:
		err = r.UpdateBranch(head.Branch, id)
	}
	if err != nil {
		return object.ZeroHash, err
	}

	r.log.Trace().Str("commit", id.String()).Str("tree", tree.String()).Msg("committed")
	return id, nil
}

// LogEntry pairs a commit with its id during history walks.
type LogEntry struct {
	ID     object.Hash
	Commit *object.Commit
}

// Log walks history from the given commit, following every parent with a
// visited set and yielding commits newest-first by committer date. limit
// <= 0 means unlimited.
func (r *Repo) Log(from object.Hash, limit int) ([]LogEntry, error) {
	if from.IsZero() {
		return nil, nil
	}

	seen := map[object.Hash]bool{from: true}
	frontier := []LogEntry{}

	load := func(id object.Hash) error {
		c, err := r.Store.ReadCommit(id)
		if err != nil {
			return err
		}
		frontier = append(frontier, LogEntry{ID: id, Commit: c})
		return nil
	}
	if err := load(from); err != nil {
		return nil, err
	}

	var entries []LogEntry
	for len(frontier) > 0 {
		if limit > 0 && len(entries) >= limit {
			break
		}

		// Pick the newest commit still on the frontier.
		best := 0
		for i := 1; i < len(frontier); i++ {
			if frontier[i].Commit.Committer.When > frontier[best].Commit.Committer.When {
				best = i
			}
		}
		next := frontier[best]
		frontier = append(frontier[:best], frontier[best+1:]...)
		entries = append(entries, next)

		for _, p := range next.Commit.Parents {
			if seen[p] {
				continue
			}
			seen[p] = true
			if err := load(p); err != nil {
				return nil, err
			}
		}
	}
	return entries, nil
}
