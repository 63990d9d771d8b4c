package repo

import (
	"github.com/odvcencio/guts/pkg/object"
)

// FlatEntry is one path in a flattened tree: the wire mode string and the
// blob id.
type FlatEntry struct {
	Mode string
	ID   object.Hash
}

// FlattenTree walks the tree rooted at id and returns a map from
// repo-relative path to (mode, blob id). A zero id yields an empty map,
// which is the tree of an unborn HEAD.
func (r *Repo) FlattenTree(id object.Hash) (map[string]FlatEntry, error) {
	flat := make(map[string]FlatEntry)
	if id.IsZero() {
		return flat, nil
	}
	if err := r.flattenInto(id, "", flat); err != nil {
		return nil, err
	}
	return flat, nil
}

func (r *Repo) flattenInto(id object.Hash, prefix string, flat map[string]FlatEntry) error {
	tree, err := r.Store.ReadTree(id)
	if err != nil {
		return err
	}
	for _, e := range tree.Entries {
		path := e.Name
		if prefix != "" {
			path = prefix + "/" + e.Name
		}
		if e.IsDir() {
			if err := r.flattenInto(e.ID, path, flat); err != nil {
				return err
			}
			continue
		}
		flat[path] = FlatEntry{Mode: e.Mode, ID: e.ID}
	}
	return nil
}

// CommitTree returns the flattened tree of a commit, or an empty map for
// the zero id.
func (r *Repo) CommitTree(commitID object.Hash) (map[string]FlatEntry, error) {
	if commitID.IsZero() {
		return map[string]FlatEntry{}, nil
	}
	c, err := r.Store.ReadCommit(commitID)
	if err != nil {
		return nil, err
	}
	return r.FlattenTree(c.Tree)
}
