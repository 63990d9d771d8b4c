package index

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/guts/pkg/object"
)

// ErrUnmergedEntries reports an attempt to build a tree from an index that
// still carries conflict stages.
var ErrUnmergedEntries = errors.New("unmerged index entries")

// treeNode is one directory level under construction.
type treeNode struct {
	files    []object.TreeEntry
	children map[string]*treeNode
}

func newTreeNode() *treeNode {
	return &treeNode{children: map[string]*treeNode{}}
}

// WriteTree converts the flat entry list into a tree of trees, writes
// every tree object to the store, and returns the root id. After it
// returns, the store contains every object the root references.
func (idx *Index) WriteTree(store *object.Store) (object.Hash, error) {
	if idx.HasConflicts() {
		return object.ZeroHash, fmt.Errorf("%w: %s", ErrUnmergedEntries, strings.Join(idx.ConflictPaths(), ", "))
	}

	root := newTreeNode()
	for _, e := range idx.Entries {
		node := root
		parts := strings.Split(e.Path, "/")
		for _, dir := range parts[:len(parts)-1] {
			child, ok := node.children[dir]
			if !ok {
				child = newTreeNode()
				node.children[dir] = child
			}
			node = child
		}
		node.files = append(node.files, object.TreeEntry{
			Mode: e.TreeMode(),
			Name: parts[len(parts)-1],
			ID:   e.ID,
		})
	}

	return writeTreeNode(store, root)
}

// writeTreeNode writes node's subtrees bottom-up, then the node itself.
func writeTreeNode(store *object.Store, node *treeNode) (object.Hash, error) {
	entries := append([]object.TreeEntry(nil), node.files...)
	for name, child := range node.children {
		id, err := writeTreeNode(store, child)
		if err != nil {
			return object.ZeroHash, err
		}
		entries = append(entries, object.TreeEntry{
			Mode: object.TreeModeDir,
			Name: name,
			ID:   id,
		})
	}
	return store.WriteTree(&object.Tree{Entries: entries})
}
