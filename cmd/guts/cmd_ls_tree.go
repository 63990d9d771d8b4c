package main

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/odvcencio/guts/pkg/object"
	"github.com/odvcencio/guts/pkg/repo"
)

func newLsTreeCmd() *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "ls-tree <tree-ish>",
		Short: "List the contents of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			id, err := r.ResolveRevision(args[0])
			if err != nil {
				return err
			}

			// Accept commits as well as trees, like cat-file accepts both.
			if t, err := r.Store.Type(id); err == nil && t == object.TypeCommit {
				c, err := r.Store.ReadCommit(id)
				if err != nil {
					return err
				}
				id = c.Tree
			}
			return printTree(cmd, r, id, "", recursive)
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into subtrees")
	return cmd
}

func printTree(cmd *cobra.Command, r *repo.Repo, id object.Hash, prefix string, recursive bool) error {
	tree, err := r.Store.ReadTree(id)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, e := range tree.Entries {
		name := path.Join(prefix, e.Name)
		if e.IsDir() && recursive {
			if err := printTree(cmd, r, e.ID, name, true); err != nil {
				return err
			}
			continue
		}
		kind := object.TypeBlob
		mode := e.Mode
		if e.IsDir() {
			kind = object.TypeTree
			mode = "040000"
		}
		fmt.Fprintf(out, "%s %s %s\t%s\n", mode, kind, e.ID, name)
	}
	return nil
}
