package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/guts/pkg/object"
	"github.com/odvcencio/guts/pkg/repo"
)

func newCommitTreeCmd() *cobra.Command {
	var message string
	var parents []string

	cmd := &cobra.Command{
		Use:   "commit-tree <tree>",
		Short: "Create a commit object from an existing tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("a message is required (-m)")
			}
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			identity, err := r.Identity()
			if err != nil {
				return err
			}

			tree, err := r.ResolveRevision(args[0])
			if err != nil {
				return err
			}
			var parentIDs []object.Hash
			for _, p := range parents {
				id, err := r.ResolveRevision(p)
				if err != nil {
					return err
				}
				parentIDs = append(parentIDs, id)
			}

			msg := message
			if msg[len(msg)-1] != '\n' {
				msg += "\n"
			}
			sig := identity.Signature(time.Now())
			id, err := r.Store.WriteCommit(&object.Commit{
				Tree:      tree,
				Parents:   parentIDs,
				Author:    sig,
				Committer: sig,
				Message:   msg,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringArrayVarP(&parents, "parent", "p", nil, "parent commit (repeatable)")
	return cmd
}
