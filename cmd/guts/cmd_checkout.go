package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/guts/pkg/repo"
)

func newCheckoutCmd() *cobra.Command {
	var newBranch bool

	cmd := &cobra.Command{
		Use:   "checkout <branch|revision>",
		Short: "Switch branches or detach HEAD at a commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			target := args[0]
			out := cmd.OutOrStdout()

			if newBranch {
				if err := r.CheckoutNewBranch(target); err != nil {
					return err
				}
				fmt.Fprintf(out, "switched to a new branch %q\n", target)
				return nil
			}

			if r.BranchExists(target) {
				if err := r.CheckoutBranch(target); err != nil {
					return err
				}
				fmt.Fprintf(out, "switched to branch %q\n", target)
				return nil
			}

			id, err := r.ResolveRevision(target)
			if err != nil {
				return err
			}
			if err := r.CheckoutDetached(id); err != nil {
				return err
			}
			fmt.Fprintf(out, "HEAD is now at %s\n", id.Short())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&newBranch, "branch", "b", false, "create the branch, then switch to it")
	return cmd
}
