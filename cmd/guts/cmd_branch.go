package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/guts/pkg/repo"
)

func newBranchCmd() *cobra.Command {
	var deleteBranch bool

	cmd := &cobra.Command{
		Use:   "branch [name] [start-point]",
		Short: "List, create, or delete branches",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if deleteBranch {
				if len(args) != 1 {
					return fmt.Errorf("-d takes exactly one branch name")
				}
				if err := r.DeleteBranch(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(out, "deleted branch %s\n", args[0])
				return nil
			}

			if len(args) == 0 {
				branches, err := r.ListBranches()
				if err != nil {
					return err
				}
				for _, b := range branches {
					marker := " "
					if b.Current {
						marker = "*"
					}
					fmt.Fprintf(out, "%s %s %s\n", marker, b.ID.Short(), b.Name)
				}
				return nil
			}

			start := "HEAD"
			if len(args) == 2 {
				start = args[1]
			}
			id, err := r.ResolveRevision(start)
			if err != nil {
				return err
			}
			return r.CreateBranch(args[0], id)
		},
	}

	cmd.Flags().BoolVarP(&deleteBranch, "delete", "d", false, "delete the named branch")
	return cmd
}
