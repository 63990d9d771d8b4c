package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/guts/pkg/repo"
)

func newRevParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rev-parse <revision>...",
		Short: "Resolve revisions to object ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, rev := range args {
				id, err := r.ResolveRevision(rev)
				if err != nil {
					return fmt.Errorf("%s: %w", rev, err)
				}
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}
}
