package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/guts/pkg/repo"
)

func newDiffCmd() *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "diff [--cached]",
		Short: "Show unstaged changes, or staged changes with --cached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			var text string
			if cached {
				text, err = r.DiffStaged()
			} else {
				text, err = r.DiffWorktree()
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "compare the index against HEAD instead of the working tree")
	return cmd
}
