package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/guts/pkg/repo"
)

func newResetCmd() *cobra.Command {
	var soft, mixed, hard bool

	cmd := &cobra.Command{
		Use:   "reset [--soft|--mixed|--hard] <revision>",
		Short: "Move the current branch to another commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modes := 0
			for _, set := range []bool{soft, mixed, hard} {
				if set {
					modes++
				}
			}
			if modes > 1 {
				return fmt.Errorf("--soft, --mixed and --hard are mutually exclusive")
			}
			mode := repo.ResetMixed
			switch {
			case soft:
				mode = repo.ResetSoft
			case hard:
				mode = repo.ResetHard
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			target, err := r.ResolveRevision(args[0])
			if err != nil {
				return err
			}
			if err := r.Reset(target, mode); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "HEAD is now at %s\n", target.Short())
			return nil
		},
	}

	cmd.Flags().BoolVar(&soft, "soft", false, "move HEAD only")
	cmd.Flags().BoolVar(&mixed, "mixed", false, "move HEAD and reset the index (default)")
	cmd.Flags().BoolVar(&hard, "hard", false, "move HEAD, reset the index and the working tree")
	return cmd
}
