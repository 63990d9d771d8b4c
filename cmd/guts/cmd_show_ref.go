package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/guts/pkg/repo"
)

func newShowRefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-ref",
		Short: "List references and the commits they point at",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			refs, err := r.ListRefs()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ref := range refs {
				fmt.Fprintf(out, "%s %s\n", ref.ID, ref.Name)
			}
			return nil
		},
	}
}
