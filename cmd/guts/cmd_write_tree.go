package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/guts/pkg/repo"
)

func newWriteTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write-tree",
		Short: "Write the staged tree to the object store and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			idx, err := r.LoadIndex()
			if err != nil {
				return err
			}
			root, err := idx.WriteTree(r.Store)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), root)
			return nil
		},
	}
}
