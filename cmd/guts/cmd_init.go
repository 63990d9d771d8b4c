package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/guts/pkg/repo"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [directory]",
		Short: "Create an empty repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			r, err := repo.Init(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty repository in %s\n", r.GitDir)
			return nil
		},
	}
}
