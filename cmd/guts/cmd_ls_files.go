package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/guts/pkg/repo"
)

func newLsFilesCmd() *cobra.Command {
	var stage bool

	cmd := &cobra.Command{
		Use:   "ls-files",
		Short: "List paths recorded in the index",
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

			out := cmd.OutOrStdout()
			last := ""
			for _, e := range idx.Entries {
				if stage {
					fmt.Fprintf(out, "%06s %s %d\t%s\n", e.TreeMode(), e.ID, e.Stage, e.Path)
					continue
				}
				if e.Path != last {
					fmt.Fprintln(out, e.Path)
					last = e.Path
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&stage, "stage", "s", false, "show mode, object id and stage number")
	return cmd
}
