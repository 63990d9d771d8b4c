package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/odvcencio/guts/pkg/repo"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			st, err := r.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			switch st.Head.Kind {
			case repo.HeadUnborn:
				fmt.Fprintf(out, "on %s (no commits yet)\n", st.Head.Branch)
			case repo.HeadOnBranch:
				fmt.Fprintf(out, "on %s\n", st.Head.Branch)
			case repo.HeadDetached:
				fmt.Fprintf(out, "HEAD detached at %s\n", st.Head.ID.Short())
			}

			if len(st.Conflicts) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "conflicts:")
				for _, p := range st.Conflicts {
					fmt.Fprintf(out, "  ! %s\n", p)
				}
			}

			printChanges(out, "staged:", st.Staged)
			printChanges(out, "unstaged:", st.Unstaged)

			if len(st.Untracked) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "untracked:")
				for _, p := range st.Untracked {
					fmt.Fprintf(out, "  %s\n", p)
				}
			}

			if st.Clean() {
				fmt.Fprintln(out, "nothing to commit, working tree clean")
			}
			return nil
		},
	}
}

func printChanges(out io.Writer, header string, changes []repo.Change) {
	if len(changes) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, header)
	for _, c := range changes {
		marker := "~"
		switch c.Kind {
		case repo.Added:
			marker = "+"
		case repo.Deleted:
			marker = "-"
		}
		fmt.Fprintf(out, "  %s %s\n", marker, c.Path)
	}
}
