package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/guts/pkg/repo"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log [revision]",
		Short: "Show commit history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			rev := "HEAD"
			if len(args) == 1 {
				rev = args[0]
			}
			from, err := r.ResolveRevision(rev)
			if err != nil {
				return err
			}

			entries, err := r.Log(from, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, entry := range entries {
				c := entry.Commit
				if oneline {
					fmt.Fprintf(out, "%s %s\n", entry.ID.Short(), strings.TrimRight(firstLine(c.Message), "\n"))
					continue
				}

				fmt.Fprintf(out, "commit %s\n", entry.ID)
				fmt.Fprintf(out, "Author: %s <%s>\n", c.Author.Name, c.Author.Email)
				fmt.Fprintf(out, "Date:   %s\n", time.Unix(c.Author.When, 0).UTC().Format("2006-01-02 15:04:05"))
				fmt.Fprintln(out)
				for _, line := range strings.Split(strings.TrimRight(c.Message, "\n"), "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "one line per commit")
	cmd.Flags().IntVarP(&limit, "max-count", "n", 0, "limit the number of commits shown")
	return cmd
}
