package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/guts/pkg/repo"
)

func newMergeCmd() *cobra.Command {
	var message string
	var sign bool
	var signingKey string

	cmd := &cobra.Command{
		Use:   "merge <branch|revision>",
		Short: "Merge another line of history into the current branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			other, err := r.ResolveRevision(args[0])
			if err != nil {
				return err
			}

			msg := message
			if msg == "" {
				msg = fmt.Sprintf("Merge %s", args[0])
			}

			var signer repo.CommitSigner
			if sign {
				s, keyPath, err := newSSHCommitSigner(r, signingKey)
				if err != nil {
					return err
				}
				signer = s
				fmt.Fprintf(cmd.ErrOrStderr(), "signing with %s\n", keyPath)
			}

			id, err := r.Merge(other, msg, signer)
			out := cmd.OutOrStdout()
			switch {
			case errors.Is(err, repo.ErrAlreadyUpToDate):
				fmt.Fprintln(out, "already up to date")
				return nil
			case err != nil:
				var conflict *repo.MergeConflictError
				if errors.As(err, &conflict) {
					fmt.Fprintln(out, "automatic merge failed; fix conflicts and commit the result")
					for _, p := range conflict.Paths {
						fmt.Fprintf(out, "  ! %s\n", p)
					}
				}
				return err
			}
			fmt.Fprintf(out, "merge made commit %s\n", id.Short())
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "merge commit message")
	cmd.Flags().BoolVarP(&sign, "sign", "S", false, "sign the merge commit with an SSH key")
	cmd.Flags().StringVar(&signingKey, "signing-key", "", "path to the SSH private key used with --sign")
	return cmd
}
