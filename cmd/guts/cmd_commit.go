package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/guts/pkg/repo"
)

func newCommitCmd() *cobra.Command {
	var message string
	var sign bool
	var signingKey string

	cmd := &cobra.Command{
		Use:   "commit -m <message>",
		Short: "Record the staged tree as a new commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("a message is required (-m)")
			}
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			opts := repo.CommitOptions{Message: message}
			if sign {
				signer, keyPath, err := newSSHCommitSigner(r, signingKey)
				if err != nil {
					return err
				}
				opts.Signer = signer
				fmt.Fprintf(cmd.ErrOrStderr(), "signing with %s\n", keyPath)
			}

			id, err := r.Commit(opts)
			if err != nil {
				return err
			}

			head, err := r.Head()
			if err != nil {
				return err
			}
			where := "detached HEAD"
			if head.Kind == repo.HeadOnBranch {
				where = head.Branch
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s", where, id.Short(), firstLine(message))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().BoolVarP(&sign, "sign", "S", false, "sign the commit with an SSH key")
	cmd.Flags().StringVar(&signingKey, "signing-key", "", "path to the SSH private key used with --sign")
	return cmd
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i] + "\n"
		}
	}
	return s + "\n"
}
