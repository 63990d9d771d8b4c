package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/guts/pkg/object"
	"github.com/odvcencio/guts/pkg/repo"
)

func newHashObjectCmd() *cobra.Command {
	var write bool
	var stdin bool

	cmd := &cobra.Command{
		Use:   "hash-object [file...]",
		Short: "Compute object id, optionally writing the blob to the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			var r *repo.Repo
			if write {
				var err error
				if r, err = repo.Open("."); err != nil {
					return err
				}
			}

			emit := func(data []byte) error {
				if write {
					id, err := r.Store.WriteBlob(&object.Blob{Data: data})
					if err != nil {
						return err
					}
					fmt.Fprintln(out, id)
					return nil
				}
				id, _ := object.HashObject(object.TypeBlob, data)
				fmt.Fprintln(out, id)
				return nil
			}

			if stdin {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				return emit(data)
			}
			if len(args) == 0 {
				return fmt.Errorf("no files given (use --stdin to read standard input)")
			}
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				if err := emit(data); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the object to the store")
	cmd.Flags().BoolVar(&stdin, "stdin", false, "read content from standard input")
	return cmd
}
