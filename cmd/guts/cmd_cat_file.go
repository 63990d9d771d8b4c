package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/guts/pkg/object"
	"github.com/odvcencio/guts/pkg/repo"
)

func newCatFileCmd() *cobra.Command {
	var showType bool
	var prettyPrint bool

	cmd := &cobra.Command{
		Use:   "cat-file (-t | -p) <object>",
		Short: "Show object type or content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if showType == prettyPrint {
				return fmt.Errorf("exactly one of -t or -p is required")
			}
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			id, err := r.ResolveRevision(args[0])
			if err != nil {
				return err
			}

			objType, payload, err := r.Store.Read(id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if showType {
				fmt.Fprintln(out, objType)
				return nil
			}

			switch objType {
			case object.TypeTree:
				tree, err := object.UnmarshalTree(payload, false)
				if err != nil {
					return err
				}
				for _, e := range tree.Entries {
					fmt.Fprintln(out, formatTreeEntry(e))
				}
			default:
				out.Write(payload)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showType, "type", "t", false, "show the object's type")
	cmd.Flags().BoolVarP(&prettyPrint, "print", "p", false, "pretty-print the object's content")
	return cmd
}

func formatTreeEntry(e object.TreeEntry) string {
	kind := object.TypeBlob
	mode := e.Mode
	if e.IsDir() {
		kind = object.TypeTree
		mode = "040000"
	}
	return fmt.Sprintf("%s %s %s\t%s", mode, kind, e.ID, e.Name)
}
