package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "guts",
		Short:         "A content-addressed version control engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newHashObjectCmd())
	root.AddCommand(newCatFileCmd())
	root.AddCommand(newWriteTreeCmd())
	root.AddCommand(newCommitTreeCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newRmCmd())
	root.AddCommand(newCommitCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newLogCmd())
	root.AddCommand(newCheckoutCmd())
	root.AddCommand(newResetCmd())
	root.AddCommand(newLsFilesCmd())
	root.AddCommand(newLsTreeCmd())
	root.AddCommand(newRevParseCmd())
	root.AddCommand(newShowRefCmd())
	root.AddCommand(newBranchCmd())
	root.AddCommand(newMergeCmd())
	root.AddCommand(newDiffCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "guts 0.1.0-dev")
		},
	}
}
