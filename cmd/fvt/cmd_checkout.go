package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/estebanpuyanas/FVT/pkg/repo"
)

func newCheckoutCmd(e *env) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "checkout <commit|branch>",
		Short: "Switch the working tree to a commit or branch",
		Long: "Switch the working tree to a commit (full hash, numeric id or " +
			"unique hash prefix) or, failing that, a branch.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := e.open()
			if err != nil {
				return err
			}
			res, err := r.Checkout(args[0], repo.CheckoutOptions{Force: force})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Branch != "" {
				fmt.Fprintf(out, "Switched to branch %s at %s\n", branchColor(res.Branch), hashColor(res.Commit.Hash.Short()))
			} else {
				fmt.Fprintf(out, "HEAD is now at %s %s (detached)\n", hashColor(res.Commit.Hash.Short()), res.Commit.Message)
			}
			if n := len(res.Written) + len(res.Removed); n > 0 {
				fmt.Fprintf(out, " %d written, %d removed\n", len(res.Written), len(res.Removed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "discard local modifications to tracked files")
	return cmd
}
