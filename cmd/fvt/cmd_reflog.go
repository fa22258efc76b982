package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/estebanpuyanas/FVT/pkg/repo"
)

func newReflogCmd(e *env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "reflog [branch]",
		Short: "Show how a branch has moved",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := e.open()
			if err != nil {
				return err
			}

			var branch string
			if len(args) == 1 {
				branch = args[0]
			} else {
				branch, err = r.AttachedBranch()
				if err != nil {
					return err
				}
				if branch == "" {
					return fmt.Errorf("reflog: HEAD is detached; name a branch: %w", repo.ErrInvalidArgument)
				}
			}
			if err := repo.ValidateBranchName(branch); err != nil {
				return err
			}

			entries, err := r.ReadReflog(branch, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, en := range entries {
				fmt.Fprintf(out, "%s@{%d} %s -> %s %s %s\n",
					branch, i, en.OldHash.Short(), hashColor(en.NewHash.Short()),
					en.Timestamp.Format(time.RFC3339), en.Reason)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "max-count", "n", 0, "show at most n entries")
	return cmd
}
