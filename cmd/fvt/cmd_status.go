package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/estebanpuyanas/FVT/pkg/repo"
)

func newStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show working tree changes since the last commit or checkout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := e.open()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			head, err := r.Head()
			if err != nil {
				return err
			}
			if head.IsNull() {
				fmt.Fprintf(out, "on %s (no commits yet)\n", headLabel(r))
			} else {
				fmt.Fprintf(out, "on %s at %s\n", headLabel(r), hashColor(head.Short()))
			}

			entries, err := r.Status()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "nothing to commit, working tree clean")
				return nil
			}
			for _, en := range entries {
				switch en.Status {
				case repo.StatusModified:
					fmt.Fprintf(out, "  %s %s\n", warnColor("~"), en.Path)
				case repo.StatusDeleted:
					fmt.Fprintf(out, "  %s %s\n", removedColor("-"), en.Path)
				case repo.StatusUntracked:
					fmt.Fprintf(out, "  %s %s\n", addedColor("?"), en.Path)
				case repo.StatusUnreadable:
					fmt.Fprintf(out, "  %s %s (%v)\n", removedColor("!"), en.Path, en.Err)
				}
			}
			return nil
		},
	}
}
