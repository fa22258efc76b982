package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/estebanpuyanas/FVT/pkg/repo"
)

func newBranchCmd(e *env) *cobra.Command {
	var deleteBranch string
	var update, ffOnly bool

	cmd := &cobra.Command{
		Use:   "branch [name] | --update <name> <commit> | -d <name>",
		Short: "List, create, move, or delete branches",
		Args: func(cmd *cobra.Command, args []string) error {
			if update {
				return cobra.ExactArgs(2)(cmd, args)
			}
			return cobra.MaximumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := e.open()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case deleteBranch != "":
				if err := r.DeleteBranch(deleteBranch); err != nil {
					return err
				}
				fmt.Fprintf(out, "deleted branch '%s'\n", deleteBranch)
				return nil

			case update:
				b, err := r.UpdateBranch(args[0], args[1], repo.UpdateOptions{FastForwardOnly: ffOnly})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "branch '%s' now at %s\n", b.Name, hashColor(b.Target.Short()))
				return nil

			case len(args) == 1:
				b, err := r.CreateBranch(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "created branch '%s' at %s\n", b.Name, hashColor(b.Target.Short()))
				return nil
			}

			branches, err := r.ListBranches()
			if err != nil {
				return err
			}
			current, _ := r.AttachedBranch()
			for _, b := range branches {
				if b.Name == current {
					fmt.Fprintf(out, "* %s %s\n", branchColor(b.Name), hashColor(b.Target.Short()))
				} else {
					fmt.Fprintf(out, "  %s %s\n", b.Name, hashColor(b.Target.Short()))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&deleteBranch, "delete", "d", "", "delete the named branch")
	cmd.Flags().BoolVar(&update, "update", false, "move an existing branch to a commit")
	cmd.Flags().BoolVar(&ffOnly, "ff-only", false, "with --update, refuse moves that are not fast-forwards")
	return cmd
}
