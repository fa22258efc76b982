package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/estebanpuyanas/FVT/pkg/repo"
)

func newCommitCmd(e *env) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "commit -m <message> [paths...]",
		Short: "Record a snapshot of the working tree",
		Long: "Record a snapshot of the working tree. Without paths every " +
			"non-ignored file is committed; with paths only those files are " +
			"re-hashed and the rest of the previous snapshot is kept.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := repo.ValidateMessage(message); err != nil {
				return fmt.Errorf("%w (use -m)", err)
			}
			r, err := e.open()
			if err != nil {
				return err
			}

			res, err := r.Commit(message, args)
			if res != nil {
				printFailures(cmd, res.Failures)
			}
			if err != nil {
				return err
			}

			c := res.Commit
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", headLabel(r), hashColor(c.Hash.Short()), c.Message)
			fmt.Fprintf(cmd.OutOrStdout(), " %d file(s): %d stored, %d unchanged, %d deleted\n",
				len(c.Files), len(res.Stored), len(res.Unchanged), len(res.Deleted))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message (single line)")
	return cmd
}

func printFailures(cmd *cobra.Command, failures []repo.FileError) {
	for _, fe := range failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s skipped %s: %v\n", warnColor("warning:"), fe.Path, fe.Err)
	}
}

// headLabel names what HEAD is on: the attached branch, or "detached".
func headLabel(r *repo.Repo) string {
	if b, err := r.AttachedBranch(); err == nil && b != "" {
		return branchColor(b)
	}
	return "detached"
}
