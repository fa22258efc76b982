package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVerifyCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check commits and stored objects for corruption",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := e.open()
			if err != nil {
				return err
			}
			report, err := r.Verify()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if report.OK() {
				fmt.Fprintf(out, "ok: verified %d commits, %d objects\n", report.Commits, report.Objects)
				return nil
			}
			for _, p := range report.Problems {
				fmt.Fprintf(out, "%s %v\n", removedColor("bad:"), p)
			}
			return fmt.Errorf("verify: %d problem(s) in %d commits", len(report.Problems), report.Commits)
		},
	}
}
