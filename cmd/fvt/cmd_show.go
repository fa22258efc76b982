package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <commit|branch>...",
		Short: "Print a one-line summary of commits or branches",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := e.open()
			if err != nil {
				return err
			}
			for _, ident := range args {
				d, err := r.Lookup(ident)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), d.Describe())
			}
			return nil
		},
	}
}
