package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newLogCmd(e *env) *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show commit history from HEAD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := e.open()
			if err != nil {
				return err
			}
			commits, err := r.Log(limit)
			if err != nil {
				return err
			}
			if len(commits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no commits yet")
				return nil
			}

			// Decorate commits that branches point at.
			branches, err := r.ListBranches()
			if err != nil {
				return err
			}
			decor := make(map[string][]string)
			for _, b := range branches {
				decor[b.Target.String()] = append(decor[b.Target.String()], b.Name)
			}

			out := cmd.OutOrStdout()
			for _, c := range commits {
				deco := ""
				if names := decor[c.Hash.String()]; len(names) > 0 {
					deco = " (" + branchColor(strings.Join(names, ", ")) + ")"
				}
				if oneline {
					fmt.Fprintf(out, "%s %d%s %s\n", hashColor(c.Hash.Short()), c.ID, deco, c.Message)
					continue
				}
				fmt.Fprintf(out, "commit %s%s\n", hashColor(c.Hash), deco)
				fmt.Fprintf(out, "Id:     %d\n", c.ID)
				fmt.Fprintf(out, "Date:   %s\n", c.Timestamp.Local().Format(time.DateTime))
				fmt.Fprintf(out, "Files:  %d\n", len(c.Files))
				fmt.Fprintln(out)
				fmt.Fprintf(out, "    %s\n", c.Message)
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "show one line per commit")
	cmd.Flags().IntVarP(&limit, "max-count", "n", 0, "limit number of commits shown")
	return cmd
}
