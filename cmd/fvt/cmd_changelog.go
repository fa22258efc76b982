package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/estebanpuyanas/FVT/pkg/repo"
)

func newChangelogCmd(e *env) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "changelog [commit]",
		Short: "Describe a commit and the files it changed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := e.open()
			if err != nil {
				return err
			}

			ident := "HEAD"
			if len(args) == 1 {
				ident = args[0]
			}
			c, err := resolveCommit(r, ident)
			if err != nil {
				return err
			}

			if output == "" {
				return r.Changelog(cmd.OutOrStdout(), c)
			}
			return writeChangelogFile(r, c, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the changelog to a file instead of stdout")
	return cmd
}

func writeChangelogFile(r *repo.Repo, c *repo.Commit, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("changelog: %w", err)
	}
	if err := r.Changelog(f, c); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("changelog: close %s: %w", path, err)
	}
	return nil
}

// resolveCommit resolves HEAD, a branch name, or anything Graph.Resolve
// accepts.
func resolveCommit(r *repo.Repo, ident string) (*repo.Commit, error) {
	if ident == "HEAD" {
		head, err := r.Head()
		if err != nil {
			return nil, err
		}
		if head.IsNull() {
			return nil, repo.ErrNoCommits
		}
		return r.Graph().Get(head)
	}
	c, err := r.Graph().Resolve(ident)
	if err == nil {
		return c, nil
	}
	if b, berr := r.ResolveBranch(ident); berr == nil {
		return r.Graph().Get(b.Target)
	}
	return nil, err
}
