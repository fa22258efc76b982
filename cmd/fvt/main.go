package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "fvt 0.1.0-dev"

func main() {
	if err := newRootCmd(defaultEnv()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorf("error:"), err)
		os.Exit(1)
	}
}

// newRootCmd assembles the command tree. Global flag defaults come from
// base, which lets the interactive shell carry the outer invocation's flags
// into every command it runs.
func newRootCmd(base env) *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "fvt",
		Short:         "Minimal content-addressed version control",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&e.logLevel, "log-level", base.logLevel, "log level: debug, info, warn, error (env FVT_LOG_LEVEL)")
	flags.BoolVar(&e.noColor, "no-color", base.noColor, "disable colored output")
	flags.StringVarP(&e.dir, "dir", "C", base.dir, "run as if started in this directory")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(e))
	root.AddCommand(newCommitCmd(e))
	root.AddCommand(newLogCmd(e))
	root.AddCommand(newCheckoutCmd(e))
	root.AddCommand(newBranchCmd(e))
	root.AddCommand(newStatusCmd(e))
	root.AddCommand(newChangelogCmd(e))
	root.AddCommand(newShowCmd(e))
	root.AddCommand(newVerifyCmd(e))
	root.AddCommand(newReflogCmd(e))
	root.AddCommand(newShellCmd(e))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
