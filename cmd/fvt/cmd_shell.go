package main

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/estebanpuyanas/FVT/pkg/repo"
)

const shellPrompt = "fvt> "

func newShellCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively",
		Long: "Read commands from stdin, one per line, until exit, quit or " +
			"end of input. Besides the regular commands the shell understands " +
			"history [n], history search <term>, stats and help. Commit " +
			"messages must be quoted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sh := &shell{
				base:    e.snapshot(),
				session: NewSession(),
				out:     cmd.OutOrStdout(),
				errOut:  cmd.ErrOrStderr(),
			}
			return sh.run(cmd.InOrStdin())
		},
	}
}

type shell struct {
	base    env
	session *Session
	out     io.Writer
	errOut  io.Writer
}

func (sh *shell) run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(sh.out, shellPrompt)
		if !sc.Scan() {
			fmt.Fprintln(sh.out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if done := sh.exec(line); done {
			return nil
		}
	}
}

// exec runs one line and reports whether the shell should exit.
func (sh *shell) exec(line string) bool {
	tokens, err := SplitArgs(line)
	if err != nil {
		sh.session.Record(line, "")
		sh.fail(err)
		return false
	}
	name := tokens[0].Text

	switch name {
	case "exit", "quit":
		sh.session.Record(line, name)
		return true
	case "history":
		sh.session.Record(line, name)
		sh.fail(sh.history(tokens[1:]))
		return false
	case "stats":
		sh.session.Record(line, name)
		for _, u := range sh.session.Usage() {
			fmt.Fprintf(sh.out, "%-10s %d\n", u.Command, u.Count)
		}
		return false
	case "help":
		sh.session.Record(line, name)
		fmt.Fprintf(sh.out, "commands: %s\n", strings.Join(sh.commandNames(), ", "))
		fmt.Fprintln(sh.out, "builtins: history [n], history search <term>, stats, help, exit")
		return false
	case "shell":
		sh.session.Record(line, "")
		sh.fail(fmt.Errorf("already in a shell: %w", repo.ErrInvalidArgument))
		return false
	}

	known := sh.commandNames()
	if !slices.Contains(known, name) {
		sh.session.Record(line, "")
		msg := fmt.Sprintf("unknown command %q", name)
		if s := Suggest(name, append(known, "history", "stats", "help", "exit", "quit")); s != "" {
			msg += fmt.Sprintf(", did you mean %q?", s)
		}
		fmt.Fprintln(sh.errOut, errorf("error:"), msg)
		return false
	}

	sh.session.Record(line, name)
	if name == "commit" {
		if err := requireQuotedMessage(tokens[1:]); err != nil {
			sh.fail(err)
			return false
		}
	}

	args := make([]string, len(tokens))
	for i, t := range tokens {
		args[i] = t.Text
	}
	root := newRootCmd(sh.base)
	root.SetArgs(args)
	root.SetOut(sh.out)
	root.SetErr(sh.errOut)
	sh.fail(root.Execute())
	return false
}

func (sh *shell) history(args []Token) error {
	switch {
	case len(args) == 0:
		sh.printLines(sh.session.History(0))
	case args[0].Text == "search":
		if len(args) < 2 {
			return fmt.Errorf("history search: missing term: %w", repo.ErrInvalidArgument)
		}
		terms := make([]string, 0, len(args)-1)
		for _, t := range args[1:] {
			terms = append(terms, t.Text)
		}
		matches := sh.session.Search(strings.Join(terms, " "))
		if len(matches) == 0 {
			fmt.Fprintln(sh.out, "no matching command in history")
			return nil
		}
		sh.printLines(matches)
	default:
		n, err := strconv.Atoi(args[0].Text)
		if err != nil || n <= 0 {
			return fmt.Errorf("history: %q is not a positive count: %w", args[0].Text, repo.ErrInvalidArgument)
		}
		sh.printLines(sh.session.History(n))
	}
	return nil
}

func (sh *shell) printLines(lines []string) {
	for i, l := range lines {
		fmt.Fprintf(sh.out, "%4d  %s\n", i+1, l)
	}
}

func (sh *shell) fail(err error) {
	if err != nil {
		fmt.Fprintln(sh.errOut, errorf("error:"), err)
	}
}

// commandNames lists the commands the shell can dispatch, sorted.
func (sh *shell) commandNames() []string {
	var names []string
	for _, c := range newRootCmd(sh.base).Commands() {
		if c.Name() != "shell" && !c.Hidden {
			names = append(names, c.Name())
		}
	}
	sort.Strings(names)
	return names
}

// requireQuotedMessage checks that a commit's -m value was typed in quotes.
func requireQuotedMessage(args []Token) error {
	for i, t := range args {
		switch {
		case t.Text == "-m" || t.Text == "--message":
			if i+1 < len(args) && args[i+1].Quoted {
				return nil
			}
			return fmt.Errorf("commit: %w: quote the message, e.g. commit -m \"fix parser\"", repo.ErrInvalidMessage)
		case strings.HasPrefix(t.Text, "-m") || strings.HasPrefix(t.Text, "--message="):
			if t.Quoted {
				return nil
			}
			return fmt.Errorf("commit: %w: quote the message, e.g. commit -m \"fix parser\"", repo.ErrInvalidMessage)
		}
	}
	return fmt.Errorf("commit: %w: missing -m", repo.ErrInvalidMessage)
}
