package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/estebanpuyanas/FVT/pkg/logging"
	"github.com/estebanpuyanas/FVT/pkg/repo"
)

// env carries the global flags and the logger built from them.
type env struct {
	logLevel string
	noColor  bool
	dir      string

	logger *zap.Logger
}

func defaultEnv() env {
	level := os.Getenv("FVT_LOG_LEVEL")
	if level == "" {
		level = logging.DefaultLevel
	}
	return env{logLevel: level, dir: "."}
}

func (e *env) setup(cmd *cobra.Command) error {
	if e.noColor {
		color.NoColor = true
	}
	logger, err := logging.NewTo(cmd.ErrOrStderr(), e.logLevel)
	if err != nil {
		return err
	}
	e.logger = logger
	return nil
}

func (e *env) log() *zap.Logger {
	if e.logger == nil {
		return zap.NewNop()
	}
	return e.logger
}

func (e *env) open() (*repo.Repo, error) {
	return repo.Open(e.dir, repo.WithLogger(e.log()))
}

// snapshot returns the flag values for commands run from the shell.
func (e *env) snapshot() env {
	return env{logLevel: e.logLevel, noColor: e.noColor, dir: e.dir}
}

var (
	hashColor    = color.New(color.FgYellow).SprintFunc()
	branchColor  = color.New(color.FgGreen, color.Bold).SprintFunc()
	addedColor   = color.New(color.FgGreen).SprintFunc()
	removedColor = color.New(color.FgRed).SprintFunc()
	warnColor    = color.New(color.FgYellow).SprintFunc()
	errorf       = color.New(color.FgRed, color.Bold).SprintFunc()
)
