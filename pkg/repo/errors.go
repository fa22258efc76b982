package repo

import (
	"errors"
	"fmt"

	"github.com/estebanpuyanas/FVT/pkg/object"
)

var (
	ErrNoRepository      = errors.New("not an fvt repository")
	ErrRepositoryExists  = errors.New("repository already exists")
	ErrCommitNotFound    = errors.New("commit not found")
	ErrCommitExists      = errors.New("commit already recorded")
	ErrAmbiguousCommit   = errors.New("ambiguous commit prefix")
	ErrBranchNotFound    = errors.New("branch not found")
	ErrDuplicateBranch   = errors.New("branch already exists")
	ErrInvalidBranchName = errors.New("invalid branch name")
	ErrNoCommits         = errors.New("no commits yet")
	ErrInvalidMessage    = errors.New("invalid commit message")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("no such commit or branch")
	ErrNotFastForward    = errors.New("not a fast-forward")
	ErrNothingToCommit   = errors.New("nothing to commit")
	ErrDirtyWorktree     = errors.New("working tree has uncommitted changes")
	ErrLocked            = errors.New("repository is locked")
	ErrRefCASMismatch    = errors.New("ref compare-and-swap mismatch")
)

// These are shared with the object store so callers only need one import
// to classify failures.
var (
	ErrIO             = object.ErrIO
	ErrObjectNotFound = object.ErrObjectNotFound
)

// IOError reports a read, write or create failure on a file.
type IOError = object.IOError

func ioErr(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}

// FileError records why a single file could not be included in a commit.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }
