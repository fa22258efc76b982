package repo

import (
	"errors"
	"fmt"
)

// Describer is implemented by repository entities that can summarize
// themselves in one line.
type Describer interface {
	Describe() string
}

var (
	_ Describer = (*Commit)(nil)
	_ Describer = Branch{}
)

// Lookup resolves ident in the same order as Checkout, commit identifier
// first and then branch name, and returns the *Commit or Branch it names.
// Unknown identifiers fail with ErrNotFound.
func (r *Repo) Lookup(ident string) (Describer, error) {
	c, err := r.graph.Resolve(ident)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrCommitNotFound) {
		return nil, err
	}
	if ValidateBranchName(ident) == nil {
		b, err := r.ResolveBranch(ident)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, ErrBranchNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%q: %w", ident, ErrNotFound)
}
