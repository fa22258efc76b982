package repo

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/estebanpuyanas/FVT/pkg/object"
)

// Problem is one integrity failure found by Verify.
type Problem struct {
	Commit object.Hash // zero when the problem is not tied to a commit
	Path   string
	Err    error
}

func (p Problem) Error() string {
	switch {
	case p.Commit != "" && p.Path != "":
		return fmt.Sprintf("commit %s: %s: %v", p.Commit.Short(), p.Path, p.Err)
	case p.Commit != "":
		return fmt.Sprintf("commit %s: %v", p.Commit.Short(), p.Err)
	default:
		return p.Err.Error()
	}
}

func (p Problem) Unwrap() error { return p.Err }

// VerifyReport summarizes a full repository check.
type VerifyReport struct {
	Commits  int
	Objects  int
	Problems []Problem
}

// OK reports whether no problems were found.
func (v *VerifyReport) OK() bool { return len(v.Problems) == 0 }

// Verify checks every recorded commit: its hash must match its recomputed
// content, its parent must exist, and every file it names must be stored
// and intact. HEAD and each branch must point at recorded commits. Commit
// records that cannot be read or parsed are reported as well.
func (r *Repo) Verify() (*VerifyReport, error) {
	commits, damaged, err := r.graph.Audit()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	rep := &VerifyReport{Commits: len(commits) + len(damaged)}
	for _, h := range slices.Sorted(maps.Keys(damaged)) {
		rep.Problems = append(rep.Problems, Problem{Commit: h, Err: damaged[h]})
	}
	recorded := make(map[object.Hash]bool, len(commits))
	for _, c := range commits {
		recorded[c.Hash] = true
	}
	// checkTarget reports what a ref pointing at h would find.
	checkTarget := func(h object.Hash) error {
		if err, ok := damaged[h]; ok {
			return err
		}
		if !recorded[h] {
			return fmt.Errorf("%s: %w", h.Short(), ErrCommitNotFound)
		}
		return nil
	}
	checked := make(map[object.Hash]error)

	for _, c := range commits {
		again := NewCommit(r.Hasher(), c.ID, c.Message, c.Parent, c.Timestamp, c.Files)
		if again.Hash != c.Hash {
			rep.Problems = append(rep.Problems, Problem{
				Commit: c.Hash,
				Err:    fmt.Errorf("recomputed hash %s: %w", again.Hash.Short(), object.ErrCorruptObject),
			})
		}
		if !c.IsRoot() {
			if err := checkTarget(c.Parent); err != nil {
				rep.Problems = append(rep.Problems, Problem{Commit: c.Hash, Err: fmt.Errorf("parent: %w", err)})
			}
		}
		for _, p := range c.Files.Paths() {
			h := c.Files[p]
			err, seen := checked[h]
			if !seen {
				err = r.Store.Verify(h)
				checked[h] = err
			}
			if err != nil {
				rep.Problems = append(rep.Problems, Problem{Commit: c.Hash, Path: p, Err: err})
			}
		}
	}
	rep.Objects = len(checked)

	head, err := r.Head()
	if err != nil {
		rep.Problems = append(rep.Problems, Problem{Err: err})
	} else if !head.IsNull() {
		if err := checkTarget(head); err != nil {
			rep.Problems = append(rep.Problems, Problem{Err: fmt.Errorf("HEAD: %w", err)})
		}
	}

	branches, err := r.ListBranches()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	for _, b := range branches {
		if err := checkTarget(b.Target); err != nil {
			rep.Problems = append(rep.Problems, Problem{Err: fmt.Errorf("branch %s: %w", b.Name, err)})
		}
	}
	return rep, nil
}

// IsCorruption reports whether err describes damaged repository content
// rather than a missing or unreadable file.
func IsCorruption(err error) bool {
	return errors.Is(err, object.ErrCorruptObject) || errors.Is(err, object.ErrHashMismatch)
}
