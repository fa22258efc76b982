package repo

import (
	"fmt"
	"slices"
	"strings"
)

// FileStatus is the state of a working-tree file relative to the index.
type FileStatus int

const (
	StatusModified  FileStatus = iota // tracked, content differs from the index
	StatusDeleted                     // tracked, missing from disk
	StatusUntracked                   // on disk, not in the index
	StatusUnreadable                  // on disk, could not be hashed
)

func (s FileStatus) String() string {
	switch s {
	case StatusModified:
		return "modified"
	case StatusDeleted:
		return "deleted"
	case StatusUntracked:
		return "untracked"
	case StatusUnreadable:
		return "unreadable"
	default:
		return fmt.Sprintf("FileStatus(%d)", int(s))
	}
}

// StatusEntry records the status of a single file. Clean files are not
// reported.
type StatusEntry struct {
	Path   string
	Status FileStatus
	Err    error // set for StatusUnreadable
}

// Status compares the working tree against the index, sorted by path.
func (r *Repo) Status() ([]StatusEntry, error) {
	idx, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	work, failures, err := r.ComputeIndex(nil)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	var out []StatusEntry
	for p, h := range work {
		old, tracked := idx[p]
		switch {
		case !tracked:
			out = append(out, StatusEntry{Path: p, Status: StatusUntracked})
		case old != h:
			out = append(out, StatusEntry{Path: p, Status: StatusModified})
		}
	}
	unreadable := make(map[string]bool, len(failures))
	for _, fe := range failures {
		unreadable[fe.Path] = true
		out = append(out, StatusEntry{Path: fe.Path, Status: StatusUnreadable, Err: fe.Err})
	}
	for _, p := range DiffIndex(idx, r.existsInWorktree) {
		if !unreadable[p] {
			out = append(out, StatusEntry{Path: p, Status: StatusDeleted})
		}
	}

	slices.SortFunc(out, func(a, b StatusEntry) int { return strings.Compare(a.Path, b.Path) })
	return out, nil
}

// IsClean reports whether no tracked file is modified or deleted. Untracked
// files do not count.
func (r *Repo) IsClean() (bool, error) {
	entries, err := r.Status()
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Status == StatusModified || e.Status == StatusDeleted {
			return false, nil
		}
	}
	return true, nil
}
