package repo

import (
	"fmt"
	"slices"
	"strings"

	"github.com/estebanpuyanas/FVT/pkg/object"
)

// Log returns up to limit commits reachable from HEAD, newest first. A limit
// of zero or less returns the full history.
func (r *Repo) Log(limit int) ([]*Commit, error) {
	head, err := r.Head()
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	return r.graph.Log(head, limit)
}

// ChangeKind classifies how a path differs between a commit and its parent.
type ChangeKind byte

const (
	ChangeAdded    ChangeKind = 'A'
	ChangeModified ChangeKind = 'M'
	ChangeDeleted  ChangeKind = 'D'
)

func (k ChangeKind) String() string { return string(k) }

// FileChange is one entry of a commit's diff against its parent.
type FileChange struct {
	Path string
	Kind ChangeKind
	Hash object.Hash // new hash; the old hash for deletions
}

// ChangedFiles diffs c's file set against its parent's, sorted by path. A
// root commit reports every file as added.
func (r *Repo) ChangedFiles(c *Commit) ([]FileChange, error) {
	parent := Index{}
	if !c.IsRoot() {
		p, err := r.graph.Get(c.Parent)
		if err != nil {
			return nil, fmt.Errorf("changed files: %w", err)
		}
		parent = p.Files
	}

	var out []FileChange
	for path, h := range c.Files {
		old, ok := parent[path]
		switch {
		case !ok:
			out = append(out, FileChange{Path: path, Kind: ChangeAdded, Hash: h})
		case old != h:
			out = append(out, FileChange{Path: path, Kind: ChangeModified, Hash: h})
		}
	}
	for path, h := range parent {
		if _, ok := c.Files[path]; !ok {
			out = append(out, FileChange{Path: path, Kind: ChangeDeleted, Hash: h})
		}
	}
	slices.SortFunc(out, func(a, b FileChange) int { return strings.Compare(a.Path, b.Path) })
	return out, nil
}
