package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"github.com/estebanpuyanas/FVT/pkg/object"
)

// CommitResult describes what a commit recorded.
type CommitResult struct {
	Commit    *Commit
	Stored    []string    // paths whose content was written to the object store
	Unchanged []string    // paths carried over with an unchanged hash
	Deleted   []string    // previously tracked paths no longer on disk
	Failures  []FileError // files left out of the commit
}

// ValidateMessage rejects empty, whitespace-only and multi-line messages.
func ValidateMessage(msg string) error {
	if strings.TrimSpace(msg) == "" {
		return fmt.Errorf("%w: message is empty", ErrInvalidMessage)
	}
	if strings.ContainsAny(msg, "\r\n") {
		return fmt.Errorf("%w: message spans multiple lines", ErrInvalidMessage)
	}
	return nil
}

// Commit snapshots the working tree. With an empty fileset every
// non-ignored file is committed; otherwise only the named paths are
// re-hashed and merged into the previous index. Tracked files missing from
// disk are recorded as deleted. Files that cannot be read or stored are
// reported in the result's Failures and do not stop the commit; a file that
// was tracked before keeps its previous entry.
//
// The commit metadata, index, HEAD and attached branch are written in that
// order under the repository lock.
func (r *Repo) Commit(message string, fileset []string) (*CommitResult, error) {
	if err := ValidateMessage(message); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	message = strings.TrimSpace(message)

	l, err := r.lock("commit")
	if err != nil {
		return nil, err
	}
	defer l.release()

	head, err := r.Head()
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	prev, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	computed, hashFailures, err := r.ComputeIndex(fileset)
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	res := &CommitResult{Deleted: DiffIndex(prev, r.existsInWorktree)}
	deleted := make(map[string]bool, len(res.Deleted))
	for _, p := range res.Deleted {
		deleted[p] = true
	}

	next := computed
	if len(fileset) > 0 {
		next = prev.Clone()
		for p, h := range computed {
			next[p] = h
		}
	}
	for _, p := range res.Deleted {
		delete(next, p)
	}
	for _, fe := range hashFailures {
		if deleted[fe.Path] || (errors.Is(fe.Err, fs.ErrNotExist) && prev[fe.Path] != "") {
			continue
		}
		if old, ok := prev[fe.Path]; ok {
			next[fe.Path] = old
		}
		res.Failures = append(res.Failures, fe)
	}

	for _, p := range next.Paths() {
		h := next[p]
		if prev[p] == h && r.Store.Has(h) {
			res.Unchanged = append(res.Unchanged, p)
			continue
		}
		if _, err := r.Store.Put(h, r.absPath(p)); err != nil {
			res.Failures = append(res.Failures, FileError{Path: p, Err: err})
			if old, ok := prev[p]; ok && old != h && r.Store.Has(old) {
				next[p] = old
			} else {
				delete(next, p)
			}
			continue
		}
		res.Stored = append(res.Stored, p)
	}

	if len(next) == 0 && len(res.Deleted) == 0 {
		return res, fmt.Errorf("commit: %w", ErrNothingToCommit)
	}

	id, err := r.graph.NextID()
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	c := NewCommit(r.Hasher(), id, message, head, r.now(), next)
	if err := r.graph.Append(c); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	if err := r.WriteIndex(next); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	if err := r.writeHead(c.Hash); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	if err := r.advanceAttachedBranch(head, c.Hash); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	res.Commit = c

	r.logger.Info("commit created",
		zap.Uint64("id", c.ID),
		zap.String("hash", c.Hash.Short()),
		zap.Int("files", len(c.Files)),
		zap.Int("stored", len(res.Stored)),
		zap.Int("deleted", len(res.Deleted)),
		zap.Int("failures", len(res.Failures)),
	)
	for _, fe := range res.Failures {
		r.logger.Warn("file not committed", zap.String("path", fe.Path), zap.Error(fe.Err))
	}
	return res, nil
}

// advanceAttachedBranch moves the branch HEAD is attached to from oldHead
// to newHead. If the branch was moved elsewhere since HEAD attached to it,
// HEAD is detached instead of overwriting that move.
func (r *Repo) advanceAttachedBranch(oldHead, newHead object.Hash) error {
	branch, err := r.AttachedBranch()
	if err != nil || branch == "" {
		return err
	}
	err = r.updateRefCAS(branch, newHead, "commit: "+newHead.Short(), oldHead)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrRefCASMismatch) {
		return err
	}
	r.logger.Warn("attached branch moved; detaching HEAD", zap.String("branch", branch))
	return r.setAttachedBranch("")
}
