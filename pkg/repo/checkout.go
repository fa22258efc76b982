package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/estebanpuyanas/FVT/pkg/object"
)

// CheckoutOptions controls Checkout.
type CheckoutOptions struct {
	// Force discards uncommitted modifications to tracked files and
	// overwrites untracked files that collide with the target.
	Force bool
}

// CheckoutResult describes what a checkout changed.
type CheckoutResult struct {
	Commit  *Commit
	Branch  string   // set when the target named a branch
	Written []string // files materialized from the store
	Removed []string // tracked files absent from the target
}

// Checkout switches the working tree to target, which is tried first as a
// commit identifier (see Graph.Resolve) and then as a branch name. Unknown
// targets fail with ErrNotFound and leave HEAD untouched.
//
// Checking out a branch attaches HEAD to it; checking out a commit detaches.
func (r *Repo) Checkout(target string, opts CheckoutOptions) (*CheckoutResult, error) {
	l, err := r.lock("checkout")
	if err != nil {
		return nil, err
	}
	defer l.release()

	c, branch, err := r.resolveCheckoutTarget(target)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	cur, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	if !opts.Force {
		if err := r.ensureSafeToCheckout(cur, c.Files); err != nil {
			return nil, fmt.Errorf("checkout: %w", err)
		}
	}

	res := &CheckoutResult{Commit: c, Branch: branch}
	for _, p := range cur.Paths() {
		if _, keep := c.Files[p]; keep {
			continue
		}
		abs := r.absPath(p)
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("checkout: %w", ioErr("remove", abs, err))
		}
		r.removeEmptyParents(filepath.Dir(abs))
		res.Removed = append(res.Removed, p)
	}

	for _, p := range c.Files.Paths() {
		h := c.Files[p]
		if onDisk, err := r.Store.HashFile(r.absPath(p)); err == nil && onDisk == h {
			continue
		}
		if err := r.materialize(p, h); err != nil {
			return nil, fmt.Errorf("checkout: %w", err)
		}
		res.Written = append(res.Written, p)
	}

	if err := r.WriteIndex(c.Files); err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	if err := r.writeHead(c.Hash); err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	if err := r.setAttachedBranch(branch); err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	r.logger.Info("checked out",
		zap.String("target", target),
		zap.String("commit", c.Hash.Short()),
		zap.String("branch", branch),
		zap.Int("written", len(res.Written)),
		zap.Int("removed", len(res.Removed)),
	)
	return res, nil
}

func (r *Repo) resolveCheckoutTarget(target string) (*Commit, string, error) {
	c, err := r.graph.Resolve(target)
	if err == nil {
		return c, "", nil
	}
	if !errors.Is(err, ErrCommitNotFound) {
		return nil, "", err
	}

	if ValidateBranchName(target) == nil {
		b, err := r.ResolveBranch(target)
		if err == nil {
			c, err := r.graph.Get(b.Target)
			if err != nil {
				return nil, "", fmt.Errorf("branch %q: %w", target, err)
			}
			return c, b.Name, nil
		}
		if !errors.Is(err, ErrBranchNotFound) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("%q: %w", target, ErrNotFound)
}

// ensureSafeToCheckout refuses when a tracked file has unsaved
// modifications, or when something untracked occupies a path the target
// would write: a differing file, a directory, or anything unreadable.
func (r *Repo) ensureSafeToCheckout(cur, target Index) error {
	for _, p := range cur.Paths() {
		onDisk, err := r.Store.HashFile(r.absPath(p))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		if onDisk != cur[p] {
			return fmt.Errorf("%w: %s is modified", ErrDirtyWorktree, p)
		}
	}
	for _, p := range target.Paths() {
		if _, tracked := cur[p]; tracked {
			continue
		}
		onDisk, err := r.Store.HashFile(r.absPath(p))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: %s cannot be replaced: %w", ErrDirtyWorktree, p, err)
		}
		if onDisk != target[p] {
			return fmt.Errorf("%w: untracked %s would be overwritten", ErrDirtyWorktree, p)
		}
	}
	return nil
}

// materialize writes object h to rel through a temp file renamed into place.
func (r *Repo) materialize(rel string, h object.Hash) error {
	abs := r.absPath(rel)
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ioErr("mkdir", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(abs)+"-tmp-*")
	if err != nil {
		return ioErr("create", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := r.Store.CopyTo(tmp, h); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return ioErr("close", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return ioErr("chmod", tmpName, err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		os.Remove(tmpName)
		return ioErr("rename", abs, err)
	}
	return nil
}

// removeEmptyParents removes empty directories up to, but not including,
// the repository root.
func (r *Repo) removeEmptyParents(dir string) {
	for dir != r.RootDir && strings.HasPrefix(dir, r.RootDir+string(filepath.Separator)) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if os.Remove(dir) != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
