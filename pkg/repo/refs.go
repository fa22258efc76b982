package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/estebanpuyanas/FVT/pkg/object"
)

const (
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

func (r *Repo) branchRefPath(name string) string {
	return r.metaPath("refs", "heads", name)
}

// readRef returns the hash stored in a branch ref, or "" when the ref does
// not exist.
func (r *Repo) readRef(name string) (object.Hash, error) {
	path := r.branchRefPath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", ioErr("read", path, err)
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}

// updateRefCAS writes h to refs/heads/<name> through a <name>.lock file
// renamed into place. When expectedOld is given the update only succeeds if
// the ref currently holds that hash ("" meaning the ref must not exist).
// A reflog entry is appended after the rename.
func (r *Repo) updateRefCAS(name string, h object.Hash, reason string, expectedOld ...object.Hash) error {
	if len(expectedOld) > 1 {
		return fmt.Errorf("update ref %q: expected at most one old hash", name)
	}
	refPath := r.branchRefPath(name)
	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("update ref %q: %w", name, ioErr("mkdir", filepath.Dir(refPath), err))
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireRefLock(lockPath)
	if err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}
	cleanup := true
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		if cleanup {
			_ = os.Remove(lockPath)
		}
	}()

	oldHash, err := r.readRef(name)
	if err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}
	if len(expectedOld) == 1 && oldHash != expectedOld[0] {
		return fmt.Errorf("update ref %q: %w (expected %q, found %q)", name, ErrRefCASMismatch, expectedOld[0], oldHash)
	}

	if _, err := lockFile.WriteString(h.String() + "\n"); err != nil {
		return fmt.Errorf("update ref %q: %w", name, ioErr("write", lockPath, err))
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("update ref %q: %w", name, ioErr("sync", lockPath, err))
	}
	err = lockFile.Close()
	lockFile = nil
	if err != nil {
		return fmt.Errorf("update ref %q: %w", name, ioErr("close", lockPath, err))
	}
	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("update ref %q: %w", name, ioErr("rename", refPath, err))
	}
	cleanup = false

	if err := r.appendReflog(name, oldHash, h, reason); err != nil {
		// The ref itself moved; a missing history line is not worth failing for.
		r.logger.Warn("reflog append failed", zap.String("ref", name), zap.Error(err))
	}
	return nil
}

func (r *Repo) deleteRef(name string) error {
	path := r.branchRefPath(name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete ref %q: %w", name, ErrBranchNotFound)
		}
		return fmt.Errorf("delete ref %q: %w", name, ioErr("remove", path, err))
	}
	_ = os.Remove(r.reflogPath(name))
	return nil
}

func acquireRefLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(refLockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, ioErr("create", lockPath, err)
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: timeout waiting for %s", ErrLocked, lockPath)
		}
		time.Sleep(refLockRetryDelay)
	}
}
