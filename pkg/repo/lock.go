package repo

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const lockRetryDelay = 5 * time.Millisecond

// lockWaitLimit bounds how long a mutating operation waits for .fvt/lock.
var lockWaitLimit = 2 * time.Second

// errLockBusy is returned by tryLockFile when another holder owns the lock.
var errLockBusy = errors.New("lock busy")

// repoLock is an exclusive hold on .fvt/lock. Every operation that mutates
// HEAD, BRANCH, the index, refs or the commit graph runs under it.
type repoLock struct {
	f     *os.File
	path  string
	token string
	op    string
}

// lock acquires the repository lock on behalf of op, retrying until
// lockWaitLimit elapses. On timeout it returns ErrLocked.
func (r *Repo) lock(op string) (*repoLock, error) {
	path := r.metaPath("lock")
	deadline := time.Now().Add(lockWaitLimit)
	for {
		f, err := tryLockFile(path)
		if err == nil {
			l := &repoLock{f: f, path: path, token: uuid.NewString(), op: op}
			if err := l.stamp(); err != nil {
				_ = unlockFile(f, path)
				return nil, fmt.Errorf("%s: lock: %w", op, err)
			}
			r.logger.Debug("lock acquired", zap.String("op", op), zap.String("token", l.token))
			return l, nil
		}
		if !errors.Is(err, errLockBusy) {
			return nil, fmt.Errorf("%s: lock: %w", op, ioErr("lock", path, err))
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%s: %w (%s)", op, ErrLocked, path)
		}
		time.Sleep(lockRetryDelay)
	}
}

// stamp records who holds the lock, for humans inspecting a stuck repo.
func (l *repoLock) stamp() error {
	if err := l.f.Truncate(0); err != nil {
		return err
	}
	content := "pid " + strconv.Itoa(os.Getpid()) + "\n" +
		"token " + l.token + "\n" +
		"op " + l.op + "\n"
	_, err := l.f.WriteAt([]byte(content), 0)
	return err
}

func (l *repoLock) release() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := unlockFile(l.f, l.path)
	l.f = nil
	return err
}
