package repo

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/estebanpuyanas/FVT/pkg/object"
)

// ReflogEntry records one movement of a branch.
type ReflogEntry struct {
	Branch    string
	OldHash   object.Hash
	NewHash   object.Hash
	Timestamp time.Time
	Reason    string
}

func (r *Repo) reflogPath(branch string) string {
	return r.metaPath("logs", "refs", "heads", branch)
}

func (r *Repo) appendReflog(branch string, oldHash, newHash object.Hash, reason string) error {
	if strings.TrimSpace(reason) == "" {
		reason = "update"
	}
	if oldHash == "" {
		oldHash = object.NullHash
	}
	if newHash == "" {
		newHash = object.NullHash
	}

	path := r.reflogPath(branch)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ioErr("mkdir", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return ioErr("open", path, err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s %d %s\n", oldHash, newHash, r.now().Unix(), reason)
	if _, err := f.WriteString(line); err != nil {
		return ioErr("write", path, err)
	}
	return nil
}

// ReadReflog returns a branch's movements, newest first. A limit of zero or
// less returns all of them.
func (r *Repo) ReadReflog(branch string, limit int) ([]ReflogEntry, error) {
	path := r.reflogPath(branch)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reflog: %w", ioErr("open", path, err))
	}
	defer f.Close()

	var entries []ReflogEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		parts := strings.SplitN(strings.TrimSpace(sc.Text()), " ", 4)
		if len(parts) < 4 {
			continue
		}
		ts, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, ReflogEntry{
			Branch:    branch,
			OldHash:   object.Hash(parts[0]),
			NewHash:   object.Hash(parts[1]),
			Timestamp: time.Unix(ts, 0).UTC(),
			Reason:    parts[3],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
