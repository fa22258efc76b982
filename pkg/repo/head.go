package repo

import (
	"fmt"
	"os"
	"strings"

	"github.com/estebanpuyanas/FVT/pkg/object"
)

// Head reads .fvt/HEAD and returns the current commit hash, or
// object.NullHash before the first commit.
func (r *Repo) Head() (object.Hash, error) {
	path := r.metaPath("HEAD")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("head: %w", ioErr("read", path, err))
	}
	content := strings.TrimSpace(string(data))
	if content == "" || content == string(object.NullHash) {
		return object.NullHash, nil
	}
	h := object.Hash(content)
	if !h.Valid() {
		return "", fmt.Errorf("head: malformed hash %q: %w", content, object.ErrCorruptObject)
	}
	return h, nil
}

func (r *Repo) writeHead(h object.Hash) error {
	if h == "" {
		h = object.NullHash
	}
	if err := writeFileAtomic(r.metaPath("HEAD"), []byte(h.String()+"\n"), 0o644); err != nil {
		return fmt.Errorf("write HEAD: %w", err)
	}
	return nil
}

// AttachedBranch returns the branch HEAD follows, or "" when HEAD is
// detached. Commits advance the attached branch along with HEAD.
func (r *Repo) AttachedBranch() (string, error) {
	path := r.metaPath("BRANCH")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("attached branch: %w", ioErr("read", path, err))
	}
	return strings.TrimSpace(string(data)), nil
}

func (r *Repo) setAttachedBranch(name string) error {
	path := r.metaPath("BRANCH")
	if name == "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("detach HEAD: %w", ioErr("remove", path, err))
		}
		return nil
	}
	if err := writeFileAtomic(path, []byte(name+"\n"), 0o644); err != nil {
		return fmt.Errorf("attach HEAD to %q: %w", name, err)
	}
	return nil
}
