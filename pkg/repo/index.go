package repo

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/estebanpuyanas/FVT/pkg/object"
)

// Index maps slash-separated repo-relative paths to content hashes. The
// on-disk .fvt/index holds the index of the most recent commit or checkout,
// one "<hash> <path>" line per file sorted by path.
type Index map[string]object.Hash

// Paths returns the index's paths in sorted order.
func (idx Index) Paths() []string {
	return slices.Sorted(maps.Keys(idx))
}

// Clone returns an independent copy of idx.
func (idx Index) Clone() Index {
	out := make(Index, len(idx))
	maps.Copy(out, idx)
	return out
}

// Equal reports whether idx and other track the same paths at the same hashes.
func (idx Index) Equal(other Index) bool {
	return maps.Equal(idx, other)
}

func (idx Index) marshal() []byte {
	var buf bytes.Buffer
	for _, p := range idx.Paths() {
		buf.WriteString(idx[p].String())
		buf.WriteByte(' ')
		buf.WriteString(p)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func parseIndex(data []byte) (Index, error) {
	idx := Index{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		hash, path, ok := strings.Cut(text, " ")
		h := object.Hash(hash)
		if !ok || path == "" || !h.Valid() {
			return nil, fmt.Errorf("parse index: line %d: malformed entry %q", line, text)
		}
		idx[path] = h
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	return idx, nil
}

func (r *Repo) indexPath() string {
	return r.metaPath("index")
}

// ReadIndex loads .fvt/index. A missing index reads as empty.
func (r *Repo) ReadIndex() (Index, error) {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return Index{}, nil
		}
		return nil, fmt.Errorf("read index: %w", ioErr("read", r.indexPath(), err))
	}
	idx, err := parseIndex(data)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return idx, nil
}

// WriteIndex atomically replaces .fvt/index with idx.
func (r *Repo) WriteIndex(idx Index) error {
	if err := writeFileAtomic(r.indexPath(), idx.marshal(), 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// ComputeIndex hashes the working tree. With an empty fileset it walks every
// file under the root, skipping .fvt/ and paths matched by .fvtignore.
// Otherwise it hashes only the named files, expanding directories. Files
// that cannot be read are reported as FileErrors and left out of the index;
// the returned error is reserved for failures that stop the walk entirely.
func (r *Repo) ComputeIndex(fileset []string) (Index, []FileError, error) {
	ic := NewIgnoreChecker(r.RootDir)
	idx := Index{}
	var failures []FileError

	if len(fileset) == 0 {
		if err := r.hashTree("", ic, idx, &failures); err != nil {
			return nil, nil, err
		}
		return idx, failures, nil
	}

	for _, p := range fileset {
		rel, err := r.repoRelPath(p)
		if err != nil {
			failures = append(failures, FileError{Path: p, Err: err})
			continue
		}
		if rel == "." {
			if err := r.hashTree("", ic, idx, &failures); err != nil {
				return nil, nil, err
			}
			continue
		}
		abs := r.absPath(rel)
		info, err := os.Lstat(abs)
		if err != nil {
			failures = append(failures, FileError{Path: rel, Err: ioErr("stat", abs, err)})
			continue
		}
		if (info.IsDir() && ic.IsIgnoredDir(rel)) || (!info.IsDir() && ic.IsIgnored(rel)) {
			failures = append(failures, FileError{Path: rel, Err: fmt.Errorf("path is ignored: %w", ErrInvalidArgument)})
			continue
		}
		switch {
		case info.IsDir():
			if err := r.hashTree(rel, ic, idx, &failures); err != nil {
				return nil, nil, err
			}
		case info.Mode().IsRegular():
			r.hashOne(rel, idx, &failures)
		default:
			failures = append(failures, FileError{Path: rel, Err: fmt.Errorf("not a regular file: %w", ErrInvalidArgument)})
		}
	}
	return idx, failures, nil
}

// hashTree walks the directory rel (the root when empty) and hashes every
// regular, non-ignored file into idx.
func (r *Repo) hashTree(rel string, ic *IgnoreChecker, idx Index, failures *[]FileError) error {
	start := r.RootDir
	if rel != "" {
		start = r.absPath(rel)
	}
	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, walkErr error) error {
		relPath, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if walkErr != nil {
			if path == start {
				return walkErr
			}
			*failures = append(*failures, FileError{Path: relPath, Err: ioErr("walk", path, walkErr)})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if relPath == "." {
			return nil
		}
		if d.IsDir() {
			if ic.IsIgnoredDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || ic.IsIgnored(relPath) {
			return nil
		}
		r.hashOne(relPath, idx, failures)
		return nil
	})
	if err != nil {
		return fmt.Errorf("compute index: %w", ioErr("walk", start, err))
	}
	return nil
}

func (r *Repo) hashOne(rel string, idx Index, failures *[]FileError) {
	if strings.ContainsAny(rel, "\r\n") {
		*failures = append(*failures, FileError{Path: rel, Err: fmt.Errorf("path contains a line break: %w", ErrInvalidArgument)})
		return
	}
	h, err := r.Store.HashFile(r.absPath(rel))
	if err != nil {
		r.logger.Warn("hash failed", zap.String("path", rel), zap.Error(err))
		*failures = append(*failures, FileError{Path: rel, Err: err})
		return
	}
	idx[rel] = h
}

// DiffIndex returns, sorted, the paths tracked in previous that exists
// reports as gone from the working tree.
func DiffIndex(previous Index, exists func(path string) bool) []string {
	var deleted []string
	for _, p := range previous.Paths() {
		if !exists(p) {
			deleted = append(deleted, p)
		}
	}
	return deleted
}

// existsInWorktree reports whether rel is present on disk. Only a definite
// not-exist counts as absent; a stat failure for another reason keeps the
// file tracked.
func (r *Repo) existsInWorktree(rel string) bool {
	_, err := os.Lstat(r.absPath(rel))
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

// repoRelPath converts a path (absolute, or relative to the current
// directory) into a slash-separated path relative to the repository root.
// Paths that resolve outside the root are rejected.
func (r *Repo) repoRelPath(p string) (string, error) {
	abs := p
	if !filepath.IsAbs(abs) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", ioErr("getwd", ".", err)
		}
		abs = filepath.Join(cwd, p)
		// A relative path from outside the tree is taken as repo-relative.
		if rel, err := filepath.Rel(r.RootDir, abs); err != nil || isOutside(rel) {
			abs = filepath.Join(r.RootDir, p)
		}
	}
	rel, err := filepath.Rel(r.RootDir, filepath.Clean(abs))
	if err != nil {
		return "", fmt.Errorf("cannot make %q relative to %q: %w", p, r.RootDir, ErrInvalidArgument)
	}
	if isOutside(rel) {
		return "", fmt.Errorf("%q is outside the repository: %w", p, ErrInvalidArgument)
	}
	return filepath.ToSlash(rel), nil
}

func isOutside(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
