package repo

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// stepClock returns a clock that advances one second per call, starting at
// a fixed instant.
func stepClock() func() time.Time {
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestRepo(t *testing.T, opts ...Option) *Repo {
	t.Helper()
	opts = append([]Option{WithClock(stepClock())}, opts...)
	r, err := Init("proj", t.TempDir(), opts...)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r
}

func writeWorkFile(t *testing.T, r *Repo, rel, content string) {
	t.Helper()
	abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func readWorkFile(t *testing.T, r *Repo, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func removeWorkFile(t *testing.T, r *Repo, rel string) {
	t.Helper()
	if err := os.Remove(filepath.Join(r.RootDir, filepath.FromSlash(rel))); err != nil {
		t.Fatalf("remove %s: %v", rel, err)
	}
}

func mustCommit(t *testing.T, r *Repo, msg string, files ...string) *Commit {
	t.Helper()
	res, err := r.Commit(msg, files)
	if err != nil {
		t.Fatalf("Commit(%q): %v", msg, err)
	}
	if len(res.Failures) > 0 {
		t.Fatalf("Commit(%q) failures: %v", msg, res.Failures)
	}
	return res.Commit
}

func assertDir(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected directory %q to exist: %v", path, err)
	}
	if !info.IsDir() {
		t.Fatalf("expected %q to be a directory", path)
	}
}

func assertNotExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected %q to not exist, stat err = %v", path, err)
	}
}
