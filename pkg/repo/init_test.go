package repo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/estebanpuyanas/FVT/pkg/object"
)

func TestInit_CreatesLayout(t *testing.T) {
	parent := t.TempDir()
	r, err := Init("demo", parent)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	root := filepath.Join(parent, "demo")
	if r.RootDir != root {
		t.Errorf("RootDir = %q, want %q", r.RootDir, root)
	}
	if r.Name != "demo" {
		t.Errorf("Name = %q, want %q", r.Name, "demo")
	}
	meta := filepath.Join(root, ".fvt")
	assertDir(t, filepath.Join(meta, "objects"))
	assertDir(t, filepath.Join(meta, "commits"))
	assertDir(t, filepath.Join(meta, "refs", "heads"))

	head, err := os.ReadFile(filepath.Join(meta, "HEAD"))
	if err != nil {
		t.Fatalf("read HEAD: %v", err)
	}
	if strings.TrimSpace(string(head)) != "null" {
		t.Errorf("HEAD = %q, want %q", head, "null\n")
	}
	idx, err := os.ReadFile(filepath.Join(meta, "index"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if len(idx) != 0 {
		t.Errorf("index = %q, want empty", idx)
	}
	assertNotExist(t, filepath.Join(meta, "BRANCH"))
}

func TestInit_WritesConfigLines(t *testing.T) {
	r := newTestRepo(t)
	data, err := os.ReadFile(filepath.Join(r.MetaDir, "config"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	text := string(data)
	for _, want := range []string{`name = "proj"`, `hash = "sha256"`, `compression = "zlib"`, "created = "} {
		if !strings.Contains(text, want) {
			t.Errorf("config missing %q:\n%s", want, text)
		}
	}
}

func TestInit_ExistingRepository(t *testing.T) {
	parent := t.TempDir()
	if _, err := Init("demo", parent); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	_, err := Init("demo", parent)
	if !errors.Is(err, ErrRepositoryExists) {
		t.Fatalf("second Init error = %v, want ErrRepositoryExists", err)
	}
}

func TestInit_InvalidName(t *testing.T) {
	for _, name := range []string{"", "  ", ".", "..", "a/b"} {
		if _, err := Init(name, t.TempDir()); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Init(%q) error = %v, want ErrInvalidArgument", name, err)
		}
	}
}

func TestOpen_FindsRepositoryFromSubdirectory(t *testing.T) {
	r := newTestRepo(t)
	sub := filepath.Join(r.RootDir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	opened, err := Open(sub)
	if err != nil {
		t.Fatalf("Open(%q): %v", sub, err)
	}
	if opened.RootDir != r.RootDir {
		t.Errorf("RootDir = %q, want %q", opened.RootDir, r.RootDir)
	}
	if opened.Name != "proj" {
		t.Errorf("Name = %q, want %q", opened.Name, "proj")
	}
}

func TestOpen_NoRepository(t *testing.T) {
	_, err := Open(t.TempDir())
	if !errors.Is(err, ErrNoRepository) {
		t.Fatalf("Open error = %v, want ErrNoRepository", err)
	}
}

func TestOpen_KeepsConfiguredHashAndCodec(t *testing.T) {
	r := newTestRepo(t, WithHashAlgorithm(object.BLAKE3), WithCodec(object.CodecZstd))

	// Open ignores creation-only options.
	opened, err := Open(r.RootDir, WithHashAlgorithm(object.SHA256))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := opened.Hasher().Algorithm(); got != object.BLAKE3 {
		t.Errorf("hash algorithm = %q, want %q", got, object.BLAKE3)
	}
	if got := opened.Store.Codec(); got != object.CodecZstd {
		t.Errorf("codec = %v, want %v", got, object.CodecZstd)
	}
}
