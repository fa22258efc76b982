package repo

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestConfig_RoundTrip(t *testing.T) {
	r := newTestRepo(t)
	want := &Config{
		Name:        "renamed",
		Created:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Root:        r.RootDir,
		Hash:        "blake2b",
		Compression: "lz4",
	}
	if err := r.WriteConfig(want); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	got, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestConfig_InitRecordsCreation(t *testing.T) {
	r := newTestRepo(t)
	cfg, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if want := time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC); !cfg.Created.Equal(want) {
		t.Errorf("Created = %v, want %v", cfg.Created, want)
	}
	if cfg.Root != r.RootDir {
		t.Errorf("Root = %q, want %q", cfg.Root, r.RootDir)
	}
}

func TestConfig_MissingFile(t *testing.T) {
	r := newTestRepo(t)
	if err := os.Remove(r.configPath()); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadConfig(); !errors.Is(err, ErrIO) {
		t.Fatalf("ReadConfig error = %v, want ErrIO", err)
	}

	// Open falls back to defaults named after the directory.
	reopened, err := Open(r.RootDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if reopened.Name != "proj" {
		t.Errorf("Name = %q, want %q", reopened.Name, "proj")
	}
}

func TestConfig_UnknownHashFailsOpen(t *testing.T) {
	r := newTestRepo(t)
	cfg := *r.Config
	cfg.Hash = "md5"
	if err := r.WriteConfig(&cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(r.RootDir); err == nil {
		t.Fatal("Open succeeded with an unknown hash algorithm")
	}
}
