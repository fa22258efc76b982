package repo

import (
	"os"
	"path/filepath"
	"testing"
)

func writeIgnoreFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, IgnoreFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", IgnoreFileName, err)
	}
}

func TestIgnore_MetadataAlwaysIgnored(t *testing.T) {
	ic := NewIgnoreChecker(t.TempDir())
	for _, p := range []string{".fvt", ".fvt/HEAD", ".fvt/objects/abc.zz", ".git", ".git/config"} {
		if !ic.IsIgnored(p) {
			t.Errorf("IsIgnored(%q) = false, want true", p)
		}
	}
	for _, p := range []string{"main.go", "src/util.go", "x.fvt", "docs/.fvtnotes"} {
		if ic.IsIgnored(p) {
			t.Errorf("IsIgnored(%q) = true, want false", p)
		}
	}
}

func TestIgnore_Rules(t *testing.T) {
	tests := []struct {
		name    string
		rules   string
		ignored []string
		kept    []string
	}{
		{
			name:    "basename glob",
			rules:   "*.log\n",
			ignored: []string{"debug.log", "deep/nested/trace.log"},
			kept:    []string{"debug.txt", "log"},
		},
		{
			name:    "directory rule",
			rules:   "build/\n",
			ignored: []string{"build/output.o", "build/sub/file.txt", "src/build/x"},
			kept:    []string{"builder.go", "src/build.go"},
		},
		{
			name:    "negation",
			rules:   "*.log\n!important.log\n",
			ignored: []string{"debug.log"},
			kept:    []string{"important.log", "sub/important.log"},
		},
		{
			name:    "comments and blanks",
			rules:   "# comment\n\n*.tmp\n   \n",
			ignored: []string{"a.tmp"},
			kept:    []string{"# comment", "a.txt"},
		},
		{
			name:    "anchored path",
			rules:   "docs/*.pdf\n",
			ignored: []string{"docs/manual.pdf"},
			kept:    []string{"manual.pdf", "other/docs/manual.pdf", "docs/sub/manual.pdf"},
		},
		{
			name:    "globstar",
			rules:   "**/cache/**\n",
			ignored: []string{"cache/x", "a/b/cache/y"},
			kept:    []string{"cachefile", "a/cached/y"},
		},
		{
			name:    "excluded directory cannot be re-included",
			rules:   "vendor/\n!vendor/keep.go\n",
			ignored: []string{"vendor/keep.go", "vendor/other.go"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeIgnoreFile(t, dir, tt.rules)
			ic := NewIgnoreChecker(dir)
			for _, p := range tt.ignored {
				if !ic.IsIgnored(p) {
					t.Errorf("IsIgnored(%q) = false, want true", p)
				}
			}
			for _, p := range tt.kept {
				if ic.IsIgnored(p) {
					t.Errorf("IsIgnored(%q) = true, want false", p)
				}
			}
		})
	}
}

func TestIgnore_DirectoryOnlyRuleSkipsFileOfSameName(t *testing.T) {
	dir := t.TempDir()
	writeIgnoreFile(t, dir, "out/\n")
	ic := NewIgnoreChecker(dir)

	if ic.IsIgnored("out") {
		t.Error("file named out should not match a directory-only rule")
	}
	if !ic.IsIgnoredDir("out") {
		t.Error("directory out should be ignored")
	}
}
