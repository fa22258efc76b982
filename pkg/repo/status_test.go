package repo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestStatus_ReportsChangesAgainstIndex(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "keep", "same")
	writeWorkFile(t, r, "edit", "before")
	writeWorkFile(t, r, "gone", "bye")
	mustCommit(t, r, "base")

	writeWorkFile(t, r, "edit", "after")
	removeWorkFile(t, r, "gone")
	writeWorkFile(t, r, "dir/new", "hi")

	got, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	want := []StatusEntry{
		{Path: "dir/new", Status: StatusUntracked},
		{Path: "edit", Status: StatusModified},
		{Path: "gone", Status: StatusDeleted},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateErrors()); diff != "" {
		t.Errorf("Status mismatch (-want +got):\n%s", diff)
	}

	clean, err := r.IsClean()
	if err != nil {
		t.Fatalf("IsClean: %v", err)
	}
	if clean {
		t.Error("IsClean = true with modified and deleted files")
	}
}

func TestStatus_CleanAfterCommit(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "a", "1")
	writeWorkFile(t, r, "b/c", "2")
	mustCommit(t, r, "all")

	got, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Status = %v, want clean", got)
	}
	writeWorkFile(t, r, "untracked", "x")
	clean, err := r.IsClean()
	if err != nil {
		t.Fatalf("IsClean: %v", err)
	}
	if !clean {
		t.Error("untracked files should not make the tree dirty")
	}
}

func TestFileStatusString(t *testing.T) {
	tests := map[FileStatus]string{
		StatusModified:   "modified",
		StatusDeleted:    "deleted",
		StatusUntracked:  "untracked",
		StatusUnreadable: "unreadable",
		FileStatus(42):   "FileStatus(42)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(s), got, want)
		}
	}
}
