package repo

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Changelog writes a plain-text report for c: its id, hash, timestamp and
// message, the files changed relative to its parent, and the full file list.
func (r *Repo) Changelog(w io.Writer, c *Commit) error {
	changes, err := r.ChangedFiles(c)
	if err != nil {
		return fmt.Errorf("changelog: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Commit: %d\n", c.ID)
	fmt.Fprintf(&b, "Hash: %s\n", c.Hash)
	fmt.Fprintf(&b, "Parent: %s\n", c.Parent)
	fmt.Fprintf(&b, "Date: %s\n", c.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "Message: %s\n", c.Message)

	b.WriteString("\nChanges:\n")
	if len(changes) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, ch := range changes {
		fmt.Fprintf(&b, "  %s %s\n", ch.Kind, ch.Path)
	}

	fmt.Fprintf(&b, "\nFiles (%d):\n", len(c.Files))
	for _, p := range c.Files.Paths() {
		fmt.Fprintf(&b, "  %s %s\n", c.Files[p].Short(), p)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("changelog: %w", err)
	}
	return nil
}
