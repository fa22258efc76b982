package repo

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/estebanpuyanas/FVT/pkg/object"
)

// Commit is an immutable snapshot record. Its Hash is derived from every
// other field, so two commits that differ in any attribute (including the
// timestamp) never share a hash. Values handed out by the Graph are shared
// and must not be modified.
type Commit struct {
	ID        uint64
	Hash      object.Hash
	Parent    object.Hash // object.NullHash for the root commit
	Timestamp time.Time
	Message   string
	Files     Index
}

// NewCommit builds a commit record and derives its hash. files is copied.
func NewCommit(hasher *object.Hasher, id uint64, message string, parent object.Hash, ts time.Time, files Index) *Commit {
	if parent == "" {
		parent = object.NullHash
	}
	c := &Commit{
		ID:        id,
		Parent:    parent,
		Timestamp: ts.UTC(),
		Message:   message,
		Files:     files.Clone(),
	}
	c.Hash = hasher.DigestBytes(c.hashInput())
	return c
}

// hashInput is the canonical byte form the commit hash is computed over.
func (c *Commit) hashInput() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "id %d\n", c.ID)
	fmt.Fprintf(&buf, "parent %s\n", c.Parent)
	fmt.Fprintf(&buf, "timestamp %s\n", c.Timestamp.UTC().Format(time.RFC3339Nano))
	fmt.Fprintf(&buf, "message %s\n", c.Message)
	for _, p := range c.Files.Paths() {
		fmt.Fprintf(&buf, "file %s %s\n", c.Files[p], p)
	}
	return buf.Bytes()
}

// IsRoot reports whether the commit has no parent.
func (c *Commit) IsRoot() bool { return c.Parent.IsNull() }

// Describe returns a one-line summary.
func (c *Commit) Describe() string {
	return fmt.Sprintf("commit %d %s %s %s",
		c.ID, c.Hash.Short(), c.Timestamp.Format(time.RFC3339), c.Message)
}

func (c *Commit) marshalMetadata() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "id: %d\n", c.ID)
	fmt.Fprintf(&buf, "hash: %s\n", c.Hash)
	fmt.Fprintf(&buf, "parent: %s\n", c.Parent)
	fmt.Fprintf(&buf, "timestamp: %s\n", c.Timestamp.UTC().Format(time.RFC3339Nano))
	fmt.Fprintf(&buf, "message: %s\n", c.Message)
	for _, p := range c.Files.Paths() {
		fmt.Fprintf(&buf, "file: %s %s\n", c.Files[p], p)
	}
	return buf.Bytes()
}

func parseMetadata(data []byte) (*Commit, error) {
	c := &Commit{Files: Index{}}
	var seen struct{ id, hash, parent, ts, msg bool }

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			return nil, fmt.Errorf("parse metadata: malformed line %q", line)
		}
		switch key {
		case "id":
			id, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse metadata: id %q: %w", value, err)
			}
			c.ID, seen.id = id, true
		case "hash":
			c.Hash, seen.hash = object.Hash(value), true
		case "parent":
			c.Parent, seen.parent = object.Hash(value), true
		case "timestamp":
			ts, err := time.Parse(time.RFC3339Nano, value)
			if err != nil {
				return nil, fmt.Errorf("parse metadata: timestamp %q: %w", value, err)
			}
			c.Timestamp, seen.ts = ts.UTC(), true
		case "message":
			c.Message, seen.msg = value, true
		case "file":
			hash, path, ok := strings.Cut(value, " ")
			if !ok || path == "" || !object.Hash(hash).Valid() {
				return nil, fmt.Errorf("parse metadata: malformed file entry %q", value)
			}
			c.Files[path] = object.Hash(hash)
		default:
			return nil, fmt.Errorf("parse metadata: unknown key %q", key)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	if !seen.id || !seen.hash || !seen.parent || !seen.ts || !seen.msg {
		return nil, fmt.Errorf("parse metadata: missing required field")
	}
	if !c.Hash.Valid() || (!c.Parent.IsNull() && !c.Parent.Valid()) {
		return nil, fmt.Errorf("parse metadata: malformed hash")
	}
	return c, nil
}
