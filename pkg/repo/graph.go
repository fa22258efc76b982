package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/estebanpuyanas/FVT/pkg/object"
)

const (
	metadataFileName = "metadata.txt"

	// MinPrefixLen is the shortest hash abbreviation Resolve accepts.
	MinPrefixLen = 6

	commitCacheSize = 512
)

// Graph is the append-only commit graph stored under .fvt/commits/, one
// directory per commit hash holding metadata.txt. Parsed commits are kept in
// an LRU cache. The id and hash listings are brought up to date from disk
// before every lookup, so commits appended by another handle or process are
// seen.
type Graph struct {
	dir    string
	hasher *object.Hasher
	cache  *lru.Cache[object.Hash, *Commit]

	mu      sync.Mutex
	indexed map[object.Hash]bool
	byID    map[uint64]object.Hash
	hashes  []object.Hash // sorted
	maxID   uint64
}

func newGraph(dir string, hasher *object.Hasher) *Graph {
	cache, err := lru.New[object.Hash, *Commit](commitCacheSize)
	if err != nil {
		panic(fmt.Sprintf("commit cache: %v", err))
	}
	return &Graph{
		dir:     dir,
		hasher:  hasher,
		cache:   cache,
		indexed: make(map[object.Hash]bool),
		byID:    make(map[uint64]object.Hash),
	}
}

func (g *Graph) commitDir(h object.Hash) string {
	return filepath.Join(g.dir, h.String())
}

func (g *Graph) metadataPath(h object.Hash) string {
	return filepath.Join(g.commitDir(h), metadataFileName)
}

// Append records c. It fails with ErrCommitExists when a commit with the
// same hash is already present and with ErrCommitNotFound when c's parent is
// not in the graph.
func (g *Graph) Append(c *Commit) error {
	if c == nil || !c.Hash.Valid() {
		return fmt.Errorf("append commit: %w", ErrInvalidArgument)
	}
	if err := g.scan(); err != nil {
		return err
	}
	if _, err := os.Stat(g.metadataPath(c.Hash)); err == nil {
		return fmt.Errorf("append commit %s: %w", c.Hash.Short(), ErrCommitExists)
	}
	if !c.IsRoot() {
		if _, err := os.Stat(g.metadataPath(c.Parent)); err != nil {
			return fmt.Errorf("append commit %s: parent %s: %w", c.Hash.Short(), c.Parent.Short(), ErrCommitNotFound)
		}
	}

	dir := g.commitDir(c.Hash)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("append commit: %w", ioErr("mkdir", dir, err))
	}
	if err := writeFileAtomic(g.metadataPath(c.Hash), c.marshalMetadata(), 0o644); err != nil {
		return fmt.Errorf("append commit %s: %w", c.Hash.Short(), err)
	}

	g.cache.Add(c.Hash, c)
	g.mu.Lock()
	g.indexLocked(c)
	g.mu.Unlock()
	return nil
}

// Get loads the commit with exactly hash h.
func (g *Graph) Get(h object.Hash) (*Commit, error) {
	if c, ok := g.cache.Get(h); ok {
		return c, nil
	}
	c, err := g.readMetadata(h)
	if err != nil {
		return nil, err
	}
	g.cache.Add(h, c)
	return c, nil
}

func (g *Graph) readMetadata(h object.Hash) (*Commit, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("commit %q: %w", h, ErrCommitNotFound)
	}
	path := g.metadataPath(h)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("commit %s: %w", h.Short(), ErrCommitNotFound)
		}
		return nil, fmt.Errorf("commit %s: %w", h.Short(), ioErr("read", path, err))
	}
	c, err := parseMetadata(data)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w: %w", h.Short(), object.ErrCorruptObject, err)
	}
	if c.Hash != h {
		return nil, fmt.Errorf("commit %s: metadata names %s: %w", h.Short(), c.Hash.Short(), object.ErrCorruptObject)
	}
	return c, nil
}

// Resolve finds a commit by full hash, decimal id, or a unique hash prefix of
// at least MinPrefixLen characters. Unknown identifiers fail with
// ErrCommitNotFound and ambiguous prefixes with ErrAmbiguousCommit.
func (g *Graph) Resolve(ident string) (*Commit, error) {
	ident = strings.ToLower(strings.TrimSpace(ident))
	if ident == "" {
		return nil, fmt.Errorf("resolve commit: empty identifier: %w", ErrCommitNotFound)
	}
	if h := object.Hash(ident); h.Valid() {
		return g.Get(h)
	}
	if err := g.scan(); err != nil {
		return nil, err
	}

	if id, err := strconv.ParseUint(ident, 10, 64); err == nil {
		g.mu.Lock()
		h, ok := g.byID[id]
		g.mu.Unlock()
		if ok {
			return g.Get(h)
		}
	}

	if len(ident) >= MinPrefixLen && object.IsHexPrefix(ident) {
		g.mu.Lock()
		i, _ := slices.BinarySearch(g.hashes, object.Hash(ident))
		var matches []object.Hash
		for ; i < len(g.hashes) && strings.HasPrefix(string(g.hashes[i]), ident); i++ {
			matches = append(matches, g.hashes[i])
		}
		g.mu.Unlock()
		switch len(matches) {
		case 0:
		case 1:
			return g.Get(matches[0])
		default:
			return nil, fmt.Errorf("resolve commit %q: %w (%d matches)", ident, ErrAmbiguousCommit, len(matches))
		}
	}
	return nil, fmt.Errorf("resolve commit %q: %w", ident, ErrCommitNotFound)
}

// NextID returns the id the next commit should take: one past the highest
// recorded id, starting at 1.
func (g *Graph) NextID() (uint64, error) {
	if err := g.scan(); err != nil {
		return 0, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.maxID + 1, nil
}

// Len returns the number of recorded commits.
func (g *Graph) Len() (int, error) {
	if err := g.scan(); err != nil {
		return 0, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.hashes), nil
}

// All returns every recorded commit ordered by id.
func (g *Graph) All() ([]*Commit, error) {
	if err := g.scan(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	hashes := slices.Clone(g.hashes)
	g.mu.Unlock()

	out := make([]*Commit, 0, len(hashes))
	for _, h := range hashes {
		c, err := g.Get(h)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	sortByID(out)
	return out, nil
}

func sortByID(commits []*Commit) {
	slices.SortFunc(commits, func(a, b *Commit) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return strings.Compare(string(a.Hash), string(b.Hash))
	})
}

// Log follows parent links from from, newest first. A limit of zero or less
// returns the whole chain. A null from yields an empty log.
func (g *Graph) Log(from object.Hash, limit int) ([]*Commit, error) {
	var out []*Commit
	seen := make(map[object.Hash]bool)
	for h := from; !h.IsNull(); {
		if limit > 0 && len(out) >= limit {
			break
		}
		if seen[h] {
			return nil, fmt.Errorf("log: parent cycle at %s: %w", h.Short(), object.ErrCorruptObject)
		}
		seen[h] = true
		c, err := g.Get(h)
		if err != nil {
			return nil, fmt.Errorf("log: %w", err)
		}
		out = append(out, c)
		h = c.Parent
	}
	return out, nil
}

// IsAncestor reports whether ancestor is reachable from descendant by
// parent links. A commit is its own ancestor.
func (g *Graph) IsAncestor(ancestor, descendant object.Hash) (bool, error) {
	if ancestor.IsNull() {
		return true, nil
	}
	chain, err := g.Log(descendant, 0)
	if err != nil {
		return false, err
	}
	for _, c := range chain {
		if c.Hash == ancestor {
			return true, nil
		}
	}
	return false, nil
}

// Audit reads every commit record from disk, bypassing the cache. Records
// that cannot be read or parsed are returned in damaged, keyed by hash;
// commits are ordered by id.
func (g *Graph) Audit() (commits []*Commit, damaged map[object.Hash]error, err error) {
	entries, err := os.ReadDir(g.dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("audit commits: %w", ioErr("readdir", g.dir, err))
	}
	damaged = make(map[object.Hash]error)
	for _, e := range entries {
		h := object.Hash(e.Name())
		if !e.IsDir() || !h.Valid() {
			continue
		}
		c, err := g.readMetadata(h)
		switch {
		case errors.Is(err, ErrCommitNotFound):
		case err != nil:
			damaged[h] = err
		default:
			commits = append(commits, c)
		}
	}
	sortByID(commits)
	return commits, damaged, nil
}

// scan indexes commit directories not seen yet. Directories without a
// metadata file are left behind by an interrupted Append; they and records
// that fail to parse are skipped and retried on the next scan.
func (g *Graph) scan() error {
	entries, err := os.ReadDir(g.dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load commits: %w", ioErr("readdir", g.dir, err))
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, e := range entries {
		h := object.Hash(e.Name())
		if !e.IsDir() || !h.Valid() || g.indexed[h] {
			continue
		}
		c, ok := g.cache.Get(h)
		if !ok {
			if c, err = g.readMetadata(h); err != nil {
				continue
			}
			g.cache.Add(h, c)
		}
		g.indexLocked(c)
	}
	return nil
}

// indexLocked adds c to the listings. The first commit seen with an id
// keeps it. g.mu must be held.
func (g *Graph) indexLocked(c *Commit) {
	if g.indexed[c.Hash] {
		return
	}
	g.indexed[c.Hash] = true
	if _, dup := g.byID[c.ID]; !dup {
		g.byID[c.ID] = c.Hash
	}
	i, _ := slices.BinarySearch(g.hashes, c.Hash)
	g.hashes = slices.Insert(g.hashes, i, c.Hash)
	g.maxID = max(g.maxID, c.ID)
}
