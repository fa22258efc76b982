package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/estebanpuyanas/FVT/pkg/object"
)

// MetaDirName is the repository's internal metadata directory. It is never
// tracked.
const MetaDirName = ".fvt"

// Repo represents an opened FVT repository.
type Repo struct {
	Name    string        // repository name from config
	RootDir string        // working directory root
	MetaDir string        // .fvt/ directory
	Store   *object.Store // content-addressed object store
	Config  *Config

	graph  *Graph
	logger *zap.Logger
	now    func() time.Time
}

type options struct {
	logger *zap.Logger
	hash   object.HashAlgorithm
	codec  object.Codec
	now    func() time.Time
}

// Option configures Init and Open.
type Option func(*options)

// WithLogger attaches a logger to the repository and its object store.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithHashAlgorithm selects the content hash for a new repository. Open
// ignores it; an existing repository keeps the algorithm it was created with.
func WithHashAlgorithm(alg object.HashAlgorithm) Option {
	return func(o *options) { o.hash = alg }
}

// WithCodec selects the compression codec for a new repository.
func WithCodec(c object.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithClock overrides the source of commit timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) *options {
	o := &options{
		logger: zap.NewNop(),
		hash:   object.DefaultHashAlgorithm,
		codec:  object.DefaultCodec,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Init creates a new repository named name inside parent (the current
// directory when parent is empty). The working directory <parent>/<name> is
// created if needed, along with the .fvt/ layout: an empty index, a HEAD
// holding the "null" sentinel, the config, and empty commits/, objects/ and
// refs/heads/ trees.
func Init(name, parent string, opts ...Option) (*Repo, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return nil, fmt.Errorf("init: repository name %q: %w", name, ErrInvalidArgument)
	}
	if parent == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, ioErr("getwd", ".", err)
		}
		parent = wd
	}
	root, err := filepath.Abs(filepath.Join(parent, name))
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}

	o := buildOptions(opts)
	hasher, err := object.NewHasher(o.hash)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	metaDir := filepath.Join(root, MetaDirName)
	if _, err := os.Stat(metaDir); err == nil {
		return nil, fmt.Errorf("init: %w at %s", ErrRepositoryExists, metaDir)
	}

	dirs := []string{
		filepath.Join(metaDir, "objects"),
		filepath.Join(metaDir, "commits"),
		filepath.Join(metaDir, "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, ioErr("mkdir", d, err)
		}
	}

	cfg := &Config{
		Name:        name,
		Created:     o.now().UTC().Truncate(time.Second),
		Root:        root,
		Hash:        string(hasher.Algorithm()),
		Compression: o.codec.String(),
	}
	r := newRepo(root, metaDir, cfg, hasher, o)
	if err := r.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	if err := r.WriteIndex(Index{}); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	if err := r.writeHead(object.NullHash); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	r.logger.Info("repository initialized",
		zap.String("name", name),
		zap.String("root", root),
		zap.String("hash", cfg.Hash),
		zap.String("compression", cfg.Compression),
	)
	return r, nil
}

// Open searches upward from path for a .fvt/ directory and opens the
// repository. It fails with ErrNoRepository when no initialized metadata is
// found.
func Open(path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		metaDir := filepath.Join(cur, MetaDirName)
		if isInitialized(metaDir) {
			return openAt(cur, metaDir, buildOptions(opts))
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open %s: %w (or any parent up to /)", abs, ErrNoRepository)
		}
		cur = parent
	}
}

func isInitialized(metaDir string) bool {
	info, err := os.Stat(metaDir)
	if err != nil || !info.IsDir() {
		return false
	}
	_, err = os.Stat(filepath.Join(metaDir, "HEAD"))
	return err == nil
}

func openAt(root, metaDir string, o *options) (*Repo, error) {
	cfg, err := readConfig(filepath.Join(metaDir, "config"))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("open: %w", err)
		}
		cfg = &Config{Name: filepath.Base(root), Root: root}
	}

	alg, err := object.ParseHashAlgorithm(cfg.Hash)
	if err != nil {
		return nil, fmt.Errorf("open: config: %w", err)
	}
	codec, err := object.ParseCodec(cfg.Compression)
	if err != nil {
		return nil, fmt.Errorf("open: config: %w", err)
	}
	hasher, err := object.NewHasher(alg)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	o.codec = codec
	return newRepo(root, metaDir, cfg, hasher, o), nil
}

func newRepo(root, metaDir string, cfg *Config, hasher *object.Hasher, o *options) *Repo {
	logger := o.logger.With(zap.String("repo", cfg.Name))
	return &Repo{
		Name:    cfg.Name,
		RootDir: root,
		MetaDir: metaDir,
		Store:   object.NewStore(metaDir, hasher, object.WithCodec(o.codec), object.WithLogger(logger)),
		Config:  cfg,
		graph:   newGraph(filepath.Join(metaDir, "commits"), hasher),
		logger:  logger,
		now:     o.now,
	}
}

// Graph returns the repository's commit graph.
func (r *Repo) Graph() *Graph { return r.graph }

// Hasher returns the content hasher the repository addresses objects with.
func (r *Repo) Hasher() *object.Hasher { return r.Store.Hasher() }

func (r *Repo) metaPath(elem ...string) string {
	return filepath.Join(append([]string{r.MetaDir}, elem...)...)
}

// absPath converts a slash-separated repo-relative path to an absolute one.
func (r *Repo) absPath(rel string) string {
	return filepath.Join(r.RootDir, filepath.FromSlash(rel))
}
