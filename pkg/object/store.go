package object

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ErrIO is matched by every *IOError.
var ErrIO = errors.New("i/o error")

// IOError reports a read, write or create failure on a file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

func ioErr(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}

// copyBufferSize is the fixed buffer used for every streaming copy in the
// store, so arbitrarily large files never need to fit in memory.
const copyBufferSize = 32 * 1024

// Store is a deduplicated, compressed, content-addressed blob store laid out
// as objects/<hash>.<ext>. Objects are write-once: an existing object is
// never rewritten or removed.
type Store struct {
	root   string
	hasher *Hasher
	codec  Codec
	logger *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithCodec selects the codec new objects are written with.
func WithCodec(c Codec) StoreOption {
	return func(s *Store) { s.codec = c }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a Store rooted at the given metadata directory. The
// objects/ subdirectory is created lazily on first write.
func NewStore(root string, hasher *Hasher, opts ...StoreOption) *Store {
	s := &Store{
		root:   root,
		hasher: hasher,
		codec:  DefaultCodec,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hasher returns the hasher the store addresses objects with.
func (s *Store) Hasher() *Hasher { return s.hasher }

// Codec returns the codec new objects are written with.
func (s *Store) Codec() Codec { return s.codec }

func (s *Store) objectsDir() string {
	return filepath.Join(s.root, "objects")
}

func (s *Store) objectPath(h Hash, c Codec) string {
	return filepath.Join(s.objectsDir(), string(h)+"."+c.Ext())
}

// locate returns the path and codec of the stored object for h. The
// configured codec is tried first.
func (s *Store) locate(h Hash) (string, Codec, bool) {
	if !h.Valid() {
		return "", 0, false
	}
	p := s.objectPath(h, s.codec)
	if _, err := os.Stat(p); err == nil {
		return p, s.codec, true
	}
	for _, c := range allCodecs {
		if c == s.codec {
			continue
		}
		p := s.objectPath(h, c)
		if _, err := os.Stat(p); err == nil {
			return p, c, true
		}
	}
	return "", 0, false
}

// Has reports whether the store contains an object with the given hash,
// whatever codec it was written with.
func (s *Store) Has(h Hash) bool {
	_, _, ok := s.locate(h)
	return ok
}

// HashFile streams the file at path through the store's hasher.
func (s *Store) HashFile(path string) (Hash, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", ioErr("open", path, err)
	}
	defer f.Close()

	h, err := s.hasher.Digest(f)
	if err != nil {
		return "", ioErr("read", path, err)
	}
	return h, nil
}

// Put stores the content of sourcePath under h. If an object for h already
// exists this is a no-op and stored is false. Otherwise the content is
// compressed into a temp file next to the final location and renamed into
// place. The content is re-hashed on the way through; if it no longer
// matches h (the file changed after it was hashed) nothing is stored and
// ErrHashMismatch is returned.
func (s *Store) Put(h Hash, sourcePath string) (stored bool, err error) {
	if !h.Valid() {
		return false, fmt.Errorf("put %q: invalid hash", h)
	}
	if s.Has(h) {
		return false, nil
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return false, ioErr("open", sourcePath, err)
	}
	defer src.Close()

	dir := s.objectsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, ioErr("mkdir", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return false, ioErr("create", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriterSize(tmp, copyBufferSize)
	enc, err := s.codec.NewWriter(bw)
	if err != nil {
		return false, fmt.Errorf("put %s: %w", h.Short(), err)
	}
	digest, sum := s.hasher.digestWriter()
	buf := make([]byte, copyBufferSize)
	if _, err = io.CopyBuffer(io.MultiWriter(enc, digest), src, buf); err != nil {
		return false, ioErr("compress", sourcePath, err)
	}
	if err = enc.Close(); err != nil {
		return false, ioErr("compress", sourcePath, err)
	}
	if err = bw.Flush(); err != nil {
		return false, ioErr("write", tmpName, err)
	}
	if got := sum(); got != h {
		err = fmt.Errorf("put %s: %w (content now hashes to %s)", h.Short(), ErrHashMismatch, got.Short())
		return false, err
	}
	if err = tmp.Close(); err != nil {
		return false, ioErr("close", tmpName, err)
	}

	dest := s.objectPath(h, s.codec)
	if err = os.Rename(tmpName, dest); err != nil {
		return false, ioErr("rename", dest, err)
	}

	s.logger.Debug("object stored",
		zap.String("hash", string(h)),
		zap.String("source", sourcePath),
		zap.Stringer("codec", s.codec),
	)
	return true, nil
}

// Get returns a reader over the original bytes of the object h. The caller
// must close it.
func (s *Store) Get(h Hash) (io.ReadCloser, error) {
	path, codec, ok := s.locate(h)
	if !ok {
		return nil, fmt.Errorf("get %s: %w", h, ErrObjectNotFound)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("get %s: %w", h, ErrObjectNotFound)
		}
		return nil, ioErr("open", path, err)
	}
	dec, err := codec.NewReader(bufio.NewReaderSize(f, copyBufferSize))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("get %s: %w: %v", h, ErrCorruptObject, err)
	}
	return &objectReader{dec: dec, file: f}, nil
}

type objectReader struct {
	dec  io.ReadCloser
	file *os.File
}

func (r *objectReader) Read(p []byte) (int, error) {
	return r.dec.Read(p)
}

func (r *objectReader) Close() error {
	derr := r.dec.Close()
	ferr := r.file.Close()
	if derr != nil {
		return derr
	}
	return ferr
}

// CopyTo decompresses the object h into w.
func (s *Store) CopyTo(w io.Writer, h Hash) (int64, error) {
	rc, err := s.Get(h)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	buf := make([]byte, copyBufferSize)
	n, err := io.CopyBuffer(w, rc, buf)
	if err != nil {
		return n, fmt.Errorf("read object %s: %w: %v", h.Short(), ErrCorruptObject, err)
	}
	return n, nil
}

// Verify decompresses the object h and checks that its content still hashes
// to h.
func (s *Store) Verify(h Hash) error {
	rc, err := s.Get(h)
	if err != nil {
		return err
	}
	defer rc.Close()

	got, err := s.hasher.Digest(rc)
	if err != nil {
		return fmt.Errorf("verify %s: %w: %v", h.Short(), ErrCorruptObject, err)
	}
	if got != h {
		return fmt.Errorf("verify %s: %w (content hashes to %s)", h.Short(), ErrCorruptObject, got.Short())
	}
	return nil
}

// List returns the hashes of every stored object, sorted.
func (s *Store) List() ([]Hash, error) {
	entries, err := os.ReadDir(s.objectsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, ioErr("readdir", s.objectsDir(), err)
	}

	seen := make(map[Hash]struct{}, len(entries))
	var hashes []Hash
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		name, _, ok := strings.Cut(e.Name(), ".")
		if !ok {
			continue
		}
		h := Hash(name)
		if !h.Valid() {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	return hashes, nil
}
