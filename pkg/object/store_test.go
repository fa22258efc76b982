package object

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHashDeterminism(t *testing.T) {
	for _, alg := range []HashAlgorithm{SHA256, BLAKE2b, BLAKE3} {
		t.Run(string(alg), func(t *testing.T) {
			hasher, err := NewHasher(alg)
			if err != nil {
				t.Fatalf("NewHasher: %v", err)
			}
			data := []byte("hello world")
			h1, err := hasher.Digest(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Digest: %v", err)
			}
			h2 := hasher.DigestBytes(data)
			if h1 != h2 {
				t.Errorf("Digest not deterministic: %q != %q", h1, h2)
			}
			if !h1.Valid() {
				t.Errorf("Digest %q is not a valid hash", h1)
			}
			if h3 := hasher.DigestBytes([]byte("hello worle")); h3 == h1 {
				t.Error("Different inputs produced same hash")
			}
		})
	}
}

func TestHashAlgorithmsDiffer(t *testing.T) {
	data := []byte("same bytes")
	seen := make(map[Hash]HashAlgorithm)
	for _, alg := range []HashAlgorithm{SHA256, BLAKE2b, BLAKE3} {
		hasher, err := NewHasher(alg)
		if err != nil {
			t.Fatalf("NewHasher(%s): %v", alg, err)
		}
		h := hasher.DigestBytes(data)
		if other, ok := seen[h]; ok {
			t.Errorf("%s and %s produced the same hash", alg, other)
		}
		seen[h] = alg
	}
}

func TestHashKnownSHA256(t *testing.T) {
	hasher, err := NewHasher(SHA256)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	got := hasher.DigestBytes([]byte("abc"))
	want := Hash("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	if got != want {
		t.Errorf("sha256(abc) = %s, want %s", got, want)
	}
}

func TestParseHashAlgorithm(t *testing.T) {
	if alg, err := ParseHashAlgorithm(""); err != nil || alg != SHA256 {
		t.Errorf("ParseHashAlgorithm(\"\") = %q, %v; want sha256", alg, err)
	}
	if alg, err := ParseHashAlgorithm("BLAKE3"); err != nil || alg != BLAKE3 {
		t.Errorf("ParseHashAlgorithm(BLAKE3) = %q, %v; want blake3", alg, err)
	}
	if _, err := ParseHashAlgorithm("md5"); !errors.Is(err, ErrUnknownHashAlgorithm) {
		t.Errorf("ParseHashAlgorithm(md5) err = %v, want ErrUnknownHashAlgorithm", err)
	}
}

func tempStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()
	hasher, err := NewHasher(DefaultHashAlgorithm)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return NewStore(t.TempDir(), hasher, opts...)
}

func writeTemp(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "src")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func putFile(t *testing.T, s *Store, content []byte) Hash {
	t.Helper()
	path := writeTemp(t, content)
	h, err := s.HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if _, err := s.Put(h, path); err != nil {
		t.Fatalf("Put: %v", err)
	}
	return h
}

func readAll(t *testing.T, s *Store, h Hash) []byte {
	t.Helper()
	var buf bytes.Buffer
	if _, err := s.CopyTo(&buf, h); err != nil {
		t.Fatalf("CopyTo(%s): %v", h.Short(), err)
	}
	return buf.Bytes()
}

func TestStorePutGet(t *testing.T) {
	s := tempStore(t)
	data := []byte("hello world\n")
	h := putFile(t, s, data)

	if got := readAll(t, s, h); !bytes.Equal(got, data) {
		t.Errorf("Get: got %q, want %q", got, data)
	}
	if !s.Has(h) {
		t.Error("Has returned false for stored object")
	}
}

func TestStoreLayout(t *testing.T) {
	s := tempStore(t)
	h := putFile(t, s, []byte("layout"))

	objPath := filepath.Join(s.root, "objects", string(h)+".zz")
	if _, err := os.Stat(objPath); err != nil {
		t.Errorf("expected object at %s: %v", objPath, err)
	}

	// Stored bytes are compressed, not the raw content.
	raw, err := os.ReadFile(objPath)
	if err != nil {
		t.Fatalf("read object: %v", err)
	}
	if bytes.Equal(raw, []byte("layout")) {
		t.Error("object stored uncompressed")
	}
}

func TestStorePutIsIdempotent(t *testing.T) {
	s := tempStore(t)
	path := writeTemp(t, []byte("duplicate"))
	h, err := s.HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}

	stored, err := s.Put(h, path)
	if err != nil || !stored {
		t.Fatalf("first Put = %v, %v; want true, nil", stored, err)
	}
	objPath := s.objectPath(h, s.codec)
	before, err := os.Stat(objPath)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	stored, err = s.Put(h, path)
	if err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if stored {
		t.Error("second Put reported a write")
	}
	after, err := os.Stat(objPath)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !after.ModTime().Equal(before.ModTime()) || after.Size() != before.Size() {
		t.Error("second Put modified the stored object")
	}

	hashes, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(hashes) != 1 || hashes[0] != h {
		t.Errorf("List = %v, want [%s]", hashes, h)
	}
}

func TestStoreDedupAcrossFiles(t *testing.T) {
	s := tempStore(t)
	h1 := putFile(t, s, []byte("same content"))
	h2 := putFile(t, s, []byte("same content"))
	if h1 != h2 {
		t.Fatalf("identical content hashed differently: %s vs %s", h1, h2)
	}
	hashes, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(hashes) != 1 {
		t.Errorf("object count = %d, want 1", len(hashes))
	}
}

func TestStoreGetMissing(t *testing.T) {
	s := tempStore(t)
	_, err := s.Get(Hash(strings.Repeat("0", 64)))
	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Get missing err = %v, want ErrObjectNotFound", err)
	}
	_, err = s.Get(Hash("not-a-hash"))
	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Get invalid err = %v, want ErrObjectNotFound", err)
	}
}

func TestStoreHashFileMissing(t *testing.T) {
	s := tempStore(t)
	_, err := s.HashFile(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrIO) {
		t.Errorf("HashFile missing err = %v, want ErrIO", err)
	}
	var ioe *IOError
	if !errors.As(err, &ioe) || ioe.Op != "open" {
		t.Errorf("HashFile missing err = %#v, want *IOError with op open", err)
	}
}

func TestStorePutHashMismatch(t *testing.T) {
	s := tempStore(t)
	path := writeTemp(t, []byte("before"))
	h, err := s.HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if err := os.WriteFile(path, []byte("after"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	_, err = s.Put(h, path)
	if !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("Put err = %v, want ErrHashMismatch", err)
	}
	if s.Has(h) {
		t.Error("mismatched content was stored")
	}
	entries, _ := os.ReadDir(s.objectsDir())
	if len(entries) != 0 {
		t.Errorf("objects dir has %d leftover entries", len(entries))
	}
}

func TestStoreLargeFileRoundTrip(t *testing.T) {
	s := tempStore(t)
	// Several copy buffers worth of data with some structure.
	var data bytes.Buffer
	for i := 0; data.Len() < 5*copyBufferSize+17; i++ {
		data.WriteString(strings.Repeat(string(rune('a'+i%26)), i%97+1))
	}
	h := putFile(t, s, data.Bytes())
	if got := readAll(t, s, h); !bytes.Equal(got, data.Bytes()) {
		t.Errorf("round-trip mismatch: got %d bytes, want %d", len(got), data.Len())
	}
}

func TestStoreEmptyFile(t *testing.T) {
	s := tempStore(t)
	h := putFile(t, s, nil)
	if got := readAll(t, s, h); len(got) != 0 {
		t.Errorf("empty round-trip: got %q", got)
	}
}

func TestStoreVerify(t *testing.T) {
	s := tempStore(t)
	h := putFile(t, s, []byte("verify me"))
	if err := s.Verify(h); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	// Replace the object with validly compressed but different content.
	other := tempStore(t)
	h2 := putFile(t, other, []byte("something else"))
	raw, err := os.ReadFile(other.objectPath(h2, other.codec))
	if err != nil {
		t.Fatalf("read other: %v", err)
	}
	if err := os.WriteFile(s.objectPath(h, s.codec), raw, 0o644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := s.Verify(h); !errors.Is(err, ErrCorruptObject) {
		t.Errorf("Verify corrupted err = %v, want ErrCorruptObject", err)
	}
}

func TestStoreReadsOtherCodecs(t *testing.T) {
	dir := t.TempDir()
	hasher, err := NewHasher(SHA256)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	zstdStore := NewStore(dir, hasher, WithCodec(CodecZstd))
	h := putFile(t, zstdStore, []byte("written as zstd"))

	zlibStore := NewStore(dir, hasher)
	if !zlibStore.Has(h) {
		t.Fatal("zlib store does not see zstd object")
	}
	if got := readAll(t, zlibStore, h); string(got) != "written as zstd" {
		t.Errorf("cross-codec read = %q", got)
	}

	// Dedup holds across codecs.
	path := writeTemp(t, []byte("written as zstd"))
	stored, err := zlibStore.Put(h, path)
	if err != nil || stored {
		t.Errorf("Put existing = %v, %v; want false, nil", stored, err)
	}
}
