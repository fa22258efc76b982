package object

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func BenchmarkStorePutUniqueBlob(b *testing.B) {
	hasher, _ := NewHasher(DefaultHashAlgorithm)
	store := NewStore(filepath.Join(b.TempDir(), "store"), hasher)
	src := filepath.Join(b.TempDir(), "src")
	seed := []byte("0123456789abcdef0123456789abcdef")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		payload := []byte(fmt.Sprintf("blob-%d-%x", i, seed))
		if err := os.WriteFile(src, payload, 0o644); err != nil {
			b.Fatalf("write: %v", err)
		}
		h := hasher.DigestBytes(payload)
		if _, err := store.Put(h, src); err != nil {
			b.Fatalf("Put: %v", err)
		}
	}
}

func BenchmarkStoreGetBlob(b *testing.B) {
	hasher, _ := NewHasher(DefaultHashAlgorithm)
	store := NewStore(filepath.Join(b.TempDir(), "store"), hasher)
	payload := bytes.Repeat([]byte("package main\n\nfunc main() { println(\"hello\") }\n"), 64)
	src := filepath.Join(b.TempDir(), "src")
	if err := os.WriteFile(src, payload, 0o644); err != nil {
		b.Fatalf("write: %v", err)
	}
	h := hasher.DigestBytes(payload)
	if _, err := store.Put(h, src); err != nil {
		b.Fatalf("Put: %v", err)
	}

	b.SetBytes(int64(len(payload)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n, err := store.CopyTo(io.Discard, h)
		if err != nil {
			b.Fatalf("CopyTo: %v", err)
		}
		if n != int64(len(payload)) {
			b.Fatalf("CopyTo = %d bytes, want %d", n, len(payload))
		}
	}
}
