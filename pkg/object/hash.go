package object

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

// HashAlgorithm names the cryptographic digest a repository addresses its
// objects with. It is fixed at init time and recorded in the config.
type HashAlgorithm string

const (
	SHA256  HashAlgorithm = "sha256"
	BLAKE2b HashAlgorithm = "blake2b"
	BLAKE3  HashAlgorithm = "blake3"

	DefaultHashAlgorithm = SHA256
)

// digestChunkSize bounds the memory used while hashing a stream.
const digestChunkSize = 32 * 1024

// ParseHashAlgorithm parses an algorithm name. The empty string selects the
// default.
func ParseHashAlgorithm(name string) (HashAlgorithm, error) {
	switch HashAlgorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "", SHA256:
		return SHA256, nil
	case BLAKE2b:
		return BLAKE2b, nil
	case BLAKE3:
		return BLAKE3, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownHashAlgorithm, name)
	}
}

// Hasher computes content hashes. The zero value is not usable; build one
// with NewHasher.
type Hasher struct {
	alg HashAlgorithm
}

// NewHasher returns a Hasher for the given algorithm.
func NewHasher(alg HashAlgorithm) (*Hasher, error) {
	alg, err := ParseHashAlgorithm(string(alg))
	if err != nil {
		return nil, err
	}
	return &Hasher{alg: alg}, nil
}

// Algorithm returns the algorithm the hasher uses.
func (h *Hasher) Algorithm() HashAlgorithm { return h.alg }

func (h *Hasher) newHash() hash.Hash {
	switch h.alg {
	case BLAKE2b:
		// New256 only fails for oversized keys.
		d, _ := blake2b.New256(nil)
		return d
	case BLAKE3:
		return blake3.New()
	default:
		return sha256.New()
	}
}

// Digest hashes everything read from r, in fixed-size chunks so that memory
// use does not depend on the input size.
func (h *Hasher) Digest(r io.Reader) (Hash, error) {
	d := h.newHash()
	buf := make([]byte, digestChunkSize)
	if _, err := io.CopyBuffer(d, r, buf); err != nil {
		return "", err
	}
	return Hash(hex.EncodeToString(d.Sum(nil))), nil
}

// DigestBytes hashes an in-memory byte slice.
func (h *Hasher) DigestBytes(data []byte) Hash {
	d := h.newHash()
	d.Write(data)
	return Hash(hex.EncodeToString(d.Sum(nil)))
}

// digestWriter returns a running digest that can sit on the side of an
// io.MultiWriter, and a function that finalizes it.
func (h *Hasher) digestWriter() (io.Writer, func() Hash) {
	d := h.newHash()
	return d, func() Hash { return Hash(hex.EncodeToString(d.Sum(nil))) }
}
