package object

import "errors"

// Hash is a 64-character lowercase hex digest of a blob or a commit.
type Hash string

// NullHash is the sentinel recorded where no commit exists yet: the HEAD of
// an empty repository and the parent of a root commit.
const NullHash Hash = "null"

// HashHexLen is the length of a hex-encoded Hash for every supported
// algorithm.
const HashHexLen = 64

var (
	ErrObjectNotFound       = errors.New("object not found")
	ErrHashMismatch         = errors.New("content does not match hash")
	ErrCorruptObject        = errors.New("corrupt object")
	ErrUnknownHashAlgorithm = errors.New("unknown hash algorithm")
	ErrUnknownCodec         = errors.New("unknown compression codec")
)

// String returns the hash as a string.
func (h Hash) String() string { return string(h) }

// Short returns the first 8 hex characters of the hash.
func (h Hash) Short() string {
	if len(h) > 8 {
		return string(h[:8])
	}
	return string(h)
}

// IsNull reports whether h is empty or the NullHash sentinel.
func (h Hash) IsNull() bool {
	return h == "" || h == NullHash
}

// Valid reports whether h looks like a full hex digest.
func (h Hash) Valid() bool {
	if len(h) != HashHexLen {
		return false
	}
	return isHex(string(h))
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// IsHexPrefix reports whether s could be an abbreviation of a Hash.
func IsHexPrefix(s string) bool {
	return s != "" && len(s) <= HashHexLen && isHex(s)
}
