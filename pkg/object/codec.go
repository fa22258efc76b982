package object

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies the compression applied to stored objects. The codec is
// encoded in the object's file extension, so objects written with different
// codecs can live in the same store.
type Codec uint8

const (
	// CodecZlib is deflate with a zlib wrapper. It is the default.
	CodecZlib Codec = iota
	// CodecZstd trades a larger dependency for better ratios on text.
	CodecZstd
	// CodecLZ4 favours speed over ratio.
	CodecLZ4
)

// DefaultCodec is used when a repository does not configure one.
const DefaultCodec = CodecZlib

var allCodecs = []Codec{CodecZlib, CodecZstd, CodecLZ4}

// String returns the configuration name of the codec.
func (c Codec) String() string {
	switch c {
	case CodecZlib:
		return "zlib"
	case CodecZstd:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// Ext returns the object file extension, without the dot.
func (c Codec) Ext() string {
	switch c {
	case CodecZstd:
		return "zst"
	case CodecLZ4:
		return "lz4"
	default:
		return "zz"
	}
}

// ParseCodec parses a codec name. The empty string selects the default.
func ParseCodec(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "zlib", "deflate":
		return CodecZlib, nil
	case "zstd":
		return CodecZstd, nil
	case "lz4":
		return CodecLZ4, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// NewWriter wraps dst with the codec's compressor. The returned writer must
// be closed to flush the stream; closing it does not close dst.
func (c Codec) NewWriter(dst io.Writer) (io.WriteCloser, error) {
	switch c {
	case CodecZlib:
		return zlib.NewWriterLevel(dst, zlib.DefaultCompression)
	case CodecZstd:
		return zstd.NewWriter(dst, zstd.WithEncoderConcurrency(1))
	case CodecLZ4:
		return lz4.NewWriter(dst), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, c)
	}
}

// NewReader wraps src with the codec's decompressor. Closing the returned
// reader does not close src.
func (c Codec) NewReader(src io.Reader) (io.ReadCloser, error) {
	switch c {
	case CodecZlib:
		return zlib.NewReader(src)
	case CodecZstd:
		dec, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return &zstdReadCloser{dec: dec}, nil
	case CodecLZ4:
		return io.NopCloser(lz4.NewReader(src)), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, c)
	}
}

type zstdReadCloser struct {
	dec *zstd.Decoder
}

func (z *zstdReadCloser) Read(p []byte) (int, error) {
	return z.dec.Read(p)
}

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return nil
}
