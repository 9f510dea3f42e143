package extract

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"compress/lzw"
	"errors"
	"io"

	"github.com/pierrec/lz4"
	"github.com/ulikunitz/xz"

	"github.com/rget/rget/pkg/logging"
)

const peekSize = 8

var (
	gzipMagic = []byte{0x1F, 0x8B}
	bzipMagic = []byte{0x42, 0x5A}
	xzMagic   = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
	lzwMagic  = []byte{0x1F, 0x9D}
	// 0x184D2204 little-endian, as it appears on the wire
	lz4Magic = []byte{0x04, 0x22, 0x4D, 0x18}
)

// decompressor wraps a compressed stream with its decoding reader.
type decompressor interface {
	decompress(r io.Reader) (io.Reader, error)
}

var _ decompressor = gzipDecompressor{}
var _ decompressor = bzip2Decompressor{}
var _ decompressor = xzDecompressor{}
var _ decompressor = lzwDecompressor{}
var _ decompressor = lz4Decompressor{}

// NewReader sniffs the stream's magic number and returns a reader that
// yields the decompressed content. Streams in no recognized format pass
// through untouched. The input is consumed strictly once; peeked bytes are
// replayed to the wrapped reader.
func NewReader(r io.Reader) (io.Reader, error) {
	peeker := &peekReader{reader: r}
	head, err := peeker.Peek(peekSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	format := detectFormat(head)
	if format == nil {
		return peeker, nil
	}
	return format.decompress(peeker)
}

// detectFormat returns the decompressor matching the magic number, or nil
// when the content is not in a format we know.
func detectFormat(input []byte) decompressor {
	log := logging.GetLogger()

	if len(input) < 2 {
		return nil
	}
	if len(input) < peekSize {
		input = append(input, make([]byte, peekSize-len(input))...)
	}

	switch {
	case bytes.HasPrefix(input, gzipMagic):
		log.Debug().Str("type", "gzip").Msg("Compression Format")
		return gzipDecompressor{}
	case bytes.HasPrefix(input, bzipMagic):
		log.Debug().Str("type", "bzip2").Msg("Compression Format")
		return bzip2Decompressor{}
	case bytes.HasPrefix(input, lzwMagic):
		// The high order 3 bits of byte[2] hold litWidth-9; the low 5
		// bits are unused by unix compress.
		litWidth := int(input[2]>>5) + 9
		log.Debug().Str("type", "lzw").Int("litWidth", litWidth).Msg("Compression Format")
		return lzwDecompressor{order: lzw.MSB, litWidth: litWidth}
	case bytes.HasPrefix(input, lz4Magic):
		log.Debug().Str("type", "lz4").Msg("Compression Format")
		return lz4Decompressor{}
	case bytes.HasPrefix(input, xzMagic):
		log.Debug().Str("type", "xz").Msg("Compression Format")
		return xzDecompressor{}
	default:
		log.Debug().Str("type", "none").Msg("Compression Format")
		return nil
	}
}

type gzipDecompressor struct{}

func (d gzipDecompressor) decompress(r io.Reader) (io.Reader, error) {
	return gzip.NewReader(r)
}

type bzip2Decompressor struct{}

func (d bzip2Decompressor) decompress(r io.Reader) (io.Reader, error) {
	return bzip2.NewReader(r), nil
}

type xzDecompressor struct{}

func (d xzDecompressor) decompress(r io.Reader) (io.Reader, error) {
	return xz.NewReader(r)
}

type lzwDecompressor struct {
	litWidth int
	order    lzw.Order
}

func (d lzwDecompressor) decompress(r io.Reader) (io.Reader, error) {
	return lzw.NewReader(r, d.order, d.litWidth), nil
}

type lz4Decompressor struct{}

func (d lz4Decompressor) decompress(r io.Reader) (io.Reader, error) {
	return lz4.NewReader(r), nil
}
