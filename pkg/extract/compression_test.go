package extract

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/pierrec/lz4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name       string
		input      []byte
		expectType string
	}{
		{
			name:       "GZIP",
			input:      []byte{0x1f, 0x8b},
			expectType: "extract.gzipDecompressor",
		},
		{
			name:       "BZIP2",
			input:      []byte{0x42, 0x5a},
			expectType: "extract.bzip2Decompressor",
		},
		{
			name:       "XZ",
			input:      []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
			expectType: "extract.xzDecompressor",
		},
		{
			name:       "LZ4",
			input:      []byte{0x04, 0x22, 0x4d, 0x18},
			expectType: "extract.lz4Decompressor",
		},
		{
			name:       "LZW",
			input:      []byte{0x1f, 0x9d, 0x90},
			expectType: "extract.lzwDecompressor",
		},
		{
			name:       "Less than 2 bytes",
			input:      []byte{0x1f},
			expectType: "",
		},
		{
			name:       "UNKNOWN",
			input:      []byte{0xde, 0xad},
			expectType: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := detectFormat(tt.input)
			assert.Equal(t, tt.expectType, stringFromInterface(result))
		})
	}
}

func stringFromInterface(i interface{}) string {
	if i == nil {
		return ""
	}
	return fmt.Sprintf("%T", i)
}

func TestNewReaderRoundTrips(t *testing.T) {
	plain := []byte(strings.Repeat("the quick brown fox\n", 100))

	compressors := map[string]func([]byte) []byte{
		"gzip": func(data []byte) []byte {
			var buf bytes.Buffer
			w := gzip.NewWriter(&buf)
			_, _ = w.Write(data)
			_ = w.Close()
			return buf.Bytes()
		},
		"xz": func(data []byte) []byte {
			var buf bytes.Buffer
			w, err := xz.NewWriter(&buf)
			require.NoError(t, err)
			_, _ = w.Write(data)
			_ = w.Close()
			return buf.Bytes()
		},
		"lz4": func(data []byte) []byte {
			var buf bytes.Buffer
			w := lz4.NewWriter(&buf)
			_, _ = w.Write(data)
			_ = w.Close()
			return buf.Bytes()
		},
	}

	for name, compress := range compressors {
		t.Run(name, func(t *testing.T) {
			reader, err := NewReader(bytes.NewReader(compress(plain)))
			require.NoError(t, err)
			out, err := io.ReadAll(reader)
			require.NoError(t, err)
			assert.Equal(t, plain, out)
		})
	}
}

func TestNewReaderPassesThroughUnknownFormat(t *testing.T) {
	plain := []byte("just plain text, nothing to unpack")
	reader, err := NewReader(bytes.NewReader(plain))
	require.NoError(t, err)
	out, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, plain, out)
}

func TestNewReaderShortStream(t *testing.T) {
	plain := []byte("hi")
	reader, err := NewReader(bytes.NewReader(plain))
	require.NoError(t, err)
	out, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, plain, out)
}

func TestPeekReaderReplaysPeekedBytes(t *testing.T) {
	p := &peekReader{reader: strings.NewReader("0123456789")}
	head, err := p.Peek(4)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(head))

	rest, err := io.ReadAll(p)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(rest))
}
