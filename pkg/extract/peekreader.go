package extract

import (
	"bytes"
	"errors"
	"io"
)

var _ io.Reader = &peekReader{}

// peekReader lets us look at the head of a stream without losing it:
// peeked bytes are buffered and replayed before reads fall through to the
// underlying reader.
type peekReader struct {
	reader io.Reader
	buffer *bytes.Buffer
}

func (p *peekReader) Read(b []byte) (int, error) {
	if p.buffer != nil && p.buffer.Len() > 0 {
		n, err := p.buffer.Read(b)
		if errors.Is(err, io.EOF) {
			err = nil
		}
		return n, err
	}
	return p.reader.Read(b)
}

// Peek returns the first n bytes of the stream. A short stream returns
// what exists along with io.EOF or io.ErrUnexpectedEOF.
func (p *peekReader) Peek(n int) ([]byte, error) {
	if p.buffer == nil {
		p.buffer = bytes.NewBuffer(make([]byte, 0, n))
	}
	if _, err := io.CopyN(p.buffer, p.reader, int64(n-p.buffer.Len())); err != nil {
		return p.buffer.Bytes(), err
	}
	return p.buffer.Bytes(), nil
}
