package seb

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// ChunkSource produces the bytes of a response body chunk by chunk.
// Sources are lazy, single pass and not restartable; Next returns io.EOF
// after the final chunk and must not be called again after that.
type ChunkSource interface {
	Next(ctx context.Context) ([]byte, error)
}

// FixedChunkSource is a ChunkSource whose total chunk count is known
// before consuming it. Whether a source is fixed is a static property of
// its type, never a runtime probe.
type FixedChunkSource interface {
	ChunkSource
	ChunkCount() int
}

// ByteChunks is a fixed in-memory sequence of byte chunks.
type ByteChunks struct {
	chunks [][]byte
	pos    int
}

// NewByteChunks returns a ByteChunks over the given chunks.
func NewByteChunks(chunks ...[]byte) *ByteChunks {
	return &ByteChunks{chunks: chunks}
}

func (s *ByteChunks) Next(ctx context.Context) ([]byte, error) {
	if s.pos >= len(s.chunks) {
		return nil, io.EOF
	}
	b := s.chunks[s.pos]
	s.pos++
	return b, nil
}

// ChunkCount returns the total number of chunks.
func (s *ByteChunks) ChunkCount() int { return len(s.chunks) }

// TextChunks is a fixed in-memory sequence of text chunks, each encoded
// with the given encoder as it is produced. A nil encoder means the text
// is passed through as its UTF-8 bytes.
type TextChunks struct {
	chunks []string
	enc    *encoding.Encoder
	pos    int
}

// NewTextChunks returns a TextChunks over the given chunks.
func NewTextChunks(enc *encoding.Encoder, chunks ...string) *TextChunks {
	return &TextChunks{chunks: chunks, enc: enc}
}

func (s *TextChunks) Next(ctx context.Context) ([]byte, error) {
	if s.pos >= len(s.chunks) {
		return nil, io.EOF
	}
	text := s.chunks[s.pos]
	s.pos++
	if s.enc == nil {
		return []byte(text), nil
	}
	encoded, err := s.enc.String(text)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return []byte(encoded), nil
}

// ChunkCount returns the total number of chunks.
func (s *TextChunks) ChunkCount() int { return len(s.chunks) }

// ChunkFunc adapts a pull function to a ChunkSource. The function must
// return io.EOF after the final chunk. The chunk count is unknowable.
type ChunkFunc func(ctx context.Context) ([]byte, error)

func (f ChunkFunc) Next(ctx context.Context) ([]byte, error) { return f(ctx) }

// ChunkChan adapts a channel of chunks to a ChunkSource. A closed channel
// ends the sequence. The chunk count is unknowable.
type ChunkChan <-chan []byte

func (c ChunkChan) Next(ctx context.Context) ([]byte, error) {
	select {
	case b, ok := <-c:
		if !ok {
			return nil, io.EOF
		}
		return b, nil
	case <-ctx.Done():
		return nil, errors.WithStack(ctx.Err())
	}
}

// ReaderChunks adapts an io.Reader to a ChunkSource, reading it in
// ReadChunkSize pieces. The bytes are forwarded as read, unmodified.
type ReaderChunks struct {
	r   io.Reader
	buf []byte
}

// NewReaderChunks returns a ReaderChunks over r.
func NewReaderChunks(r io.Reader) *ReaderChunks {
	return &ReaderChunks{r: r}
}

func (s *ReaderChunks) Next(ctx context.Context) (b []byte, err error) {
	if s.buf == nil {
		s.buf = readBufAlloc()
	}
	n, err := s.r.Read(s.buf)
	if n > 0 {
		b = append([]byte(nil), s.buf[:n]...)
		if err == io.EOF {
			err = nil
		}
		return b, err
	}
	readBufFree(s.buf)
	s.buf = nil
	if err == nil {
		err = io.EOF
	}
	if err != io.EOF {
		err = errors.WithStack(err)
	}
	return nil, err
}

// charsetEncoder returns an encoder for the named IANA charset, or nil
// for UTF-8 and the empty string, which need no re-encoding.
func charsetEncoder(charset string) (*encoding.Encoder, error) {
	if charset == "" || strings.EqualFold(charset, "utf-8") {
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil {
		return nil, errors.Wrapf(err, "charset %q", charset)
	}
	if enc == nil {
		return nil, errors.Errorf("charset %q has no encoder", charset)
	}
	return enc.NewEncoder(), nil
}
