package seb

import (
	"context"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// ErrUnexpectedEventType is returned when the transport delivers an event
// type that is not valid at that point in the exchange.
type ErrUnexpectedEventType struct {
	Type EventType
}

func (e ErrUnexpectedEventType) Error() string {
	return "unexpected event type " + strconv.Quote(string(e.Type))
}

// InputStream exposes a blocking byte-stream read over an asynchronous
// event source. It consumes one event per underlying receive and buffers
// any surplus, fetching no more events than the current read requires.
//
// An InputStream is exclusively owned by one exchange and must not be
// used concurrently from multiple goroutines.
type InputStream struct {
	ctx       context.Context
	receive   ReceiveFunc
	buffer    []byte // unread surplus from the last event
	exhausted bool   // no more bytes will ever be returned
	ended     bool   // receive loop terminated, no further receives may be issued
}

// NewInputStream returns an InputStream reading from receive. The context
// is the exchange's context and bounds every underlying receive.
func NewInputStream(ctx context.Context, receive ReceiveFunc) *InputStream {
	return &InputStream{ctx: ctx, receive: receive}
}

// receiveChunk consumes exactly one event from the source and returns its
// body bytes. It returns empty without issuing a receive once the source
// has ended. A disconnect is not an error, it ends the stream.
func (is *InputStream) receiveChunk() (b []byte, err error) {
	if is.ended {
		return
	}
	ev, err := is.receive(is.ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	switch ev.Type {
	case EventDisconnect:
		is.ended = true
		return nil, nil
	case EventRequest:
		if !ev.MoreBody {
			is.ended = true
		}
		return ev.Body, nil
	}
	return nil, errors.WithStack(ErrUnexpectedEventType{Type: ev.Type})
}

// Read implements io.Reader. Unlike most readers it does not short read:
// it blocks until len(p) bytes have been read or the source is drained,
// whichever comes first. Once drained it returns io.EOF, idempotently.
func (is *InputStream) Read(p []byte) (n int, err error) {
	if is.exhausted {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	n = copy(p, is.buffer)
	is.buffer = is.buffer[n:]
	for n < len(p) {
		var b []byte
		if b, err = is.receiveChunk(); err != nil {
			return
		}
		if len(b) == 0 {
			is.exhausted = true
			if n == 0 {
				err = io.EOF
			}
			return
		}
		m := copy(p[n:], b)
		is.buffer = b[m:]
		n += m
	}
	return
}

// ReadAll reads until the source is drained and returns everything.
// Note that this buffers the entire body in memory; it is not safe to
// call when the body may be unbounded.
func (is *InputStream) ReadAll() (b []byte, err error) {
	p := make([]byte, ReadChunkSize)
	for err == nil {
		var n int
		n, err = is.Read(p)
		b = append(b, p[:n]...)
	}
	if errors.Cause(err) == io.EOF {
		err = nil
	}
	return
}

// Close marks the stream ended so that no further receives are issued.
// Reads after Close drain the buffer and then report end of stream.
func (is *InputStream) Close() error {
	is.ended = true
	return nil
}
