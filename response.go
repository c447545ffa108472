// Copyright 2019 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

package seb

import (
	"context"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
)

// Response is a complete synchronous response: status, headers and a
// body given as one of several chunk producers. The zero value is not
// usable; call NewResponse.
type Response struct {
	Status            int
	Header            http.Header
	Charset           string // charset for encoding text chunks, UTF-8 when empty
	DirectPassthrough bool   // forward the body source without re-encoding
	texts             []string
	hasText           bool
	src               ChunkSource
}

// NewResponse returns an empty 200 response.
func NewResponse() *Response {
	return &Response{
		Status: http.StatusOK,
		Header: make(http.Header),
	}
}

// SetBody sets a fixed in-memory body. The chunk count is knowable, so
// the final data frame will be sent without a continuation tag.
func (r *Response) SetBody(chunks ...[]byte) {
	r.src = NewByteChunks(chunks...)
	r.hasText = false
}

// SetText sets a fixed in-memory text body. Each chunk is encoded using
// the response charset when it is sent, unless DirectPassthrough is set.
func (r *Response) SetText(chunks ...string) {
	r.texts = chunks
	r.hasText = true
	r.src = nil
}

// SetBodySource sets an arbitrary chunk producer as the body.
func (r *Response) SetBodySource(src ChunkSource) {
	r.src = src
	r.hasText = false
}

// SetBodyFunc sets a lazy single-pass body. The chunk count is not
// knowable, so a terminal frame will follow the data frames.
func (r *Response) SetBodyFunc(fn func(ctx context.Context) ([]byte, error)) {
	r.SetBodySource(ChunkFunc(fn))
}

// SetBodyChan sets an asynchronous body fed by a channel. Closing the
// channel ends the body.
func (r *Response) SetBodyChan(ch <-chan []byte) {
	r.SetBodySource(ChunkChan(ch))
}

// SetBodyReader sets a direct passthrough body: the reader's bytes are
// forwarded unmodified in ReadChunkSize pieces.
func (r *Response) SetBodyReader(rd io.Reader) {
	r.SetBodySource(NewReaderChunks(rd))
	r.DirectPassthrough = true
}

// bodilessStatus reports whether a status code forbids a response body.
func bodilessStatus(status int) bool {
	return (status >= 100 && status < 200) || status == 204 || status == 304
}

// effectiveSource resolves the declared body against the request method
// and response status into the sequence actually sent.
func (r *Response) effectiveSource(method string) (src ChunkSource, err error) {
	if strings.EqualFold(method, "HEAD") || bodilessStatus(r.Status) {
		return NewByteChunks(), nil
	}
	if r.hasText {
		var enc *encoding.Encoder
		if !r.DirectPassthrough {
			if enc, err = charsetEncoder(r.Charset); err != nil {
				return nil, err
			}
		}
		return NewTextChunks(enc, r.texts...), nil
	}
	if r.src == nil {
		return NewByteChunks(), nil
	}
	return r.src, nil
}

// headerFields renders the header map as an ordered list of lowercased
// wire pairs. Keys are emitted in sorted order, values in addition order.
func (r *Response) headerFields() (hfs []HeaderField) {
	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range r.Header[name] {
			hfs = append(hfs, HeaderField{
				Name:  []byte(strings.ToLower(name)),
				Value: []byte(value),
			})
		}
	}
	return
}

// Handler returns an ExchangeHandler that sends this response for the
// exchange described by desc. The handler drives the full send protocol:
// one start frame, the body frames and, when the chunk count was not
// knowable in advance, one terminal frame.
func (r *Response) Handler(desc *Descriptor) ExchangeHandler {
	return func(ctx context.Context, receive ReceiveFunc, send SendFunc) error {
		return r.respond(ctx, desc.Method, send)
	}
}

func (r *Response) respond(ctx context.Context, method string, send SendFunc) (err error) {
	src, err := r.effectiveSource(method)
	if err != nil {
		return
	}
	ev := Event{
		Type:    EventResponseStart,
		Status:  r.Status,
		Headers: r.headerFields(),
	}
	if err = send(ctx, ev); err != nil {
		return errors.WithStack(err)
	}
	if fixed, ok := src.(FixedChunkSource); ok {
		return r.sendFixed(ctx, fixed, send)
	}
	return r.sendStreaming(ctx, src, send)
}

// sendFixed sends a body whose chunk count is known in advance. The last
// data frame is sent without a continuation tag and no terminal frame
// follows it. An empty body is a single untagged empty frame.
func (r *Response) sendFixed(ctx context.Context, src FixedChunkSource, send SendFunc) (err error) {
	count := src.ChunkCount()
	if count == 0 {
		if err = send(ctx, Event{Type: EventResponseBody}); err != nil {
			err = errors.WithStack(err)
		}
		return
	}
	for i := 0; i < count; i++ {
		var b []byte
		if b, err = src.Next(ctx); err != nil {
			return errors.Wrapf(err, "fixed body chunk %d of %d", i+1, count)
		}
		ev := Event{
			Type:     EventResponseBody,
			Body:     b,
			MoreBody: i < count-1,
		}
		if err = send(ctx, ev); err != nil {
			return errors.WithStack(err)
		}
	}
	return
}

// sendStreaming sends a body of unknown length. Every data frame carries
// the continuation tag and an empty untagged terminal frame ends the
// exchange.
func (r *Response) sendStreaming(ctx context.Context, src ChunkSource, send SendFunc) (err error) {
	for {
		var b []byte
		if b, err = src.Next(ctx); err != nil {
			if errors.Cause(err) != io.EOF {
				return
			}
			if err = send(ctx, Event{Type: EventResponseBody}); err != nil {
				err = errors.WithStack(err)
			}
			return
		}
		ev := Event{
			Type:     EventResponseBody,
			Body:     b,
			MoreBody: true,
		}
		if err = send(ctx, ev); err != nil {
			return errors.WithStack(err)
		}
	}
}
