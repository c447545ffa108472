package seb

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// ResponseWriter implements http.ResponseWriter over the bridge's
// streaming body channel. It is used by HandlerApp to run ordinary
// net/http handlers as an App.
type ResponseWriter struct {
	Code        int         // the HTTP response code from WriteHeader
	HeaderMap   http.Header // the HTTP response headers
	ctx         context.Context
	ch          chan []byte
	started     chan struct{}
	wroteHeader bool
}

// NewResponseWriter returns an initialized ResponseWriter. The context
// unblocks pending writes when the exchange is abandoned.
func NewResponseWriter(ctx context.Context) *ResponseWriter {
	return &ResponseWriter{
		Code:      200,
		HeaderMap: make(http.Header),
		ctx:       ctx,
		ch:        make(chan []byte),
		started:   make(chan struct{}),
	}
}

// Header returns the response headers.
func (rw *ResponseWriter) Header() http.Header {
	return rw.HeaderMap
}

// Write sends buf onward as one body chunk, blocking until the transport
// has accepted it. This preserves backpressure from the transport into
// the handler.
func (rw *ResponseWriter) Write(buf []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(200)
	}
	if len(buf) > 0 {
		select {
		case rw.ch <- append([]byte(nil), buf...):
		case <-rw.ctx.Done():
			return 0, errors.WithStack(rw.ctx.Err())
		}
	}
	return len(buf), nil
}

// WriteHeader sets rw.Code and releases the response to the transport.
func (rw *ResponseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.Code = code
		rw.wroteHeader = true
		close(rw.started)
	}
}

// Flush is a no-op; every Write already leaves as its own frame.
func (rw *ResponseWriter) Flush() {}

// finish ends the body after the handler has returned.
func (rw *ResponseWriter) finish() {
	if !rw.wroteHeader {
		rw.WriteHeader(200)
	}
	close(rw.ch)
}

// HTTPRequest builds a net/http request view of the exchange, sharing
// the blocking body reader.
func (r *Request) HTTPRequest() *http.Request {
	desc := r.Descriptor
	var host string
	for _, hf := range desc.Headers {
		if string(hf.Name) == "host" {
			host = string(hf.Value)
			break
		}
	}
	header := make(http.Header, len(desc.Headers))
	for _, hf := range desc.Headers {
		header.Add(string(hf.Name), string(hf.Value))
	}
	return &http.Request{
		Method: desc.Method,
		URL: &url.URL{
			Path:     desc.RootPath + desc.Path,
			RawQuery: r.Environ[EnvQueryString],
		},
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     header,
		Body:       r.Body,
		Host:       host,
		RemoteAddr: r.Environ[EnvRemoteAddr],
		RequestURI: desc.RootPath + desc.Path,
	}
}

// HandlerApp adapts a net/http handler to an App. The handler runs on
// its own goroutine; its response headers are captured when it first
// writes and its body is streamed chunk by chunk with an unknowable
// length.
func HandlerApp(h http.Handler) App {
	return func(req *Request) (*Response, error) {
		rw := NewResponseWriter(req.Context())
		go func() {
			h.ServeHTTP(rw, req.HTTPRequest())
			rw.finish()
		}()
		<-rw.started
		resp := NewResponse()
		resp.Status = rw.Code
		resp.Header = rw.HeaderMap
		resp.SetBodyChan(rw.ch)
		return resp, nil
	}
}
