package seb

import (
	"context"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Gateway hosts an App over net/http. It translates each incoming HTTP
// request into an exchange: the request body is pulled chunk by chunk as
// body events, so the transport's natural backpressure is preserved, and
// outbound events are applied to the ResponseWriter as they arrive.
type Gateway struct {
	App App
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	desc := DescriptorFromRequest(r)
	sender := &gatewaySender{w: w}
	err := Serve(r.Context(), g.App, desc, bodyReceiver(r), sender.send)
	if err != nil {
		log.Print("Gateway.ServeHTTP(): ", err.Error())
		if !sender.started {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// endpointFromAddr splits a "host:port" address, returning nil when it
// cannot be parsed.
func endpointFromAddr(addr string) *Endpoint {
	host, portText, err := net.SplitHostPort(addr)
	if err != nil {
		return nil
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		return nil
	}
	return &Endpoint{Host: host, Port: port}
}

// DescriptorFromRequest builds an exchange Descriptor from a net/http
// request. The Host header is restored into the header list since
// net/http strips it out of Header.
func DescriptorFromRequest(r *http.Request) *Descriptor {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	headers := make([]HeaderField, 0, len(r.Header)+1)
	if r.Host != "" {
		headers = append(headers, HeaderField{Name: []byte("host"), Value: []byte(r.Host)})
	}
	for name, values := range r.Header {
		wirename := []byte(strings.ToLower(name))
		for _, value := range values {
			headers = append(headers, HeaderField{Name: wirename, Value: []byte(value)})
		}
	}
	var server *Endpoint
	if addr, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok {
		server = endpointFromAddr(addr.String())
	}
	return &Descriptor{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: []byte(r.URL.RawQuery),
		Scheme:   scheme,
		Server:   server,
		Client:   endpointFromAddr(r.RemoteAddr),
		Headers:  headers,
	}
}

// bodyReceiver returns a ReceiveFunc that pulls the request body one
// chunk per receive. A failed body read means the client went away and
// is reported as a disconnect event, not an error.
func bodyReceiver(r *http.Request) ReceiveFunc {
	buf := readBufAlloc()
	done := false
	return func(ctx context.Context) (ev Event, err error) {
		if done {
			ev.Type = EventDisconnect
			return
		}
		select {
		case <-ctx.Done():
			done = true
			readBufFree(buf)
			ev.Type = EventDisconnect
			return
		default:
		}
		n, readErr := r.Body.Read(buf)
		ev.Type = EventRequest
		if n > 0 {
			ev.Body = append([]byte(nil), buf[:n]...)
			ev.MoreBody = true
			if readErr == nil {
				return
			}
		}
		done = true
		readBufFree(buf)
		if readErr != nil && readErr != io.EOF {
			ev = Event{Type: EventDisconnect}
			return
		}
		ev.MoreBody = false
		return
	}
}

// gatewaySender applies outbound events to a http.ResponseWriter,
// flushing after each continued body chunk so streaming responses are
// delivered as they are produced.
type gatewaySender struct {
	w       http.ResponseWriter
	started bool
}

func (s *gatewaySender) send(ctx context.Context, ev Event) (err error) {
	switch ev.Type {
	case EventResponseStart:
		for _, hf := range ev.Headers {
			s.w.Header().Add(string(hf.Name), string(hf.Value))
		}
		s.w.WriteHeader(ev.Status)
		s.started = true
	case EventResponseBody:
		if len(ev.Body) > 0 {
			if _, err = s.w.Write(ev.Body); err != nil {
				return errors.WithStack(err)
			}
			if ev.MoreBody {
				if f, ok := s.w.(http.Flusher); ok {
					f.Flush()
				}
			}
		}
	default:
		err = errors.WithStack(ErrUnexpectedEventType{Type: ev.Type})
	}
	return
}
