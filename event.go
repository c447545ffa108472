package seb

import "context"

// EventType identifies a transport event.
type EventType string

const (
	// EventRequest carries a chunk of inbound request body data.
	EventRequest EventType = "http.request"
	// EventDisconnect signals that the client went away.
	EventDisconnect EventType = "http.disconnect"
	// EventResponseStart carries the response status and header list.
	EventResponseStart EventType = "http.response.start"
	// EventResponseBody carries a chunk of outbound response body data.
	EventResponseBody EventType = "http.response.body"
)

// HeaderField is one name-value pair as carried on the wire.
// Names are case-insensitive; the transport delivers them lowercased.
type HeaderField struct {
	Name  []byte
	Value []byte
}

// Event is one discrete message exchanged with the asynchronous transport.
// Which fields are meaningful depends on Type.
type Event struct {
	Type     EventType
	Body     []byte        // body bytes, request and response body events
	MoreBody bool          // set when more body events follow
	Status   int           // status code, response start events only
	Headers  []HeaderField // header list, response start events only
}

// ReceiveFunc returns the next inbound event for one exchange, blocking
// the calling goroutine until one is available. Calls for one exchange
// are strictly sequential, one in flight at a time.
type ReceiveFunc func(ctx context.Context) (Event, error)

// SendFunc delivers one outbound event to the transport. Calls for one
// exchange are strictly sequential and delivered in call order.
type SendFunc func(ctx context.Context, ev Event) error

// ExchangeHandler runs the response side of one exchange against the
// transport's receive and send primitives.
type ExchangeHandler func(ctx context.Context, receive ReceiveFunc, send SendFunc) error
