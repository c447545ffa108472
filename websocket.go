package seb

import (
	"context"
	"log"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// The websocket transport carries one exchange per connection. The first
// message is the descriptor, every following message is an event, all
// JSON encoded. There is no multiplexing of exchanges on one connection.

type wsEndpoint struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type wsDescriptor struct {
	Method   string      `json:"method"`
	Path     string      `json:"path"`
	RootPath string      `json:"root_path,omitempty"`
	Query    []byte      `json:"query,omitempty"`
	Scheme   string      `json:"scheme,omitempty"`
	Server   *wsEndpoint `json:"server,omitempty"`
	Client   *wsEndpoint `json:"client,omitempty"`
	Headers  [][2]string `json:"headers,omitempty"`
}

type wsEvent struct {
	Type     EventType   `json:"type"`
	Body     []byte      `json:"body,omitempty"`
	MoreBody bool        `json:"more_body,omitempty"`
	Status   int         `json:"status,omitempty"`
	Headers  [][2]string `json:"headers,omitempty"`
}

func (wd *wsDescriptor) descriptor() *Descriptor {
	desc := &Descriptor{
		Method:   wd.Method,
		Path:     wd.Path,
		RootPath: wd.RootPath,
		RawQuery: wd.Query,
		Scheme:   wd.Scheme,
	}
	if wd.Server != nil {
		desc.Server = &Endpoint{Host: wd.Server.Host, Port: wd.Server.Port}
	}
	if wd.Client != nil {
		desc.Client = &Endpoint{Host: wd.Client.Host, Port: wd.Client.Port}
	}
	for _, pair := range wd.Headers {
		desc.Headers = append(desc.Headers, HeaderField{
			Name:  []byte(pair[0]),
			Value: []byte(pair[1]),
		})
	}
	return desc
}

func (we *wsEvent) event() (ev Event) {
	ev.Type = we.Type
	ev.Body = we.Body
	ev.MoreBody = we.MoreBody
	ev.Status = we.Status
	for _, pair := range we.Headers {
		ev.Headers = append(ev.Headers, HeaderField{
			Name:  []byte(pair[0]),
			Value: []byte(pair[1]),
		})
	}
	return
}

func encodeWsEvent(ev Event) (we wsEvent) {
	we.Type = ev.Type
	we.Body = ev.Body
	we.MoreBody = ev.MoreBody
	we.Status = ev.Status
	for _, hf := range ev.Headers {
		we.Headers = append(we.Headers, [2]string{string(hf.Name), string(hf.Value)})
	}
	return
}

// ServeWebsocket runs one exchange over conn. It reads the descriptor
// message, serves app and returns when the response has been sent. The
// peer closing the connection mid-body is reported to the handler as a
// disconnect event. The caller retains ownership of conn.
func ServeWebsocket(ctx context.Context, conn *websocket.Conn, app App) (err error) {
	var wd wsDescriptor
	if err = conn.ReadJSON(&wd); err != nil {
		return errors.WithStack(err)
	}
	receive := func(context.Context) (ev Event, err error) {
		var we wsEvent
		if err = conn.ReadJSON(&we); err != nil {
			// peer went away or sent garbage; either way the
			// body stream is over
			log.Print("ServeWebsocket(): ", err.Error())
			return Event{Type: EventDisconnect}, nil
		}
		return we.event(), nil
	}
	send := func(_ context.Context, ev Event) (err error) {
		if err = conn.WriteJSON(encodeWsEvent(ev)); err != nil {
			err = errors.WithStack(err)
		}
		return
	}
	return Serve(ctx, app, wd.descriptor(), receive, send)
}
