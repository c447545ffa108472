package seb

import (
	"context"
	"log"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
)

// FastGateway hosts an App over fasthttp. fasthttp buffers the request
// body in full, so the body is delivered as a single final body event.
type FastGateway struct {
	App App
}

// Handler is a fasthttp.RequestHandler serving the gateway's App.
func (g *FastGateway) Handler(ctx *fasthttp.RequestCtx) {
	desc := descriptorFromRequestCtx(ctx)
	body := ctx.PostBody()
	delivered := false
	receive := func(context.Context) (ev Event, err error) {
		if delivered {
			ev.Type = EventDisconnect
			return
		}
		delivered = true
		ev.Type = EventRequest
		ev.Body = body
		return
	}
	sender := &fastSender{ctx: ctx}
	if err := Serve(ctx, g.App, desc, receive, sender.send); err != nil {
		log.Print("FastGateway.Handler(): ", err.Error())
		if !sender.started {
			ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		}
	}
}

func descriptorFromRequestCtx(ctx *fasthttp.RequestCtx) *Descriptor {
	var headers []HeaderField
	ctx.Request.Header.VisitAll(func(key, value []byte) {
		name := make([]byte, len(key))
		for i, c := range key {
			if 'A' <= c && c <= 'Z' {
				c += 'a' - 'A'
			}
			name[i] = c
		}
		headers = append(headers, HeaderField{
			Name:  name,
			Value: append([]byte(nil), value...),
		})
	})
	return &Descriptor{
		Method:   string(ctx.Method()),
		Path:     string(ctx.Path()),
		RawQuery: append([]byte(nil), ctx.URI().QueryString()...),
		Scheme:   string(ctx.URI().Scheme()),
		Server:   endpointFromAddr(ctx.LocalAddr().String()),
		Client:   endpointFromAddr(ctx.RemoteAddr().String()),
		Headers:  headers,
	}
}

type fastSender struct {
	ctx     *fasthttp.RequestCtx
	started bool
}

func (s *fastSender) send(_ context.Context, ev Event) (err error) {
	switch ev.Type {
	case EventResponseStart:
		s.ctx.SetStatusCode(ev.Status)
		for _, hf := range ev.Headers {
			s.ctx.Response.Header.AddBytesKV(hf.Name, hf.Value)
		}
		s.started = true
	case EventResponseBody:
		if len(ev.Body) > 0 {
			s.ctx.Response.AppendBody(ev.Body)
		}
	default:
		err = errors.WithStack(ErrUnexpectedEventType{Type: ev.Type})
	}
	return
}
