package seb

import (
	"context"

	"github.com/pkg/errors"
)

// App is the synchronous handler signature: it consumes a Request,
// blocking on body reads as needed, and produces a Response.
type App func(*Request) (*Response, error)

// Serve runs one complete exchange: it builds the Request, invokes app
// and streams the returned response to the transport. The app runs in
// the calling goroutine; a transport typically dedicates one goroutine
// per exchange so that a blocking handler never stalls its event loop.
func Serve(ctx context.Context, app App, desc *Descriptor, receive ReceiveFunc, send SendFunc) (err error) {
	resp, err := app(NewRequest(ctx, desc, receive, send))
	if err != nil {
		return errors.WithStack(err)
	}
	if resp == nil {
		return errors.New("app returned no response")
	}
	return resp.Handler(desc)(ctx, receive, send)
}
