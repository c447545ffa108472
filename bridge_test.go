package seb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Serve_FullExchange(t *testing.T) {
	desc := &Descriptor{
		Method:   "POST",
		Path:     "/x",
		RawQuery: []byte("a=1"),
		Headers: []HeaderField{
			{Name: []byte("x-a"), Value: []byte("1")},
			{Name: []byte("x-a"), Value: []byte("2")},
		},
	}
	receive, _ := scriptReceiver(
		bodyEvent("ping ", true),
		bodyEvent("pong", false),
	)
	var sawEnviron map[string]string
	app := func(req *Request) (*Response, error) {
		sawEnviron = req.Environ
		body, err := req.Body.ReadAll()
		if err != nil {
			return nil, err
		}
		resp := NewResponse()
		resp.Status = 201
		resp.Header.Set("X-Reply", "yes")
		resp.SetBody(body)
		return resp, nil
	}
	sr := &sendRecorder{}
	assert.NoError(t, Serve(context.Background(), app, desc, receive, sr.send))

	assert.Equal(t, "a=1", sawEnviron[EnvQueryString])
	assert.Equal(t, "1; 2", sawEnviron["HTTP_X_A"])

	assert.Equal(t, 2, len(sr.events))
	assertStart(t, sr.events[0], 201)
	assert.Equal(t, "ping pong", string(sr.events[1].Body))
	assert.False(t, sr.events[1].MoreBody)
}

func Test_Serve_AppError(t *testing.T) {
	boom := assert.AnError
	app := func(req *Request) (*Response, error) { return nil, boom }
	receive, _ := scriptReceiver()
	sr := &sendRecorder{}
	err := Serve(context.Background(), app, &Descriptor{Method: "GET", Path: "/"}, receive, sr.send)
	assert.Error(t, err)
	// nothing was sent, the host decides how to fail the exchange
	assert.Equal(t, 0, sr.calls)
}

func Test_Serve_NilResponse(t *testing.T) {
	app := func(req *Request) (*Response, error) { return nil, nil }
	receive, _ := scriptReceiver()
	err := Serve(context.Background(), app, &Descriptor{Method: "GET", Path: "/"}, receive, (&sendRecorder{}).send)
	assert.Error(t, err)
}

func Test_Response_HandlerUsesDescriptorMethod(t *testing.T) {
	resp := NewResponse()
	resp.SetBody([]byte("hidden"))
	sr := &sendRecorder{}
	handler := resp.Handler(&Descriptor{Method: "HEAD", Path: "/"})
	assert.NoError(t, handler(context.Background(), nil, sr.send))
	assert.Equal(t, 2, len(sr.events))
	assert.Equal(t, 0, len(sr.events[1].Body))
}
