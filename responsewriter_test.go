package seb

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
)

func Test_ResponseWriter_DefaultsTo200(t *testing.T) {
	rw := NewResponseWriter(context.Background())
	assert.Equal(t, 200, rw.Code)
	assert.NotNil(t, rw.Header())
}

func Test_HandlerApp_Echo(t *testing.T) {
	defer leaktest.Check(t)()
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-From", "stdlib")
		w.WriteHeader(http.StatusTeapot)
		fmt.Fprint(w, "method=", r.Method, " path=", r.URL.Path, " q=", r.URL.RawQuery)
	})
	desc := &Descriptor{Method: "GET", Path: "/h", RawQuery: []byte("k=v")}
	receive, _ := scriptReceiver(bodyEvent("", false))
	sr := &sendRecorder{}
	assert.NoError(t, Serve(context.Background(), HandlerApp(h), desc, receive, sr.send))

	assertStart(t, sr.events[0], http.StatusTeapot)
	var foundHeader bool
	for _, hf := range sr.events[0].Headers {
		if string(hf.Name) == "x-from" {
			foundHeader = true
			assert.Equal(t, "stdlib", string(hf.Value))
		}
	}
	assert.True(t, foundHeader)

	var body []byte
	for _, ev := range sr.events[1:] {
		body = append(body, ev.Body...)
	}
	assert.Equal(t, "method=GET path=/h q=k=v", string(body))
	// handler body length is unknowable, so the last frame is a terminal
	last := sr.events[len(sr.events)-1]
	assert.Equal(t, 0, len(last.Body))
	assert.False(t, last.MoreBody)
}

func Test_HandlerApp_ReadsBody(t *testing.T) {
	defer leaktest.Check(t)()
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := make([]byte, 5)
		n, _ := r.Body.Read(b)
		w.Write(b[:n])
	})
	desc := &Descriptor{Method: "POST", Path: "/"}
	receive, _ := scriptReceiver(bodyEvent("12345rest", false))
	sr := &sendRecorder{}
	assert.NoError(t, Serve(context.Background(), HandlerApp(h), desc, receive, sr.send))
	assert.Equal(t, "12345", string(sr.events[1].Body))
}

func Test_HandlerApp_CancelUnblocksWriter(t *testing.T) {
	defer leaktest.Check(t)()
	blocked := make(chan struct{})
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("one"))
		close(blocked)
		// nobody consumes this write; only cancellation releases it
		w.Write([]byte("two"))
	})
	ctx, cancel := context.WithCancel(context.Background())
	receive, _ := scriptReceiver(bodyEvent("", false))
	req := NewRequest(ctx, &Descriptor{Method: "GET", Path: "/"}, receive, nil)
	resp, err := HandlerApp(h)(req)
	assert.NoError(t, err)
	assert.NotNil(t, resp)

	src := resp.src
	b, err := src.Next(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "one", string(b))
	<-blocked
	cancel()
	// the handler goroutine exits once its pending write is released;
	// leaktest verifies that
}
