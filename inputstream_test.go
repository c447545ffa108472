package seb

import (
	"context"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// scriptReceiver returns a ReceiveFunc playing back the given events and
// a counter of how many receives were issued.
func scriptReceiver(events ...Event) (ReceiveFunc, *int) {
	calls := new(int)
	return func(ctx context.Context) (Event, error) {
		if *calls >= len(events) {
			return Event{}, errors.New("receive past end of script")
		}
		ev := events[*calls]
		*calls++
		return ev, nil
	}, calls
}

func bodyEvent(body string, moreBody bool) Event {
	return Event{Type: EventRequest, Body: []byte(body), MoreBody: moreBody}
}

func Test_InputStream_ReadAllReassemblesChunks(t *testing.T) {
	receive, calls := scriptReceiver(
		bodyEvent("hello ", true),
		bodyEvent("wor", true),
		bodyEvent("ld", false),
	)
	is := NewInputStream(context.Background(), receive)
	b, err := is.ReadAll()
	assert.NoError(t, err)
	assert.Equal(t, "hello world", string(b))
	assert.Equal(t, 3, *calls)
}

func Test_InputStream_ReadExactAcrossChunkBoundaries(t *testing.T) {
	receive, _ := scriptReceiver(
		bodyEvent("abcde", true),
		bodyEvent("fgh", false),
	)
	is := NewInputStream(context.Background(), receive)

	p := make([]byte, 4)
	n, err := is.Read(p)
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "abcd", string(p))

	n, err = is.Read(p)
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "efgh", string(p))

	n, err = is.Read(p)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, errors.Cause(err))
}

func Test_InputStream_NoShortReadWhileDataIsComing(t *testing.T) {
	receive, calls := scriptReceiver(
		bodyEvent("a", true),
		bodyEvent("b", true),
		bodyEvent("c", false),
	)
	is := NewInputStream(context.Background(), receive)
	p := make([]byte, 3)
	n, err := is.Read(p)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "abc", string(p))
	assert.Equal(t, 3, *calls)
}

func Test_InputStream_EmptyReadBuffer(t *testing.T) {
	receive, calls := scriptReceiver(bodyEvent("x", false))
	is := NewInputStream(context.Background(), receive)
	n, err := is.Read(nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, *calls)
}

func Test_InputStream_DisconnectBeforeData(t *testing.T) {
	receive, calls := scriptReceiver(Event{Type: EventDisconnect})
	is := NewInputStream(context.Background(), receive)
	p := make([]byte, 8)
	for i := 0; i < 3; i++ {
		n, err := is.Read(p)
		assert.Equal(t, 0, n)
		assert.Equal(t, io.EOF, errors.Cause(err))
	}
	assert.Equal(t, 1, *calls)
}

func Test_InputStream_DisconnectMidBody(t *testing.T) {
	receive, calls := scriptReceiver(
		bodyEvent("partial", true),
		Event{Type: EventDisconnect},
	)
	is := NewInputStream(context.Background(), receive)
	b, err := is.ReadAll()
	assert.NoError(t, err)
	assert.Equal(t, "partial", string(b))
	assert.Equal(t, 2, *calls)
}

func Test_InputStream_NoReceiveAfterFinalChunk(t *testing.T) {
	receive, calls := scriptReceiver(bodyEvent("data", false))
	is := NewInputStream(context.Background(), receive)

	p := make([]byte, 4)
	n, err := is.Read(p)
	assert.NoError(t, err)
	assert.Equal(t, "data", string(p[:n]))
	assert.Equal(t, 1, *calls)

	// the next read observes the end without a new receive being issued
	n, err = is.Read(p)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, errors.Cause(err))
	assert.Equal(t, 1, *calls)
}

func Test_InputStream_ExhaustedReadsAreIdempotent(t *testing.T) {
	receive, _ := scriptReceiver(bodyEvent("", false))
	is := NewInputStream(context.Background(), receive)
	for _, size := range []int{0, 1, 100, ReadChunkSize} {
		n, err := is.Read(make([]byte, size))
		assert.Equal(t, 0, n)
		if size > 0 {
			assert.Equal(t, io.EOF, errors.Cause(err))
		} else {
			assert.NoError(t, err)
		}
	}
}

func Test_InputStream_EmptyChunkExhausts(t *testing.T) {
	receive, calls := scriptReceiver(bodyEvent("", true))
	is := NewInputStream(context.Background(), receive)
	b, err := is.ReadAll()
	assert.NoError(t, err)
	assert.Equal(t, 0, len(b))
	assert.Equal(t, 1, *calls)
}

func Test_InputStream_UnexpectedEventType(t *testing.T) {
	receive, _ := scriptReceiver(Event{Type: EventResponseStart})
	is := NewInputStream(context.Background(), receive)
	_, err := is.ReadAll()
	assert.Error(t, err)
	assert.Equal(t, ErrUnexpectedEventType{Type: EventResponseStart}, errors.Cause(err))
}

func Test_InputStream_ReceiveError(t *testing.T) {
	boom := errors.New("transport failure")
	receive := func(ctx context.Context) (Event, error) { return Event{}, boom }
	is := NewInputStream(context.Background(), receive)
	_, err := is.Read(make([]byte, 1))
	assert.Equal(t, boom, errors.Cause(err))
}

func Test_InputStream_CloseStopsReceives(t *testing.T) {
	receive, calls := scriptReceiver(bodyEvent("never", true))
	is := NewInputStream(context.Background(), receive)
	assert.NoError(t, is.Close())
	n, err := is.Read(make([]byte, 4))
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, errors.Cause(err))
	assert.Equal(t, 0, *calls)
}

func Test_InputStream_LargeBodyAcrossManyChunks(t *testing.T) {
	var events []Event
	var want []byte
	for i := 0; i < 40; i++ {
		chunk := make([]byte, 1000)
		for j := range chunk {
			chunk[j] = byte(i)
		}
		want = append(want, chunk...)
		events = append(events, Event{Type: EventRequest, Body: chunk, MoreBody: i < 39})
	}
	receive, calls := scriptReceiver(events...)
	is := NewInputStream(context.Background(), receive)
	b, err := is.ReadAll()
	assert.NoError(t, err)
	assert.Equal(t, want, b)
	assert.Equal(t, 40, *calls)
}
