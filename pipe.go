package seb

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ErrPipeOverflow is returned by Submit when the pipe's event window is
// full. A transport that respects the window never sees it.
type ErrPipeOverflow struct{}

func (ErrPipeOverflow) Error() string { return "event pipe overflow" }

// ErrPipeClosed is returned when using a closed EventPipe.
type ErrPipeClosed struct{}

func (ErrPipeClosed) Error() string { return "event pipe closed" }

// EventPipe is a bounded rendezvous carrying events from a transport
// goroutine to a blocking receiver. Submit never blocks, so a slow
// handler can never stall the transport's event loop; Receive blocks
// only the calling goroutine.
type EventPipe struct {
	ch     chan Event
	abort  chan struct{}
	mu     sync.Mutex // guards closed
	closed bool
}

// NewEventPipe returns an EventPipe buffering up to window events.
// A window below one is raised to one.
func NewEventPipe(window int) *EventPipe {
	if window < 1 {
		window = 1
	}
	return &EventPipe{
		ch:    make(chan Event, window),
		abort: make(chan struct{}),
	}
}

// Submit hands an event to the pipe without blocking. It fails rather
// than drops when the window is full.
func (p *EventPipe) Submit(ev Event) (err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.WithStack(ErrPipeClosed{})
	}
	select {
	case p.ch <- ev:
	default:
		err = errors.WithStack(ErrPipeOverflow{})
	}
	return
}

// Receive blocks until an event is available, the context is done or the
// pipe is closed. Events already submitted are delivered in order before
// a close is reported. Receive is a ReceiveFunc.
func (p *EventPipe) Receive(ctx context.Context) (ev Event, err error) {
	select {
	case ev = <-p.ch:
		return
	default:
	}
	select {
	case ev = <-p.ch:
	case <-p.abort:
		select {
		case ev = <-p.ch:
		default:
			err = errors.WithStack(ErrPipeClosed{})
		}
	case <-ctx.Done():
		err = errors.WithStack(ctx.Err())
	}
	return
}

// Close unblocks all blocked receivers. Submitting after Close fails.
// Closing twice is an error.
func (p *EventPipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.WithStack(ErrPipeClosed{})
	}
	p.closed = true
	close(p.abort)
	return nil
}
