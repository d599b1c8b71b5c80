package agent

import (
	"context"

	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// EventSink receives the five events a turn can emit. Implementations must
// be safe to call from multiple goroutines and must not block the loop
// indefinitely — prefer ChanSink, which drops rather than stalls.
type EventSink interface {
	Emit(ctx context.Context, e models.AgentEvent)
}

// ChanSink delivers events to a single-producer channel. The loop is the
// only producer per turn. Emit never blocks past the channel's buffer: an
// event sent to a full, closed or abandoned channel is dropped, and the
// loop itself keeps running to the end of the turn — dropping the receiver
// does not stop it.
type ChanSink struct {
	ch chan<- models.AgentEvent
}

// NewChanSink wraps ch. With an unbuffered channel an event is delivered
// only if the receiver is already waiting for it; otherwise it is dropped.
func NewChanSink(ch chan<- models.AgentEvent) *ChanSink {
	return &ChanSink{ch: ch}
}

// Emit sends e, dropping it rather than blocking if ch is full, closed, or
// ctx is already done.
func (s *ChanSink) Emit(ctx context.Context, e models.AgentEvent) {
	defer func() { recover() }() // send on closed channel
	select {
	case s.ch <- e:
	case <-ctx.Done():
	default:
	}
}

// MultiSink fans one event stream out to several sinks, e.g. a ChanSink for
// the caller plus a logging sink for observability.
type MultiSink struct {
	sinks []EventSink
}

// NewMultiSink returns a sink that forwards to every non-nil sink given.
func NewMultiSink(sinks ...EventSink) *MultiSink {
	filtered := make([]EventSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	return &MultiSink{sinks: filtered}
}

func (s *MultiSink) Emit(ctx context.Context, e models.AgentEvent) {
	for _, sink := range s.sinks {
		sink.Emit(ctx, e)
	}
}

// CallbackSink wraps a plain function as an EventSink, useful for tests.
type CallbackSink struct {
	fn func(ctx context.Context, e models.AgentEvent)
}

func NewCallbackSink(fn func(ctx context.Context, e models.AgentEvent)) *CallbackSink {
	return &CallbackSink{fn: fn}
}

func (s *CallbackSink) Emit(ctx context.Context, e models.AgentEvent) {
	if s.fn != nil {
		s.fn(ctx, e)
	}
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Emit(context.Context, models.AgentEvent) {}
