// SPDX-License-Identifier: MIT

// Package decoder produces the ordered event stream a pipeline consumes:
// one Format event carrying the negotiated source rate, any number of Data
// events with mono samples in [-1, 1], then EndOfStream or Error.
//
// Sources run on their own goroutine and deliver into a bounded channel.
// Cancelling the context passed to Decode is the stop signal; a source must
// return promptly once it is cancelled.
package decoder

import (
	"context"
	"fmt"
)

// EventKind identifies an Event.
type EventKind int

const (
	Format EventKind = iota
	Data
	EndOfStream
	Error
)

func (k EventKind) String() string {
	switch k {
	case Format:
		return "format"
	case Data:
		return "data"
	case EndOfStream:
		return "eos"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one step of a decode session. Samples is set for Data,
// SampleRate for Format and Err for Error.
type Event struct {
	Kind       EventKind
	SampleRate float64
	Samples    []float64
	Err        error
}

// Source is a decoder collaborator for one session.
type Source interface {
	// Decode emits events into events until the stream ends, fails or ctx is
	// cancelled. It must not close events. A non-nil return is reported to
	// the consumer as a decode failure if no Error event was sent.
	Decode(ctx context.Context, events chan<- Event) error
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, events chan<- Event) error

// Decode implements Source.
func (f SourceFunc) Decode(ctx context.Context, events chan<- Event) error {
	return f(ctx, events)
}

// Send delivers ev unless ctx is cancelled first. It reports whether the
// event was delivered.
func Send(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case <-ctx.Done():
		return false
	case events <- ev:
		return true
	}
}

// Fail sends an Error event wrapping err and returns err.
func Fail(ctx context.Context, events chan<- Event, err error) error {
	Send(ctx, events, Event{Kind: Error, Err: err})
	return err
}
