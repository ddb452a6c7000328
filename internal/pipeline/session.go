// SPDX-License-Identifier: MIT
package pipeline

import (
	"errors"
	"fmt"

	"mirage/internal/decoder"
	"mirage/internal/spectrogram"
)

// State is the controller state of a Pipeline.
type State int

const (
	StateIdle State = iota
	StateActive
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// session is the per-Decode state. The accumulator fill and the resampler's
// input count are reset alongside it in begin.
type session struct {
	hop        int     // next column to write
	sourceRate float64 // from the Format event, 0 until then
	forceStop  bool    // hop capacity reached
	err        error   // failure cause when the state is StateFailed
}

var errDataBeforeFormat = errors.New("data received before the source reported its sample rate")

// begin moves the controller from any state to Active with fresh counters.
// The spectrogram is not cleared.
func (p *Pipeline) begin() {
	p.session = session{}
	p.acc.Reset()
	p.state = StateActive
}

// handle applies one decoder event. It is the only path that mutates the
// session or the spectrogram. Events arriving once the session is no longer
// active, or after the hop cap, are ignored.
func (p *Pipeline) handle(ev decoder.Event) {
	if p.state != StateActive || p.session.forceStop {
		return
	}

	switch ev.Kind {
	case decoder.Format:
		if err := p.adapter.Begin(ev.SampleRate); err != nil {
			p.fail(err)
			return
		}
		p.session.sourceRate = ev.SampleRate
		logger.Debugf("source rate %.0f Hz, resampling ratio %.6f", ev.SampleRate, p.adapter.Ratio())

	case decoder.Data:
		if p.session.sourceRate == 0 {
			p.fail(errDataBeforeFormat)
			return
		}
		p.adapter.Feed(ev.Samples, p.onConverted)
		if p.session.forceStop {
			logger.Debugf("hop capacity %d reached, stopping source", p.hops)
			p.complete()
		}

	case decoder.EndOfStream:
		logger.Debugf("end of stream after %d frames", p.session.hop)
		p.complete()

	case decoder.Error:
		err := ev.Err
		if err == nil {
			err = errors.New("unspecified decoder error")
		}
		p.fail(err)

	default:
		logger.Warnf("ignoring unknown event %v", ev.Kind)
	}
}

// onConverted receives resampled samples from the adapter.
func (p *Pipeline) onConverted(converted []float64) bool {
	return p.acc.Push(converted, p.onWindow)
}

// onWindow analyses a completed window into the next column.
func (p *Pipeline) onWindow(win []float64) bool {
	if p.session.hop >= p.hops {
		p.session.forceStop = true
		return false
	}
	if err := p.analyzer.Analyze(win, p.session.hop, p.out); err != nil {
		// Analyze only fails on a size or index mismatch, which New rules out.
		panic(fmt.Sprintf("pipeline: column %d: %v", p.session.hop, err))
	}
	if p.sink != nil {
		p.publish(p.session.hop)
	}

	p.session.hop++
	if p.session.hop == p.hops {
		p.session.forceStop = true
		return false
	}
	return true
}

func (p *Pipeline) publish(hop int) {
	power := make([]float64, p.bins)
	copy(power, p.analyzer.Power())
	if err := p.sink.Send(spectrogram.Column{Hop: hop, Power: power}); err != nil {
		logger.Warnf("sink rejected column %d: %v", hop, err)
	}
}

func (p *Pipeline) complete() {
	p.state = StateCompleted
}

// fail discards the session's columns and records the cause.
func (p *Pipeline) fail(err error) {
	p.session.hop = 0
	p.session.err = err
	p.state = StateFailed
}
