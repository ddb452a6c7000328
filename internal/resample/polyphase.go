// SPDX-License-Identifier: MIT
package resample

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampler"
)

// engine is the slice-in/slice-out surface of the polyphase resampler.
type engine interface {
	Process(input []float64) ([]float64, error)
	Flush() ([]float64, error)
}

// Polyphase adapts the go-audio-resampler engine to the Converter contract.
// The engine always consumes a whole chunk and returns however many samples
// it has ready, so output that does not fit in the caller's buffer is held
// in pending and handed out before any further input is accepted.
type Polyphase struct {
	engine  engine
	pending []float64
	head    int // first undelivered sample in pending
	flushed bool
}

// NewPolyphase creates a polyphase converter using a named quality preset.
func NewPolyphase(sourceRate, targetRate float64, quality string) (*Polyphase, error) {
	if sourceRate <= 0 || targetRate <= 0 {
		return nil, fmt.Errorf("sample rates must be positive, got %.1f -> %.1f", sourceRate, targetRate)
	}

	var (
		e   engine
		err error
	)
	switch quality {
	case Quick:
		e, err = resampling.NewEngine(sourceRate, targetRate, resampling.QualityQuick)
	case Low:
		e, err = resampling.NewEngine(sourceRate, targetRate, resampling.QualityLow)
	case Medium:
		e, err = resampling.NewEngine(sourceRate, targetRate, resampling.QualityMedium)
	case High:
		e, err = resampling.NewEngine(sourceRate, targetRate, resampling.QualityHigh)
	case VeryHigh:
		e, err = resampling.NewEngine(sourceRate, targetRate, resampling.QualityVeryHigh)
	default:
		return nil, fmt.Errorf("unknown polyphase quality %q", quality)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s resampler (%.1f -> %.1f Hz): %w", quality, sourceRate, targetRate, err)
	}

	return &Polyphase{engine: e, pending: make([]float64, 0, 8192)}, nil
}

// Convert implements Converter.
func (p *Polyphase) Convert(in, out []float64, endOfInput bool) (consumed, produced int, err error) {
	if p.head == len(p.pending) && !p.flushed {
		p.pending = p.pending[:0]
		p.head = 0

		if len(in) > 0 {
			var res []float64
			res, err = p.engine.Process(in)
			consumed = len(in)
			p.pending = append(p.pending, res...)
		}
		if err == nil && endOfInput {
			var tail []float64
			tail, err = p.engine.Flush()
			p.pending = append(p.pending, tail...)
			p.flushed = true
		}
	} else if p.flushed {
		// Input after the flush is outside the analysed span.
		consumed = len(in)
	}

	produced = copy(out, p.pending[p.head:])
	p.head += produced
	return consumed, produced, err
}
