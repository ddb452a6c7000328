// SPDX-License-Identifier: MIT
/*
Package pipeline turns a decoded audio stream into a fixed-size power
spectrogram.

A Pipeline is created once with New, which allocates every buffer a session
needs: the Hann table, the resampler output buffer, the analysis window,
the transform plan and the spectrogram itself. Each Decode call then runs
one session:

	source goroutine --events--> controller
	                              Data -> resample.Adapter
	                                   -> frame.Accumulator
	                                   -> spectral.Analyzer -> spectrogram column
	                              EndOfStream / hop cap -> Completed
	                              Error                 -> Failed

The controller is an explicit state machine (Idle, Active, Completed,
Failed) consuming a bounded event queue. When the last column is written
the source is cancelled and any further events are ignored.

The spectrogram returned by Decode is owned by the pipeline and is only
valid until the next Decode or Close.
*/
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mirage/internal/decoder"
	"mirage/internal/frame"
	applog "mirage/internal/log"
	"mirage/internal/resample"
	"mirage/internal/spectral"
	"mirage/internal/spectrogram"
	"mirage/internal/transport"
	"mirage/internal/window"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrDecode wraps every failure reported by a decoder during a session.
	ErrDecode = errors.New("pipeline: decode failed")
	// ErrClosed is returned by Decode after Close.
	ErrClosed = errors.New("pipeline: closed")
)

var logger = applog.New("pipeline")

// Result describes a finished session.
type Result struct {
	Spectrogram *spectrogram.Buffer // owned by the pipeline, see Decode
	Frames      int                 // columns written this session
	Bins        int                 // rows per column
	SourceRate  float64             // rate reported by the decoder
	Elapsed     time.Duration       // wall time of the session
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithSink publishes a copy of every written column to t.
func WithSink(t transport.Transport) Option {
	return func(p *Pipeline) {
		p.sink = t
	}
}

// Pipeline is the controller for one analysis configuration. Decode calls
// are serialised; a Pipeline runs at most one session at a time.
type Pipeline struct {
	cfg      Config
	hops     int
	bins     int
	window   *window.Table
	adapter  *resample.Adapter
	acc      *frame.Accumulator
	analyzer *spectral.Analyzer
	out      *spectrogram.Buffer
	sink     transport.Transport

	mu      sync.Mutex // held for the whole of Decode
	closed  bool
	state   State
	session session
}

// New validates cfg and allocates all fixed buffers and the transform plan.
// It fails if the window size is not usable by the chosen transform backend.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if cfg.QueueSize == 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis config: %w", err)
	}

	table, err := window.NewHann(cfg.WindowSize)
	if err != nil {
		return nil, err
	}
	analyzer, err := spectral.NewAnalyzer(cfg.Transform, cfg.WindowSize)
	if err != nil {
		return nil, err
	}
	factory, err := resample.NewFactory(cfg.Resampler)
	if err != nil {
		return nil, err
	}
	adapter, err := resample.NewAdapter(factory, cfg.TargetRate, cfg.DurationSeconds)
	if err != nil {
		return nil, err
	}
	out, err := spectrogram.New(cfg.HopCount(), cfg.BinCount())
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:      cfg,
		hops:     cfg.HopCount(),
		bins:     cfg.BinCount(),
		window:   table,
		adapter:  adapter,
		acc:      frame.New(table),
		analyzer: analyzer,
		out:      out,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}

	logger.Infof("initialised (rate=%.0f Hz, seconds=%.1f, window=%d, hops=%d, bins=%d, transform=%s, resampler=%s)",
		cfg.TargetRate, cfg.DurationSeconds, cfg.WindowSize, p.hops, p.bins, cfg.Transform, cfg.Resampler)
	return p, nil
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() Config { return p.cfg }

// HopCount returns the spectrogram column capacity.
func (p *Pipeline) HopCount() int { return p.hops }

// BinCount returns the number of frequency bins per column.
func (p *Pipeline) BinCount() int { return p.bins }

// State returns the controller state left by the most recent session.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Decode runs one session over src and blocks until it completes or fails.
// Reaching the hop capacity is a successful completion even if the source
// had more audio. On failure the returned Result has Frames == 0 and the
// spectrogram contents are undefined.
func (p *Pipeline) Decode(src decoder.Source) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}

	start := time.Now()
	p.begin()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan decoder.Event, p.cfg.QueueSize)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(events)
		return src.Decode(gctx, events)
	})

	for p.state == StateActive {
		ev, ok := <-events
		if !ok {
			// The source returned without a terminal event.
			if err := g.Wait(); err != nil {
				p.fail(err)
			} else {
				p.complete()
			}
			break
		}
		p.handle(ev)
	}

	// Stop the source and let it unwind; anything still queued is dropped.
	cancel()
	for range events {
	}
	_ = g.Wait()

	res := &Result{
		Spectrogram: p.out,
		Frames:      p.session.hop,
		Bins:        p.bins,
		SourceRate:  p.session.sourceRate,
		Elapsed:     time.Since(start),
	}

	if p.state == StateFailed {
		logger.Errorf("session failed after %s: %v", res.Elapsed, p.session.err)
		return res, fmt.Errorf("%w: %w", ErrDecode, p.session.err)
	}

	logger.Infof("session complete (frames=%d of %d, bins=%d, input=%d samples, elapsed=%s)",
		res.Frames, p.hops, res.Bins, p.adapter.InputSamples(), res.Elapsed)
	return res, nil
}

// Close releases the pipeline. Decode fails with ErrClosed afterwards and
// previously returned spectrograms must no longer be used.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.out = nil
	p.analyzer = nil
	p.acc = nil
	p.adapter = nil
	logger.Debugf("closed")
	return nil
}
