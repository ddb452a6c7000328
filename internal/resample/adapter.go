// SPDX-License-Identifier: MIT
package resample

import (
	"fmt"

	applog "mirage/internal/log"
)

// OutputBufferLength is the capacity of the adapter's converted-sample
// buffer. Each Convert call produces at most this many samples.
const OutputBufferLength = 4096

var logger = applog.New("resample")

// Adapter drives a Converter chunk by chunk. It owns a fixed output buffer,
// tracks how much source audio it has been fed and asserts end-of-input
// once the analysed duration has been delivered.
type Adapter struct {
	factory         Factory
	targetRate      float64
	durationSeconds float64

	out        []float64
	converter  Converter
	sourceRate float64

	inputSamples int64 // source samples delivered this session
	endOfInput   bool
}

// NewAdapter allocates the output buffer once. factory is invoked at the
// start of every session in Begin.
func NewAdapter(factory Factory, targetRate, durationSeconds float64) (*Adapter, error) {
	if factory == nil {
		return nil, fmt.Errorf("resampler factory cannot be nil")
	}
	if targetRate <= 0 {
		return nil, fmt.Errorf("target rate must be positive, got %.1f", targetRate)
	}
	if durationSeconds <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %.1f", durationSeconds)
	}
	return &Adapter{
		factory:         factory,
		targetRate:      targetRate,
		durationSeconds: durationSeconds,
		out:             make([]float64, OutputBufferLength),
	}, nil
}

// Begin resets session counters and builds a converter for sourceRate.
func (a *Adapter) Begin(sourceRate float64) error {
	conv, err := a.factory(sourceRate, a.targetRate)
	if err != nil {
		return err
	}
	a.converter = conv
	a.sourceRate = sourceRate
	a.inputSamples = 0
	a.endOfInput = false
	logger.Debugf("source rate %.1f Hz, ratio %.6f", sourceRate, a.Ratio())
	return nil
}

// Ratio returns targetRate / sourceRate for the current session.
func (a *Adapter) Ratio() float64 {
	if a.sourceRate == 0 {
		return 0
	}
	return a.targetRate / a.sourceRate
}

// InputSamples returns the number of source samples fed this session.
func (a *Adapter) InputSamples() int64 {
	return a.inputSamples
}

// EndOfInput reports whether end-of-input has been asserted.
func (a *Adapter) EndOfInput() bool {
	return a.endOfInput
}

// Feed converts chunk and passes each run of converted samples to emit. The
// slice given to emit aliases the adapter's buffer and is only valid during
// the call. emit returns false to abandon the rest of the chunk.
//
// Conversion errors are logged and never returned: whatever the failing
// call produced is still emitted.
func (a *Adapter) Feed(chunk []float64, emit func(converted []float64) bool) {
	if a.converter == nil {
		panic("resample: Feed called before Begin")
	}
	if len(chunk) == 0 {
		return
	}

	a.inputSamples += int64(len(chunk))
	if float64(a.inputSamples) >= a.durationSeconds*a.sourceRate {
		a.endOfInput = true
	}

	in := chunk
	for {
		consumed, produced, err := a.converter.Convert(in, a.out, a.endOfInput)

		// A misbehaving converter must not push reads or writes past the
		// buffers it was handed.
		consumed = clamp(consumed, len(in))
		produced = clamp(produced, len(a.out))

		if err != nil {
			logger.Warnf("conversion error (consumed=%d, produced=%d): %v", consumed, produced, err)
		}

		if produced > 0 && !emit(a.out[:produced]) {
			return
		}

		in = in[consumed:]
		if consumed == 0 && produced == 0 {
			// No progress: either the converter is drained or it failed.
			return
		}
		if len(in) == 0 && produced < len(a.out) {
			return
		}
	}
}

func clamp(n, limit int) int {
	if n < 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}
