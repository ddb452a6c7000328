// SPDX-License-Identifier: MIT
package decoder

import (
	"context"
	"fmt"

	"mirage/pkg/utils"
)

// DefaultChunkFrames is the number of mono frames per Data event.
const DefaultChunkFrames = 4096

// PCMSource replays an in-memory mono signal in fixed-size chunks.
type PCMSource struct {
	samples    []float64
	sampleRate float64
	chunk      int
}

// NewPCMSource returns a source for samples at sampleRate. chunk <= 0 uses
// DefaultChunkFrames.
func NewPCMSource(samples []float64, sampleRate float64, chunk int) *PCMSource {
	if chunk <= 0 {
		chunk = DefaultChunkFrames
	}
	return &PCMSource{samples: samples, sampleRate: sampleRate, chunk: chunk}
}

// Decode implements Source. Each Data event carries its own copy of the
// chunk.
func (s *PCMSource) Decode(ctx context.Context, events chan<- Event) error {
	if s.sampleRate <= 0 {
		return Fail(ctx, events, fmt.Errorf("invalid sample rate %.1f", s.sampleRate))
	}
	if !Send(ctx, events, Event{Kind: Format, SampleRate: s.sampleRate}) {
		return nil
	}
	for start := 0; start < len(s.samples); start += s.chunk {
		end := min(start+s.chunk, len(s.samples))
		buf := make([]float64, end-start)
		copy(buf, s.samples[start:end])
		if !Send(ctx, events, Event{Kind: Data, Samples: buf}) {
			return nil
		}
	}
	Send(ctx, events, Event{Kind: EndOfStream})
	return nil
}

// Tone returns seconds of a unit-amplitude sine at freq Hz.
func Tone(freq, sampleRate, seconds float64) []float64 {
	return utils.GenerateSineWave(int(sampleRate*seconds), sampleRate, freq)
}

// Silence returns n zero samples.
func Silence(n int) []float64 {
	return make([]float64, n)
}
