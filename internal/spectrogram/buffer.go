// SPDX-License-Identifier: MIT

// Package spectrogram holds the fixed-size power matrix a pipeline writes
// into. Rows are frequency bins, columns are hops, stored row-major in one
// flat slice (bin*hops + hop).
//
// A Buffer is allocated once and overwritten in place by every session. It
// is never cleared: after a session that filled fewer than Hops() columns,
// the remaining columns still hold whatever an earlier session wrote.
package spectrogram

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when a write addresses a column or bin outside
// the matrix.
var ErrOutOfBounds = errors.New("spectrogram: index out of bounds")

// Buffer is a hops x bins power matrix.
type Buffer struct {
	data []float64
	hops int
	bins int
}

// Column is one hop's power spectrum, as published to sinks.
type Column struct {
	Hop   int       `json:"hop"`
	Power []float64 `json:"power"`
}

// New allocates a hops x bins matrix.
func New(hops, bins int) (*Buffer, error) {
	if hops <= 0 || bins <= 0 {
		return nil, fmt.Errorf("spectrogram dimensions must be positive, got %d hops x %d bins", hops, bins)
	}
	return &Buffer{
		data: make([]float64, hops*bins),
		hops: hops,
		bins: bins,
	}, nil
}

// Hops returns the column capacity.
func (b *Buffer) Hops() int { return b.hops }

// Bins returns the number of rows.
func (b *Buffer) Bins() int { return b.bins }

// Data returns the backing slice. It is owned by the buffer and is only
// valid until the next session overwrites it.
func (b *Buffer) Data() []float64 { return b.data }

// At returns the power at (bin, hop). It panics on out-of-range indices.
func (b *Buffer) At(bin, hop int) float64 {
	return b.data[bin*b.hops+hop]
}

// WriteColumn stores power as column hop. len(power) must equal Bins().
func (b *Buffer) WriteColumn(hop int, power []float64) error {
	if hop < 0 || hop >= b.hops {
		return fmt.Errorf("%w: hop %d not in [0, %d)", ErrOutOfBounds, hop, b.hops)
	}
	if len(power) != b.bins {
		return fmt.Errorf("%w: column has %d bins, want %d", ErrOutOfBounds, len(power), b.bins)
	}
	for bin, v := range power {
		b.data[bin*b.hops+hop] = v
	}
	return nil
}

// ReadColumn copies column hop into dst, which must hold Bins() values.
func (b *Buffer) ReadColumn(hop int, dst []float64) error {
	if hop < 0 || hop >= b.hops {
		return fmt.Errorf("%w: hop %d not in [0, %d)", ErrOutOfBounds, hop, b.hops)
	}
	if len(dst) != b.bins {
		return fmt.Errorf("%w: destination has %d bins, want %d", ErrOutOfBounds, len(dst), b.bins)
	}
	for bin := range dst {
		dst[bin] = b.data[bin*b.hops+hop]
	}
	return nil
}
