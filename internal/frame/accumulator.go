// SPDX-License-Identifier: MIT
package frame

import (
	"fmt"

	"mirage/internal/window"
)

// Scale is applied together with the window coefficients. It lifts samples
// normalised to [-1, 1] back into 16-bit PCM range before the transform.
const Scale = 32768.0

// Accumulator collects converted samples into fixed-length, non-overlapping
// analysis windows. The working buffer is twice the window length; the upper
// half is zero padding consumed by the transform.
type Accumulator struct {
	table *window.Table
	size  int
	buf   []float64 // 2*size: samples then padding
	fill  int       // samples accumulated towards the next window
}

// New allocates the working buffer for the table's window length.
func New(table *window.Table) *Accumulator {
	size := table.Len()
	return &Accumulator{
		table: table,
		size:  size,
		buf:   make([]float64, 2*size),
	}
}

// Size returns the window length.
func (a *Accumulator) Size() int {
	return a.size
}

// Fill returns the number of samples waiting for the next window.
func (a *Accumulator) Fill() int {
	return a.fill
}

// Reset discards any partially accumulated window.
func (a *Accumulator) Reset() {
	a.fill = 0
}

// Push appends samples. Every time a window completes it is zero-padded,
// multiplied by the window coefficients and Scale, and passed to onWindow.
// The slice passed to onWindow has length 2*Size() and is overwritten by the
// next window. If onWindow returns false, Push returns immediately and the
// unconsumed samples are dropped; Push reports whether it ran to completion.
func (a *Accumulator) Push(samples []float64, onWindow func(win []float64) bool) bool {
	n := len(samples)
	if a.fill+n < a.size {
		copy(a.buf[a.fill:], samples)
		a.fill += n
		return true
	}

	pos := 0
	for n-pos >= a.size-a.fill {
		need := a.size - a.fill
		if need <= 0 {
			panic(fmt.Sprintf("frame: accumulator fill %d exceeds window size %d", a.fill, a.size))
		}

		copy(a.buf[a.fill:a.size], samples[pos:pos+need])
		clear(a.buf[a.size:])
		a.table.Apply(a.buf, Scale)

		a.fill = 0
		pos += need

		if !onWindow(a.buf) {
			return false
		}
	}

	if rem := n - pos; rem > 0 {
		copy(a.buf, samples[pos:])
		a.fill = rem
	}
	return true
}
