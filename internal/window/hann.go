// SPDX-License-Identifier: MIT
package window

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/window"
)

// Table holds precomputed Hann coefficients for a fixed window length.
// It is immutable after construction and safe to share.
type Table struct {
	coeffs []float64
}

// NewHann builds w[i] = 0.5*(1-cos(2πi/(size-1))). The table is symmetric
// with w[0] = w[size-1] = 0.
func NewHann(size int) (*Table, error) {
	if size < 2 {
		return nil, fmt.Errorf("window size must be at least 2, got %d", size)
	}
	coeffs := make([]float64, size)
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	window.Hann(coeffs)
	return &Table{coeffs: coeffs}, nil
}

// Len returns the number of coefficients.
func (t *Table) Len() int {
	return len(t.coeffs)
}

// Coefficients returns a copy of the table.
func (t *Table) Coefficients() []float64 {
	out := make([]float64, len(t.coeffs))
	copy(out, t.coeffs)
	return out
}

// At returns coefficient i.
func (t *Table) At(i int) float64 {
	return t.coeffs[i]
}

// Apply multiplies the first Len() samples of buf by w[i]*scale in place.
// buf must hold at least Len() samples.
func (t *Table) Apply(buf []float64, scale float64) {
	buf = buf[:len(t.coeffs)]
	for i, w := range t.coeffs {
		buf[i] *= w * scale
	}
}
