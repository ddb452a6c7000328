// SPDX-License-Identifier: MIT
package spectral

import (
	"fmt"

	"mirage/internal/spectrogram"
)

// Analyzer turns completed analysis windows into spectrogram columns. The
// transform plan and scratch buffers are created once and reused for every
// window.
type Analyzer struct {
	windowSize int
	transform  Transform
	coeffs     []complex128 // windowSize+1 half-spectrum coefficients
	power      []float64    // windowSize/2+1 bins
}

// NewAnalyzer prepares a transform of length 2*windowSize (window plus zero
// padding) on the named backend.
func NewAnalyzer(backend string, windowSize int) (*Analyzer, error) {
	if windowSize < 2 || windowSize%2 != 0 {
		return nil, fmt.Errorf("%w: window size must be even and >= 2, got %d", ErrUnsupportedSize, windowSize)
	}
	tr, err := NewTransform(backend, 2*windowSize)
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		windowSize: windowSize,
		transform:  tr,
		coeffs:     make([]complex128, windowSize+1),
		power:      make([]float64, windowSize/2+1),
	}, nil
}

// Bins returns the number of power values per column.
func (a *Analyzer) Bins() int {
	return len(a.power)
}

// Power returns the most recent column. It is overwritten by the next
// Analyze call.
func (a *Analyzer) Power() []float64 {
	return a.power
}

// Analyze transforms win (2*windowSize samples, already windowed and padded)
// and writes the power spectrum as column hop of out.
func (a *Analyzer) Analyze(win []float64, hop int, out *spectrogram.Buffer) error {
	if len(win) != a.transform.Len() {
		return fmt.Errorf("analysis window has %d samples, want %d", len(win), a.transform.Len())
	}
	a.transform.Coefficients(a.coeffs, win)
	CompactPower(a.power, a.coeffs)
	return out.WriteColumn(hop, a.power)
}
