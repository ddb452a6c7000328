// SPDX-License-Identifier: MIT
package spectral

import (
	"errors"
	"fmt"
	"strings"

	"mirage/pkg/bitint"

	dspfft "github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrUnsupportedSize is returned when a backend cannot transform the
// requested window length.
var ErrUnsupportedSize = errors.New("spectral: unsupported transform size")

// Transform computes the spectrum of a real input of fixed length. The
// result holds Len()/2+1 coefficients: DC up to and including Nyquist.
type Transform interface {
	// Len returns the transform length.
	Len() int
	// Coefficients writes the half spectrum of src (length Len()) into dst
	// (length Len()/2+1) and returns dst.
	Coefficients(dst []complex128, src []float64) []complex128
}

// Backend names accepted by NewTransform.
const (
	Gonum = "gonum"
	GoDSP = "godsp"
)

// Backends lists every accepted backend name.
var Backends = []string{Gonum, GoDSP}

// NewTransform builds a transform of length n using the named backend.
func NewTransform(backend string, n int) (Transform, error) {
	switch strings.ToLower(backend) {
	case Gonum, "":
		return newGonumTransform(n)
	case GoDSP:
		return newGoDSPTransform(n)
	default:
		return nil, fmt.Errorf("unknown transform backend %q (want %s or %s)", backend, Gonum, GoDSP)
	}
}

// gonumTransform reuses one fourier.FFT plan for every call.
type gonumTransform struct {
	plan *fourier.FFT
	n    int
}

func newGonumTransform(n int) (*gonumTransform, error) {
	if n < 2 || n%2 != 0 {
		return nil, fmt.Errorf("%w: gonum backend needs an even length >= 2, got %d", ErrUnsupportedSize, n)
	}
	return &gonumTransform{plan: fourier.NewFFT(n), n: n}, nil
}

func (g *gonumTransform) Len() int { return g.n }

func (g *gonumTransform) Coefficients(dst []complex128, src []float64) []complex128 {
	return g.plan.Coefficients(dst, src)
}

// goDSPTransform wraps go-dsp's FFTReal, which returns the full
// conjugate-symmetric spectrum; only the lower half is kept.
type goDSPTransform struct {
	n int
}

func newGoDSPTransform(n int) (*goDSPTransform, error) {
	if !bitint.IsPowerOfTwo(n) || n < 2 {
		return nil, fmt.Errorf("%w: godsp backend needs a power-of-two length, got %d (try %d)",
			ErrUnsupportedSize, n, bitint.NextPowerOfTwo(n))
	}
	return &goDSPTransform{n: n}, nil
}

func (g *goDSPTransform) Len() int { return g.n }

func (g *goDSPTransform) Coefficients(dst []complex128, src []float64) []complex128 {
	full := dspfft.FFTReal(src)
	copy(dst, full[:g.n/2+1])
	return dst
}
