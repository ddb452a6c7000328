// SPDX-License-Identifier: MIT
package resample

import (
	"fmt"
	"strings"
)

// Converter is a streaming mono sample-rate converter. Convert reads from in
// and writes at most len(out) samples to out, returning how many input
// samples it consumed and how many output samples it produced. A converter
// may consume only part of in; callers loop until all input is consumed.
// endOfInput asks the converter to flush any internally buffered samples.
type Converter interface {
	Convert(in, out []float64, endOfInput bool) (consumed, produced int, err error)
}

// Factory builds a converter for one session at the given ratio
// (targetRate / sourceRate).
type Factory func(sourceRate, targetRate float64) (Converter, error)

// Backend names accepted by NewFactory.
const (
	ZeroOrderHold = "zoh"
	Quick         = "quick"
	Low           = "low"
	Medium        = "medium"
	High          = "high"
	VeryHigh      = "veryhigh"
)

// Backends lists every accepted backend name.
var Backends = []string{ZeroOrderHold, Quick, Low, Medium, High, VeryHigh}

// NewFactory resolves a backend name to a converter factory.
func NewFactory(name string) (Factory, error) {
	switch strings.ToLower(name) {
	case ZeroOrderHold, "":
		return func(sourceRate, targetRate float64) (Converter, error) {
			return NewZeroOrderHold(sourceRate, targetRate)
		}, nil
	case Quick, Low, Medium, High, VeryHigh:
		quality := strings.ToLower(name)
		return func(sourceRate, targetRate float64) (Converter, error) {
			return NewPolyphase(sourceRate, targetRate, quality)
		}, nil
	default:
		return nil, fmt.Errorf("unknown resampler backend %q (want one of %s)",
			name, strings.Join(Backends, ", "))
	}
}
