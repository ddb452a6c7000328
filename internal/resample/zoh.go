// SPDX-License-Identifier: MIT
package resample

import "fmt"

// ZOH is a zero-order-hold converter: every output sample repeats the most
// recent input sample at or before its position on the input timeline.
// It keeps only a fractional read position between calls, so chunk
// boundaries do not affect the output.
type ZOH struct {
	step  float64 // input samples advanced per output sample
	phase float64 // read position relative to the start of the next input
}

// NewZeroOrderHold returns a hold converter for sourceRate -> targetRate.
func NewZeroOrderHold(sourceRate, targetRate float64) (*ZOH, error) {
	if sourceRate <= 0 || targetRate <= 0 {
		return nil, fmt.Errorf("sample rates must be positive, got %.1f -> %.1f", sourceRate, targetRate)
	}
	return &ZOH{step: sourceRate / targetRate}, nil
}

// Convert implements Converter. endOfInput has no effect because the hold
// never buffers samples.
func (z *ZOH) Convert(in, out []float64, endOfInput bool) (consumed, produced int, err error) {
	for produced < len(out) {
		idx := int(z.phase)
		if idx >= len(in) {
			break
		}
		out[produced] = in[idx]
		produced++
		z.phase += z.step
	}

	consumed = int(z.phase)
	if consumed > len(in) {
		consumed = len(in)
	}
	z.phase -= float64(consumed)
	return consumed, produced, nil
}
