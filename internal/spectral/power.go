// SPDX-License-Identifier: MIT
package spectral

// CompactPower reduces the half spectrum of a 2N-point transform over a
// window of N samples followed by N zeros to N/2+1 power values:
//
//	power[k] = |X[2k]|^2,  k = 0..N/2
//
// Zero padding to 2N interleaves interpolated bins between the N-point
// bins; taking every second coefficient recovers the N-point spectrum. X[0]
// and X[N] are purely real for real input, so only their real parts are
// used.
//
// coeffs must hold N+1 values and dst N/2+1.
func CompactPower(dst []float64, coeffs []complex128) {
	last := len(dst) - 1
	dc := real(coeffs[0])
	dst[0] = dc * dc
	for k := 1; k < last; k++ {
		c := coeffs[2*k]
		re, im := real(c), imag(c)
		dst[k] = re*re + im*im
	}
	ny := real(coeffs[2*last])
	dst[last] = ny * ny
}
