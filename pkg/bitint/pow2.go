/*
Package bitint provides the power-of-two checks used when validating
transform sizes. A radix-2 transform backend only accepts analysis windows
whose length is an exact power of two, and the size error it reports
suggests the next usable size.

	bitint.IsPowerOfTwo(1024)  // true
	bitint.NextPowerOfTwo(1000) // 1024

NextPowerOfTwo subtracts one before measuring the bit length so that exact
powers of two map onto themselves:

	8 -> 7 (0111) -> Len=3 -> 1<<3 = 8
	9 -> 8 (1000) -> Len=4 -> 1<<4 = 16
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size. Values <= 0
// return 1.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// Log2 returns the exponent of a power of two, or -1 if n is not one.
func Log2(n int) int {
	if !IsPowerOfTwo(n) {
		return -1
	}
	return bits.TrailingZeros(uint(n))
}
