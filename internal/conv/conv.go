// Package conv provides checked integer narrowing for the engine.
//
// The conversions panic on overflow: an out-of-range value here means a
// pattern exceeded internal limits that compilation should have enforced,
// which is a programming error rather than user input to report.
package conv

import "math"

// IntToUint32 converts an int to uint32, panicking if the value is
// negative or does not fit.
func IntToUint32(n int) uint32 {
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("conv: int value out of uint32 range")
	}
	return uint32(n)
}
