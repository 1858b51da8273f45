package abtest

import "math"

// Bucket maps an arbitrary string to a stable float in [0, 1). It is a
// pure function: the same input yields the same output within and
// across runs, which is what makes assignment deterministic.
//
// The hash is a 32-bit rolling hash over the UTF-8 bytes, normalized by
// 2^31 so the result never reaches 1.
func Bucket(s string) float64 {
	var h int32
	for i := 0; i < len(s); i++ {
		h = h*31 + int32(s[i])
	}
	if h == math.MinInt32 {
		// -MinInt32 overflows; fold it to zero.
		h = 0
	}
	if h < 0 {
		h = -h
	}
	return float64(h) / float64(1<<31)
}
