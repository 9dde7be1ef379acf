package bloom

import (
	"fmt"
	"math"
)

// FalsePositiveRate returns the expected false positive probability
// (1 - e^(-kn/m))^k of a filter with m bits and k hashes holding n keys.
func FalsePositiveRate(m, k, n int) float64 {
	if m < 1 || k < 1 || n < 1 {
		return 0
	}
	return math.Pow(1-math.Exp(-float64(k)*float64(n)/float64(m)), float64(k))
}

// EstimateParameters returns the size m and hash count k that keep the false
// positive rate of a filter holding n keys at about p:
//
//	m = -n ln(p) / (ln 2)^2
//	k = (m / n) ln 2
//
// n must be at least 1, p must lie in (0, 1) and the resulting m must fit in
// an int; otherwise the error wraps ErrInvalidParameter.
func EstimateParameters(n int, p float64) (m int, k int, err error) {
	if n < 1 {
		return 0, 0, fmt.Errorf("%w: expected key count %d", ErrInvalidParameter, n)
	}
	if !(p > 0 && p < 1) {
		return 0, 0, fmt.Errorf("%w: false positive rate %v is outside (0, 1)", ErrInvalidParameter, p)
	}
	mf := math.Ceil(-(float64(n) * math.Log(p)) / (math.Ln2 * math.Ln2))
	if mf >= math.MaxInt {
		return 0, 0, fmt.Errorf("%w: %d keys at rate %v need %.0f bits", ErrInvalidParameter, n, p, mf)
	}
	kf := math.Ceil((mf / float64(n)) * math.Ln2)
	m = int(mf)
	k = max(int(kf), 1)
	return m, k, nil
}
