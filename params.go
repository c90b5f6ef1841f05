package lmm

import (
	"math"

	"github.com/pkg/errors"
)

// ComputeK returns the support size k = ceil(12·ln(n) / epsilon²) for which
// a k-uniform epsilon-approximate equilibrium is guaranteed to exist in any
// game with n actions per player and payoffs in [0, 1].
//
// maxK == 0 leaves k uncapped. Otherwise k is reduced to maxK if it is
// larger, and clamped is true: the existence guarantee no longer holds.
func ComputeK(n int, epsilon float64, maxK int) (k int, clamped bool, err error) {
	if n <= 1 {
		return 0, false, errors.Wrapf(ErrInvalidParameter, "n=%d must be at least 2", n)
	}
	if !(epsilon > 0) || math.IsInf(epsilon, 1) {
		return 0, false, errors.Wrapf(ErrInvalidParameter, "epsilon=%v must be positive", epsilon)
	}
	if maxK < 0 {
		return 0, false, errors.Wrapf(ErrInvalidParameter, "max_k=%d must be positive", maxK)
	}

	kf := theoreticalK(n, epsilon)
	if maxK > 0 && kf > float64(maxK) {
		return maxK, true, nil
	}
	if kf >= math.MaxInt32 {
		return 0, false, errors.Wrapf(ErrInvalidParameter,
			"support size %v for epsilon=%v is too large to search", kf, epsilon)
	}

	return int(kf), false, nil
}

func theoreticalK(n int, epsilon float64) float64 {
	return math.Ceil(12 * math.Log(float64(n)) / (epsilon * epsilon))
}
