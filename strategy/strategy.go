// Package strategy implements mixed strategies over a player's actions and
// the epsilon-best-response test used to validate candidate equilibria.
package strategy

import (
	"encoding/binary"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/timpalpant/lmm/game"
)

// Tolerance is added to epsilon when comparing payoffs, so that pairs sitting
// exactly on the epsilon boundary are not rejected because of rounding.
const Tolerance = 1e-9

// Mixed is a probability distribution over actions 0..n-1.
type Mixed []float64

// FromCounts builds the k-uniform strategy in which action v is played
// with probability counts[v]/k.
func FromCounts(counts []int, k int) Mixed {
	return FromCountsTo(make(Mixed, len(counts)), counts, k)
}

// FromCountsTo is FromCounts writing into dst, which must have len(counts).
func FromCountsTo(dst Mixed, counts []int, k int) Mixed {
	for v, c := range counts {
		dst[v] = float64(c) / float64(k)
	}
	return dst
}

// FromMultiset builds the k-uniform strategy playing each of the k
// actions in multiset with equal weight, over n actions.
func FromMultiset(multiset []int, k, n int) Mixed {
	counts := make([]int, n)
	for _, v := range multiset {
		counts[v]++
	}
	return FromCounts(counts, k)
}

// Pure returns the strategy that always plays action.
func Pure(action, n int) Mixed {
	s := make(Mixed, n)
	s[action] = 1
	return s
}

// Uniform returns the strategy playing all n actions with equal probability.
func Uniform(n int) Mixed {
	s := make(Mixed, n)
	for i := range s {
		s[i] = 1.0 / float64(n)
	}
	return s
}

func (s Mixed) Sum() float64 {
	return floats.Sum(s)
}

// Support returns the actions played with non-zero probability.
func (s Mixed) Support() []int {
	var result []int
	for v, p := range s {
		if p > 0 {
			result = append(result, v)
		}
	}
	return result
}

// IsValid reports whether s is non-negative and sums to 1 within tol.
func (s Mixed) IsValid(tol float64) bool {
	for _, p := range s {
		if p < 0 || math.IsNaN(p) {
			return false
		}
	}
	return math.Abs(s.Sum()-1) <= tol
}

// Sample returns the action selected by x, uniform in [0, 1).
func (s Mixed) Sample(x float64) int {
	cumulative := 0.0
	last := 0
	for v, p := range s {
		if p <= 0 {
			continue
		}
		cumulative += p
		if x < cumulative {
			return v
		}
		last = v
	}

	// Rounding left the cumulative sum just below 1.
	return last
}

// Key returns a compact fingerprint of the multiplicities behind a
// k-uniform strategy, for use as a cache key.
func Key(counts []int) string {
	buf := make([]byte, 0, binary.MaxVarintLen32*len(counts))
	for _, c := range counts {
		buf = binary.AppendUvarint(buf, uint64(c))
	}
	return string(buf)
}

// Gap returns how much the best pure deviation gains over own, given the
// expected payoff of each pure action against the opponent's strategy.
func Gap(own Mixed, payoffs []float64) float64 {
	return floats.Max(payoffs) - floats.Dot(own, payoffs)
}

// IsApproximateBestResponse reports whether own is an epsilon-best response
// to opponent: no pure action earns more than epsilon above own's expected
// payoff. payoff is indexed [own action][opponent action], so the column
// player must be checked against the transposed column matrix.
func IsApproximateBestResponse(own, opponent Mixed, payoff *game.Matrix, epsilon float64) bool {
	return Gap(own, payoff.MulVec(opponent)) <= epsilon+Tolerance
}

// ExpectedPayoff returns rowᵀ·payoff·col.
func ExpectedPayoff(row, col Mixed, payoff *game.Matrix) float64 {
	return floats.Dot(row, payoff.MulVec(col))
}
