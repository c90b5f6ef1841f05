package lmm

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidParameter is returned for epsilon <= 0, n <= 1 or max_k <= 0.
	ErrInvalidParameter = errors.New("lmm: invalid parameter")
	// ErrSearchExhausted matches any *SearchExhaustedError.
	ErrSearchExhausted = errors.New("lmm: search exhausted")
)

// SearchExhaustedError is returned when every candidate pair of k-uniform
// strategies was checked and none is an epsilon-equilibrium.
//
// If Clamped is false, k met the theoretical bound and an equilibrium should
// have existed: this points at numerical trouble rather than at the game.
type SearchExhaustedError struct {
	K         int
	Clamped   bool
	Epsilon   float64
	Evaluated uint64
}

func (e *SearchExhaustedError) Error() string {
	reason := "no equilibrium exists with this support size"
	if !e.Clamped {
		reason = "k was not clamped, so this should not happen"
	}
	return fmt.Sprintf("%v: no %v-approximate equilibrium among %d candidate pairs with k=%d (%s)",
		ErrSearchExhausted, e.Epsilon, e.Evaluated, e.K, reason)
}

func (e *SearchExhaustedError) Is(target error) bool {
	return target == ErrSearchExhausted
}
