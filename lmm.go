// Package lmm computes epsilon-approximate Nash equilibria of two-player
// games by the bounded-support search of Lipton, Markakis and Mehta.
//
// For any game with n actions per player and payoffs in [0, 1], there is
// an epsilon-approximate equilibrium in which both players mix uniformly
// over a multiset of k = ceil(12·ln(n)/epsilon²) actions. Solve normalizes
// the payoffs, derives k, and checks every pair of such k-uniform strategies
// in a fixed order, returning the first equilibrium it finds.
//
// The search visits up to n^(2k) pairs, so in practice k is often capped
// with WithMaxK, at the cost of the existence guarantee.
package lmm

import (
	"context"
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/timpalpant/lmm/game"
	"github.com/timpalpant/lmm/multiset"
	"github.com/timpalpant/lmm/strategy"
)

// Equilibrium is an epsilon-approximate equilibrium of the normalized game.
type Equilibrium struct {
	Row strategy.Mixed
	Col strategy.Mixed

	// Support size of both strategies, and whether it was capped below
	// the theoretical bound.
	K       int
	Clamped bool
	Epsilon float64
	// Number of candidate pairs checked before this one was accepted.
	Evaluated uint64

	// Expected payoffs in the normalized game.
	RowPayoff float64
	ColPayoff float64
	// Largest gain available to each player from a pure deviation.
	RowGap float64
	ColGap float64
}

func (eq *Equilibrium) String() string {
	return fmt.Sprintf("row=%v col=%v (k=%d, payoffs=(%.4f, %.4f), gaps=(%.4f, %.4f))",
		eq.Row, eq.Col, eq.K, eq.RowPayoff, eq.ColPayoff, eq.RowGap, eq.ColGap)
}

// Solve finds an epsilon-approximate equilibrium of g. The payoffs of each
// player are rescaled to [0, 1] first, so epsilon is relative to each
// player's payoff range.
//
// Invalid input fails before any search with game.ErrShapeMismatch,
// game.ErrNonSquare, game.ErrDegenerateMatrix or ErrInvalidParameter.
// If no candidate pair qualifies the error is a *SearchExhaustedError.
func Solve(ctx context.Context, g *game.Game, epsilon float64, opts ...Option) (*Equilibrium, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.err != nil {
		return nil, o.err
	}

	if g == nil {
		return nil, errors.Wrap(game.ErrInvalidMatrix, "nil game")
	}
	// Games built by hand bypass NewGame.
	if _, err := game.NewGame(g.Row, g.Col); err != nil {
		return nil, err
	}
	n := g.NumActions()
	if n <= 1 {
		return nil, errors.Wrapf(ErrInvalidParameter, "n=%d must be at least 2", n)
	}
	if !(epsilon > 0) || math.IsInf(epsilon, 1) {
		return nil, errors.Wrapf(ErrInvalidParameter, "epsilon=%v must be positive", epsilon)
	}

	normalized, err := g.Normalize()
	if err != nil {
		return nil, err
	}

	k, clamped, err := ComputeK(n, epsilon, o.maxK)
	if err != nil {
		return nil, err
	}

	o.logger.Infof("Chose k = %d for n = %d, epsilon = %v", k, n, epsilon)
	if clamped {
		o.logger.Infof("k = %v has too long of an expected runtime, switching to max_k = %d: "+
			"an approximate equilibrium is no longer guaranteed to exist", theoreticalK(n, epsilon), k)
	}

	searches.Add(1)
	defer updateHitRate()
	s := newSearcher(normalized, k, clamped, epsilon, o)
	space := multiset.Count(n, k)
	o.logger.Debugf("Searching up to %v x %v candidate pairs with %d workers",
		space, space, o.workers)

	var eq *Equilibrium
	if o.workers > 1 {
		eq, err = s.runParallel(ctx)
	} else {
		eq, err = s.runSequential(ctx)
	}
	if err != nil {
		return nil, err
	}

	o.logger.Debugf("Found equilibrium after %d candidates: %v", eq.Evaluated, eq)
	return eq, nil
}

// ApproximateEquilibrium is Solve on raw payoff matrices, returning only
// the strategy pair.
func ApproximateEquilibrium(rowPayoff, colPayoff [][]float64, epsilon float64, opts ...Option) (strategy.Mixed, strategy.Mixed, error) {
	g, err := game.FromSlices(rowPayoff, colPayoff)
	if err != nil {
		return nil, nil, err
	}

	eq, err := Solve(context.Background(), g, epsilon, opts...)
	if err != nil {
		return nil, nil, err
	}

	return eq.Row, eq.Col, nil
}
