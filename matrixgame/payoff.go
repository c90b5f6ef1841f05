package matrixgame

import (
	"math"
	"math/rand"

	"github.com/timpalpant/lmm/game"
	"github.com/timpalpant/lmm/strategy"
)

// ExpectedPayoffs returns the expected payoff to each player when they
// play the given mixed strategies.
func ExpectedPayoffs(g *game.Game, row, col strategy.Mixed) (float64, float64) {
	return strategy.ExpectedPayoff(row, col, g.Row),
		strategy.ExpectedPayoff(col, row, g.Col.Transpose())
}

// Simulate plays nRounds of g, sampling both players' actions, and returns
// the average payoff to each player.
func Simulate(g *game.Game, row, col strategy.Mixed, nRounds int, rng *rand.Rand) (float64, float64) {
	var rowTotal, colTotal float64
	for i := 0; i < nRounds; i++ {
		a := row.Sample(rng.Float64())
		b := col.Sample(rng.Float64())
		rowTotal += g.Row.At(a, b)
		colTotal += g.Col.At(a, b)
	}

	return rowTotal / float64(nRounds), colTotal / float64(nRounds)
}

// Nearest returns the index of the equilibrium whose payoffs are closest to
// (rowPayoff, colPayoff), and the larger of the two payoff differences.
// It returns -1 if eqs is empty.
func Nearest(g *game.Game, eqs []Equilibrium, rowPayoff, colPayoff float64) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	for i, eq := range eqs {
		u, v := ExpectedPayoffs(g, eq.Row, eq.Col)
		dist := math.Max(math.Abs(u-rowPayoff), math.Abs(v-colPayoff))
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}

	return best, bestDist
}
