package matrixgame

import (
	"math/rand"

	"github.com/golang/glog"

	"github.com/timpalpant/lmm/game"
	"github.com/timpalpant/lmm/strategy"
)

// FictitiousPlay runs nIter rounds in which each player best-responds to the
// empirical play of the other, and returns the empirical strategies.
// With probability mixingLambda a player instead picks a uniformly random action.
func FictitiousPlay(g *game.Game, nIter int, mixingLambda float64, rng *rand.Rand) (strategy.Mixed, strategy.Mixed) {
	n := g.NumActions()
	rowPlayCounts := make([]int, n)
	colPlayCounts := make([]int, n)
	utilities := make([]float64, n)
	for i := 1; i <= nIter; i++ {
		var rowSelected int
		if rng.Float64() < mixingLambda {
			rowSelected = rng.Intn(n)
		} else {
			rowSelected = getRowBestResponse(g.Row, colPlayCounts, utilities)
		}

		var colSelected int
		if rng.Float64() < mixingLambda {
			colSelected = rng.Intn(n)
		} else {
			colSelected = getColBestResponse(g.Col, rowPlayCounts, utilities)
		}
		rowPlayCounts[rowSelected]++
		colPlayCounts[colSelected]++

		if nIter >= 10 && i%(nIter/10) == 0 {
			glog.V(1).Infof("After %d iterations, row weights: %v", i, strategy.FromCounts(rowPlayCounts, i))
			glog.V(1).Infof("After %d iterations, col weights: %v", i, strategy.FromCounts(colPlayCounts, i))
		}
	}

	return strategy.FromCounts(rowPlayCounts, nIter), strategy.FromCounts(colPlayCounts, nIter)
}

func getRowBestResponse(payoffs *game.Matrix, colPlayCounts []int, utilities []float64) int {
	for i := range utilities {
		utilities[i] = 0
	}
	for j, c := range colPlayCounts {
		for i := range utilities {
			utilities[i] += float64(c) * payoffs.At(i, j)
		}
	}

	return argMax(utilities)
}

func getColBestResponse(payoffs *game.Matrix, rowPlayCounts []int, utilities []float64) int {
	for j := range utilities {
		utilities[j] = 0
	}
	for i, c := range rowPlayCounts {
		for j := range utilities {
			utilities[j] += float64(c) * payoffs.At(i, j)
		}
	}

	return argMax(utilities)
}

// argMax breaks ties in favor of the lowest index, so runs are reproducible
// for a given rng seed.
func argMax(vs []float64) int {
	bestIdx := 0
	for i, v := range vs {
		if v > vs[bestIdx] {
			bestIdx = i
		}
	}

	return bestIdx
}
