// Compare approximate equilibria of some classic games against their exact
// equilibria and against fictitious play.
package main

import (
	"context"
	"flag"
	"math/rand"
	"time"

	"github.com/golang/glog"

	"github.com/timpalpant/lmm"
	"github.com/timpalpant/lmm/game"
	"github.com/timpalpant/lmm/matrixgame"
)

var benchmarkGames = []game.File{
	{
		Name: "rock-paper-scissors",
		Row:  [][]float64{{0, -1, 1}, {1, 0, -1}, {-1, 1, 0}},
		Col:  [][]float64{{0, 1, -1}, {-1, 0, 1}, {1, -1, 0}},
	},
	{
		Name: "prisoners-dilemma",
		Row:  [][]float64{{3, 0}, {5, 1}},
		Col:  [][]float64{{3, 5}, {0, 1}},
	},
	{
		Name: "matching-pennies",
		Row:  [][]float64{{1, -1}, {-1, 1}},
		Col:  [][]float64{{-1, 1}, {1, -1}},
	},
	{
		Name: "battle-of-the-sexes",
		Row:  [][]float64{{3, 0}, {0, 2}},
		Col:  [][]float64{{2, 0}, {0, 3}},
	},
}

func main() {
	epsilon := flag.Float64("epsilon", 0.5, "Approximation tolerance")
	maxK := flag.Int("max_k", 0, "Cap on the support size, 0 for none")
	workers := flag.Int("workers", 1, "Number of parallel search workers")
	fpIters := flag.Int("fp_iters", 10000, "Iterations of fictitious play")
	numRounds := flag.Int("num_rounds", 100000, "Rounds to simulate with the approximate strategies")
	seed := flag.Int64("seed", 123, "Random seed")
	flag.Set("logtostderr", "true")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	opts := []lmm.Option{
		lmm.WithWorkers(*workers),
		lmm.WithLogger(lmm.GlogLogger{}),
	}
	if *maxK > 0 {
		opts = append(opts, lmm.WithMaxK(*maxK))
	}

	failed := 0
	for _, f := range benchmarkGames {
		if !runBenchmark(f, *epsilon, opts, *fpIters, *numRounds, rng) {
			failed++
		}
	}

	if failed > 0 {
		glog.Fatalf("%d of %d games were not within %v of an exact equilibrium",
			failed, len(benchmarkGames), *epsilon)
	}
	glog.Infof("All %d games within %v of an exact equilibrium", len(benchmarkGames), *epsilon)
}

func runBenchmark(f game.File, epsilon float64, opts []lmm.Option, fpIters, numRounds int, rng *rand.Rand) bool {
	glog.Infof("-------")
	glog.Infof("Game: %v", f.Name)
	g, err := f.Game()
	if err != nil {
		glog.Fatal(err)
	}
	norm, err := g.Normalize()
	if err != nil {
		glog.Fatal(err)
	}

	start := time.Now()
	eq, err := lmm.Solve(context.Background(), g, epsilon, opts...)
	if err != nil {
		glog.Errorf("Solve failed: %v", err)
		return false
	}
	glog.Infof("Approx.: %v (%v)", eq, time.Since(start))

	u, v := matrixgame.Simulate(norm, eq.Row, eq.Col, numRounds, rng)
	glog.Infof("Simulated payoffs over %d rounds: %.4f, %.4f", numRounds, u, v)

	exact := matrixgame.SupportEnumeration(norm)
	for _, x := range exact {
		eu, ev := matrixgame.ExpectedPayoffs(norm, x.Row, x.Col)
		glog.Infof("Exact:   row=%v col=%v payoffs=(%.4f, %.4f)", x.Row, x.Col, eu, ev)
	}

	fpRow, fpCol := matrixgame.FictitiousPlay(norm, fpIters, 0, rng)
	fu, fv := matrixgame.ExpectedPayoffs(norm, fpRow, fpCol)
	glog.Infof("Fictitious play: row=%v col=%v payoffs=(%.4f, %.4f)", fpRow, fpCol, fu, fv)

	idx, dist := matrixgame.Nearest(norm, exact, eq.RowPayoff, eq.ColPayoff)
	if idx < 0 || dist > epsilon {
		glog.Warningf("Approximate payoffs are %.4f from the nearest exact equilibrium", dist)
		return false
	}

	glog.Infof("Within %.4f of exact equilibrium %d", dist, idx)
	return true
}
