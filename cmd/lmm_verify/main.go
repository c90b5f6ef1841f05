// Re-check a saved equilibrium against the game it was computed for.
package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
	gzip "github.com/klauspost/pgzip"

	"github.com/timpalpant/lmm"
	"github.com/timpalpant/lmm/game"
	"github.com/timpalpant/lmm/strategy"
)

func main() {
	gameFile := flag.String("game", "", "YAML or JSON file with the payoff matrices")
	resultFile := flag.String("result", "", "Equilibrium saved by lmm_solve -output")
	epsilon := flag.Float64("epsilon", 0, "Tolerance to check against (default: the one solved for)")
	flag.Set("logtostderr", "true")
	flag.Parse()

	f, err := game.LoadFile(*gameFile)
	if err != nil {
		glog.Fatal(err)
	}
	g, err := f.Game()
	if err != nil {
		glog.Fatal(err)
	}
	norm, err := g.Normalize()
	if err != nil {
		glog.Fatal(err)
	}

	eq := mustLoadEquilibrium(*resultFile)
	if len(eq.Row) != g.NumActions() {
		glog.Fatalf("equilibrium has %d actions, game has %d", len(eq.Row), g.NumActions())
	}
	if *epsilon == 0 {
		*epsilon = eq.Epsilon
	}

	colT := norm.Col.Transpose()
	rowOK := strategy.IsApproximateBestResponse(eq.Row, eq.Col, norm.Row, *epsilon)
	colOK := strategy.IsApproximateBestResponse(eq.Col, eq.Row, colT, *epsilon)
	glog.Infof("Row player: best deviation gains %.6f (ok: %v)",
		strategy.Gap(eq.Row, norm.Row.MulVec(eq.Col)), rowOK)
	glog.Infof("Col player: best deviation gains %.6f (ok: %v)",
		strategy.Gap(eq.Col, colT.MulVec(eq.Row)), colOK)

	if !rowOK || !colOK {
		glog.Errorf("Not a %v-approximate equilibrium of %q", *epsilon, f.Name)
		glog.Flush()
		os.Exit(1)
	}
	glog.Infof("Verified %v-approximate equilibrium of %q", *epsilon, f.Name)
}

func mustLoadEquilibrium(filename string) *lmm.Equilibrium {
	glog.Infof("Loading equilibrium from: %v", filename)
	f, err := os.Open(filename)
	if err != nil {
		glog.Fatal(err)
	}
	defer f.Close()

	r, err := gzip.NewReader(f)
	if err != nil {
		glog.Fatal(err)
	}

	eq, err := lmm.LoadEquilibrium(r)
	if err != nil {
		glog.Fatal(err)
	}

	return eq
}
