// Find an epsilon-approximate Nash equilibrium of a game described in a YAML file.
package main

import (
	"context"
	"flag"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/golang/glog"
	gzip "github.com/klauspost/pgzip"

	"github.com/timpalpant/lmm"
	"github.com/timpalpant/lmm/game"
	"github.com/timpalpant/lmm/internal/npyio"
)

func main() {
	gameFile := flag.String("game", "", "YAML or JSON file with the payoff matrices")
	epsilon := flag.Float64("epsilon", 0, "Approximation tolerance (default: from game file)")
	maxK := flag.Int("max_k", -1, "Cap on the support size, 0 for none (default: from game file)")
	workers := flag.Int("workers", 1, "Number of parallel search workers")
	deterministic := flag.Bool("deterministic", true,
		"Return the first equilibrium in enumeration order even when searching in parallel")
	cacheSize := flag.Int("cache_size", 4096, "Number of payoff vectors to cache, 0 to disable")
	timeout := flag.Duration("timeout", 0, "Give up after this long (0 for no limit)")
	output := flag.String("output", "", "Save the equilibrium to this file (gzipped gob)")
	npz := flag.String("npz", "", "Export the normalized game and equilibrium as .npz")
	httpAddr := flag.String("http", "localhost:4123", "Address for expvar and pprof")
	flag.Set("logtostderr", "true")
	flag.Parse()

	if *gameFile == "" {
		glog.Fatal("-game is required")
	}
	if *httpAddr != "" {
		go http.ListenAndServe(*httpAddr, nil)
	}

	f, err := game.LoadFile(*gameFile)
	if err != nil {
		glog.Fatal(err)
	}
	g, err := f.Game()
	if err != nil {
		glog.Fatal(err)
	}

	if *epsilon == 0 {
		*epsilon = f.Epsilon
	}
	if *maxK < 0 {
		*maxK = f.MaxK
	}

	opts := []lmm.Option{
		lmm.WithWorkers(*workers),
		lmm.WithDeterministic(*deterministic),
		lmm.WithCacheSize(*cacheSize),
		lmm.WithLogger(lmm.GlogLogger{}),
	}
	if *maxK > 0 {
		opts = append(opts, lmm.WithMaxK(*maxK))
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	glog.Infof("Solving %q (%d actions) with epsilon = %v", f.Name, g.NumActions(), *epsilon)
	start := time.Now()
	eq, err := lmm.Solve(ctx, g, *epsilon, opts...)
	if err != nil {
		glog.Fatal(err)
	}

	elapsed := time.Since(start)
	cps := float64(eq.Evaluated) / elapsed.Seconds()
	glog.Infof("Found equilibrium after %d candidates in %v (%.1f candidates/sec)",
		eq.Evaluated, elapsed, cps)
	glog.Infof("Row strategy: %v", eq.Row)
	glog.Infof("Col strategy: %v", eq.Col)
	glog.Infof("Expected payoffs (normalized): %.4f, %.4f", eq.RowPayoff, eq.ColPayoff)
	glog.Infof("Best deviation gains: %.4f, %.4f", eq.RowGap, eq.ColGap)

	if *output != "" {
		if err := saveEquilibrium(eq, *output); err != nil {
			glog.Fatal(err)
		}
		glog.Infof("Saved equilibrium to %v", *output)
	}

	if *npz != "" {
		if err := exportNPZ(g, eq, *npz); err != nil {
			glog.Fatal(err)
		}
		glog.Infof("Exported arrays to %v", *npz)
	}
}

func saveEquilibrium(eq *lmm.Equilibrium, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := gzip.NewWriter(f)
	if err := eq.SaveTo(w); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return f.Close()
}

func exportNPZ(g *game.Game, eq *lmm.Equilibrium, filename string) error {
	norm, err := g.Normalize()
	if err != nil {
		return err
	}

	a := npyio.NewArchive()
	if err := a.AddMatrix("row_payoff", norm.Row.Slices()); err != nil {
		return err
	}
	if err := a.AddMatrix("col_payoff", norm.Col.Slices()); err != nil {
		return err
	}
	if err := a.Add("row_strategy", eq.Row); err != nil {
		return err
	}
	if err := a.Add("col_strategy", eq.Col); err != nil {
		return err
	}
	return a.Save(filename)
}
