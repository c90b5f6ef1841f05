package lmm

import (
	"context"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/timpalpant/lmm/game"
	"github.com/timpalpant/lmm/multiset"
	"github.com/timpalpant/lmm/strategy"
)

// searchState is the lifecycle of a single search.
type searchState int

const (
	initializing searchState = iota
	enumerating
	found
	exhausted
)

var searchStateStr = [...]string{
	"Initializing",
	"Enumerating",
	"Found",
	"Exhausted",
}

func (s searchState) String() string {
	return searchStateStr[s]
}

// How many candidate pairs to evaluate between checks of ctx.Done().
const ctxCheckInterval = 1024

// searcher enumerates pairs of k-uniform strategies of a normalized game.
type searcher struct {
	game    *game.Game
	n, k    int
	clamped bool
	epsilon float64
	opts    *options
	cache   *payoffCache

	state     searchState
	evaluated uint64
}

func newSearcher(g *game.Game, k int, clamped bool, epsilon float64, opts *options) *searcher {
	return &searcher{
		game:    g,
		n:       g.NumActions(),
		k:       k,
		clamped: clamped,
		epsilon: epsilon,
		opts:    opts,
		cache:   newPayoffCache(g.Row, opts.cacheSize),
		state:   initializing,
	}
}

func (s *searcher) transition(to searchState) {
	s.opts.logger.Debugf("search state %v -> %v", s.state, to)
	s.state = to
}

// workspace holds the per-goroutine buffers of the inner loop.
type workspace struct {
	cols       *multiset.Enumerator
	row, col   strategy.Mixed
	colPayoffs []float64
	colBest    float64
	rowPayoffs []float64
}

func (s *searcher) newWorkspace() *workspace {
	cols, err := multiset.New(s.n, s.k)
	if err != nil {
		// n and k were validated by ComputeK.
		panic(err)
	}

	return &workspace{
		cols:       cols,
		row:        make(strategy.Mixed, s.n),
		col:        make(strategy.Mixed, s.n),
		colPayoffs: make([]float64, s.n),
		rowPayoffs: make([]float64, s.n),
	}
}

// beginRow loads the row strategy given by rowCounts into ws.
// The column player's payoffs against it do not depend on the column
// strategy, so they are computed once per row.
func (s *searcher) beginRow(rowCounts []int, ws *workspace) {
	x := strategy.FromCountsTo(ws.row, rowCounts, s.k)
	s.game.Col.TransposeMulVecTo(ws.colPayoffs, x)
	ws.colBest = floats.Max(ws.colPayoffs)
}

// isEquilibrium reports whether the current row strategy of ws and the
// column strategy given by colCounts are mutual epsilon-best responses,
// leaving the column strategy in ws.col. A NaN gap fails both checks.
func (s *searcher) isEquilibrium(colCounts []int, ws *workspace) bool {
	threshold := s.epsilon + strategy.Tolerance
	y := strategy.FromCountsTo(ws.col, colCounts, s.k)
	rowPayoffs := s.cache.get(colCounts, y, ws.rowPayoffs)
	if !(strategy.Gap(ws.row, rowPayoffs) <= threshold) {
		return false
	}

	return ws.colBest-floats.Dot(y, ws.colPayoffs) <= threshold
}

func (s *searcher) addEvaluated(n uint64) {
	atomic.AddUint64(&s.evaluated, n)
	candidatesEvaluated.Add(int64(n))
}

func checkDone(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// searchRow checks the row strategy given by rowCounts against every column
// strategy in enumeration order. It returns true at the first column
// strategy completing an equilibrium, leaving it in ws.col.
// The search stops early, returning false, once abort reports true.
func (s *searcher) searchRow(ctx context.Context, rowCounts []int, ws *workspace, abort func() bool) (bool, error) {
	s.beginRow(rowCounts, ws)

	var evaluated uint64
	defer func() { s.addEvaluated(evaluated) }()

	cols := ws.cols
	cols.Reset()
	for cols.Next() {
		if evaluated%ctxCheckInterval == 0 {
			if err := checkDone(ctx); err != nil {
				return false, err
			}
		}
		if abort() {
			return false, nil
		}

		evaluated++
		if s.isEquilibrium(cols.Counts(), ws) {
			return true, nil
		}
	}

	return false, nil
}

// runSequential walks the row-major product of row and column tuples
// and returns the first equilibrium found.
func (s *searcher) runSequential(ctx context.Context) (*Equilibrium, error) {
	rows, err := multiset.New(s.n, s.k)
	if err != nil {
		return nil, err
	}

	ws := s.newWorkspace()
	pairs := multiset.NewProduct(rows, ws.cols)

	var evaluated uint64
	s.transition(enumerating)
	for pairs.Next() {
		if evaluated%ctxCheckInterval == 0 {
			if err := checkDone(ctx); err != nil {
				s.addEvaluated(evaluated)
				return nil, err
			}
		}
		if pairs.NewRow() {
			s.beginRow(rows.Counts(), ws)
		}

		evaluated++
		if s.isEquilibrium(ws.cols.Counts(), ws) {
			s.addEvaluated(evaluated)
			s.transition(found)
			s.opts.logger.Debugf("equilibrium found at row strategy #%v, column strategy #%v",
				rows.Ordinal(), ws.cols.Ordinal())
			return s.newEquilibrium(ws.row, ws.col), nil
		}
	}

	s.addEvaluated(evaluated)
	s.transition(exhausted)
	return nil, s.exhaustedError()
}

func (s *searcher) exhaustedError() error {
	return &SearchExhaustedError{
		K:         s.k,
		Clamped:   s.clamped,
		Epsilon:   s.epsilon,
		Evaluated: atomic.LoadUint64(&s.evaluated),
	}
}

func (s *searcher) newEquilibrium(row, col strategy.Mixed) *Equilibrium {
	row = append(strategy.Mixed(nil), row...)
	col = append(strategy.Mixed(nil), col...)
	colT := s.game.Col.Transpose()
	return &Equilibrium{
		Row:       row,
		Col:       col,
		K:         s.k,
		Clamped:   s.clamped,
		Epsilon:   s.epsilon,
		Evaluated: atomic.LoadUint64(&s.evaluated),
		RowPayoff: strategy.ExpectedPayoff(row, col, s.game.Row),
		ColPayoff: strategy.ExpectedPayoff(col, row, colT),
		RowGap:    strategy.Gap(row, s.game.Row.MulVec(col)),
		ColGap:    strategy.Gap(col, colT.MulVec(row)),
	}
}
