package lmm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timpalpant/lmm/game"
	"github.com/timpalpant/lmm/matrixgame"
	"github.com/timpalpant/lmm/strategy"
)

var (
	rpsRow = [][]float64{{0, -1, 1}, {1, 0, -1}, {-1, 1, 0}}
	rpsCol = [][]float64{{0, 1, -1}, {-1, 0, 1}, {1, -1, 0}}

	pdRow = [][]float64{{3, 0}, {5, 1}}
	pdCol = [][]float64{{3, 5}, {0, 1}}

	penniesRow = [][]float64{{1, -1}, {-1, 1}}
	penniesCol = [][]float64{{-1, 1}, {1, -1}}
)

func mustGame(t *testing.T, row, col [][]float64) *game.Game {
	t.Helper()
	g, err := game.FromSlices(row, col)
	require.NoError(t, err)
	return g
}

func mustNormalize(t *testing.T, g *game.Game) *game.Game {
	t.Helper()
	norm, err := g.Normalize()
	require.NoError(t, err)
	return norm
}

func randomGame(rng *rand.Rand, n int) *game.Game {
	row := make([][]float64, n)
	col := make([][]float64, n)
	for i := 0; i < n; i++ {
		row[i] = make([]float64, n)
		col[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			row[i][j] = rng.Float64()
			col[i][j] = rng.Float64()
		}
	}
	g, err := game.FromSlices(row, col)
	if err != nil {
		panic(err)
	}
	return g
}

// assertEquilibrium checks both approximation conditions against the
// normalized payoffs.
func assertEquilibrium(t *testing.T, g *game.Game, eq *Equilibrium, epsilon float64) {
	t.Helper()
	norm := mustNormalize(t, g)
	assert.True(t, eq.Row.IsValid(1e-9), "row strategy %v", eq.Row)
	assert.True(t, eq.Col.IsValid(1e-9), "col strategy %v", eq.Col)
	assert.True(t, strategy.IsApproximateBestResponse(eq.Row, eq.Col, norm.Row, epsilon),
		"row player can gain more than %v: %v", epsilon, eq)
	assert.True(t, strategy.IsApproximateBestResponse(eq.Col, eq.Row, norm.Col.Transpose(), epsilon),
		"col player can gain more than %v: %v", epsilon, eq)
	assert.LessOrEqual(t, eq.RowGap, epsilon+strategy.Tolerance)
	assert.LessOrEqual(t, eq.ColGap, epsilon+strategy.Tolerance)
}

// assertNearExactEquilibrium checks that eq pays within epsilon of some
// exact equilibrium of the normalized game.
func assertNearExactEquilibrium(t *testing.T, g *game.Game, eq *Equilibrium, epsilon float64) {
	t.Helper()
	norm := mustNormalize(t, g)
	exact := matrixgame.SupportEnumeration(norm)
	require.NotEmpty(t, exact)

	u, v := matrixgame.ExpectedPayoffs(norm, eq.Row, eq.Col)
	assert.InDelta(t, eq.RowPayoff, u, 1e-12)
	assert.InDelta(t, eq.ColPayoff, v, 1e-12)

	idx, dist := matrixgame.Nearest(norm, exact, u, v)
	assert.LessOrEqual(t, dist, epsilon+1e-9,
		"payoffs (%v, %v) are not within %v of any of %v", u, v, epsilon, exact)
	t.Logf("approximate: %v, nearest exact: %v", eq, exact[idx])
}

func TestComputeK(t *testing.T) {
	for n := 2; n <= 10; n++ {
		for _, epsilon := range []float64{0.05, 0.1, 0.25, 0.4, 0.5, 1, 2} {
			k, clamped, err := ComputeK(n, epsilon, 0)
			require.NoError(t, err)
			assert.False(t, clamped)
			assert.Equal(t, int(math.Ceil(12*math.Log(float64(n))/(epsilon*epsilon))), k,
				"n=%d, epsilon=%v", n, epsilon)
		}
	}

	k, _, err := ComputeK(3, 0.5, 0)
	require.NoError(t, err)
	assert.Equal(t, 53, k)

	k, _, err = ComputeK(2, 0.4, 0)
	require.NoError(t, err)
	assert.Equal(t, 52, k)
}

func TestComputeK_Clamped(t *testing.T) {
	k, clamped, err := ComputeK(3, 0.5, 10)
	require.NoError(t, err)
	assert.True(t, clamped)
	assert.Equal(t, 10, k)

	k, clamped, err = ComputeK(3, 0.5, 100)
	require.NoError(t, err)
	assert.False(t, clamped)
	assert.Equal(t, 53, k)
}

func TestComputeK_Invalid(t *testing.T) {
	for _, tc := range []struct {
		n       int
		epsilon float64
		maxK    int
	}{
		{1, 0.5, 0},
		{0, 0.5, 0},
		{3, 0, 0},
		{3, -0.5, 0},
		{3, math.NaN(), 0},
		{3, math.Inf(1), 0},
		{3, 0.5, -1},
		{3, 1e-6, 0},
	} {
		_, _, err := ComputeK(tc.n, tc.epsilon, tc.maxK)
		assert.ErrorIs(t, err, ErrInvalidParameter, "%+v", tc)
	}
}

func TestSolve_InvalidInput(t *testing.T) {
	ctx := context.Background()
	g := mustGame(t, pdRow, pdCol)

	_, _, err := ApproximateEquilibrium(pdRow, rpsCol, 0.4)
	assert.ErrorIs(t, err, game.ErrShapeMismatch)

	wide := [][]float64{{1, 2, 3}, {4, 5, 6}}
	_, _, err = ApproximateEquilibrium(wide, wide, 0.4)
	assert.ErrorIs(t, err, game.ErrNonSquare)

	_, err = Solve(ctx, &game.Game{Row: g.Row, Col: game.MustMatrix(rpsCol)}, 0.4)
	assert.ErrorIs(t, err, game.ErrShapeMismatch)

	_, err = Solve(ctx, g, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = Solve(ctx, g, 0.4, WithMaxK(0))
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = Solve(ctx, g, 0.4, WithWorkers(0))
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = Solve(ctx, g, 0.4, WithCacheSize(-1))
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, _, err = ApproximateEquilibrium([][]float64{{1}}, [][]float64{{2}}, 0.4)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	constant := [][]float64{{1, 1}, {1, 1}}
	_, _, err = ApproximateEquilibrium(pdRow, constant, 0.4)
	assert.ErrorIs(t, err, game.ErrDegenerateMatrix)
}

func TestSolve_RockPaperScissors(t *testing.T) {
	g := mustGame(t, rpsRow, rpsCol)
	eq, err := Solve(context.Background(), g, 0.5)
	require.NoError(t, err)

	assert.Equal(t, 53, eq.K)
	assert.False(t, eq.Clamped)
	assertEquilibrium(t, g, eq, 0.5)
	// The unique equilibrium pays 0 in the original game, 0.5 once normalized.
	assert.InDelta(t, 0.5, eq.RowPayoff, 0.5+1e-9)
	assert.InDelta(t, 0.5, eq.ColPayoff, 0.5+1e-9)
	assertNearExactEquilibrium(t, g, eq, 0.5)
}

func TestSolve_PrisonersDilemma(t *testing.T) {
	g := mustGame(t, pdRow, pdCol)
	eq, err := Solve(context.Background(), g, 0.4)
	require.NoError(t, err)

	assert.Equal(t, 52, eq.K)
	assertEquilibrium(t, g, eq, 0.4)
	assertNearExactEquilibrium(t, g, eq, 0.4)
}

func TestSolve_FirstInEnumerationOrder(t *testing.T) {
	g := mustGame(t, penniesRow, penniesCol)
	eq, err := Solve(context.Background(), g, 0.1, WithMaxK(2))
	require.NoError(t, err)

	assert.Equal(t, strategy.Mixed{0.5, 0.5}, eq.Row)
	assert.Equal(t, strategy.Mixed{0.5, 0.5}, eq.Col)
	assert.True(t, eq.Clamped)
	// All four column strategies against pure heads, then two more.
	assert.Equal(t, uint64(6), eq.Evaluated)
	assertEquilibrium(t, g, eq, 0.1)
}

func TestSolve_LogsEnumerationPosition(t *testing.T) {
	g := mustGame(t, penniesRow, penniesCol)
	logger := &recordingLogger{}
	_, err := Solve(context.Background(), g, 0.1, WithMaxK(2), WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, logger.debug, "equilibrium found at row strategy #1, column strategy #1")
}

func TestSolve_OverflowingPayoffRange(t *testing.T) {
	// Finite payoffs whose range exceeds math.MaxFloat64.
	payoffs := [][]float64{{-1e308, 1e308}, {0, 0}}
	g := mustGame(t, payoffs, payoffs)

	for _, workers := range []int{1, 2} {
		eq, err := Solve(context.Background(), g, 0.1, WithMaxK(1), WithWorkers(workers))
		require.NoError(t, err)

		assert.Equal(t, strategy.Mixed{1, 0}, eq.Row)
		assert.Equal(t, strategy.Mixed{0, 1}, eq.Col)
		assert.Equal(t, 1.0, eq.RowPayoff)
		assert.Equal(t, 1.0, eq.ColPayoff)
		for _, v := range []float64{eq.RowPayoff, eq.ColPayoff, eq.RowGap, eq.ColGap} {
			assert.False(t, math.IsNaN(v))
		}
		assertEquilibrium(t, g, eq, 0.1)
	}
}

func TestSolve_Exhausted(t *testing.T) {
	// No pure strategy profile of matching pennies is a 0.1-equilibrium.
	g := mustGame(t, penniesRow, penniesCol)
	for _, workers := range []int{1, 3} {
		_, err := Solve(context.Background(), g, 0.1, WithMaxK(1), WithWorkers(workers))
		require.ErrorIs(t, err, ErrSearchExhausted)

		var exhaustedErr *SearchExhaustedError
		require.True(t, errors.As(err, &exhaustedErr))
		assert.Equal(t, 1, exhaustedErr.K)
		assert.True(t, exhaustedErr.Clamped)
		assert.Equal(t, uint64(4), exhaustedErr.Evaluated)
	}

	// Same for rock-paper-scissors, with k = 2.
	_, _, err := ApproximateEquilibrium(rpsRow, rpsCol, 0.2, WithMaxK(2))
	assert.ErrorIs(t, err, ErrSearchExhausted)
}

func TestSolve_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		g := randomGame(rng, 3)
		first, err1 := Solve(context.Background(), g, 0.3, WithMaxK(3))
		again, err2 := Solve(context.Background(), g, 0.3, WithMaxK(3))
		parallel, err3 := Solve(context.Background(), g, 0.3, WithMaxK(3), WithWorkers(4))
		uncached, err4 := Solve(context.Background(), g, 0.3, WithMaxK(3), WithCacheSize(0))

		if err1 != nil {
			require.ErrorIs(t, err1, ErrSearchExhausted)
			assert.ErrorIs(t, err2, ErrSearchExhausted)
			assert.ErrorIs(t, err3, ErrSearchExhausted)
			assert.ErrorIs(t, err4, ErrSearchExhausted)
			continue
		}

		require.NoError(t, err2)
		require.NoError(t, err3)
		require.NoError(t, err4)
		assert.Equal(t, first, again)
		assert.Equal(t, first, uncached)
		assert.Equal(t, first.Row, parallel.Row)
		assert.Equal(t, first.Col, parallel.Col)
		assertEquilibrium(t, g, first, 0.3)
	}
}

func TestSolve_ParallelDeterministicLaterRow(t *testing.T) {
	g := mustGame(t, penniesRow, penniesCol)
	for _, workers := range []int{2, 4, 8} {
		eq, err := Solve(context.Background(), g, 0.1, WithMaxK(2), WithWorkers(workers))
		require.NoError(t, err)
		assert.Equal(t, strategy.Mixed{0.5, 0.5}, eq.Row)
		assert.Equal(t, strategy.Mixed{0.5, 0.5}, eq.Col)
	}
}

func TestSolve_NonDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 10; i++ {
		g := randomGame(rng, 3)
		eq, err := Solve(context.Background(), g, 0.3, WithMaxK(4),
			WithWorkers(4), WithDeterministic(false))
		if err != nil {
			require.ErrorIs(t, err, ErrSearchExhausted)
			continue
		}
		assertEquilibrium(t, g, eq, 0.3)
	}
}

func TestSolve_Cancelled(t *testing.T) {
	g := mustGame(t, penniesRow, penniesCol)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		_, err := Solve(ctx, g, 0.01, WithMaxK(10), WithWorkers(workers))
		assert.ErrorIs(t, err, context.Canceled)
	}
}

type recordingLogger struct {
	mu    sync.Mutex
	infos []string
	debug []string
}

func (l *recordingLogger) Infof(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debugf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = append(l.debug, fmt.Sprintf(format, args...))
}

func TestSolve_ReportsSupportSize(t *testing.T) {
	g := mustGame(t, rpsRow, rpsCol)

	logger := &recordingLogger{}
	_, err := Solve(context.Background(), g, 0.5, WithLogger(logger))
	require.NoError(t, err)
	require.Len(t, logger.infos, 1)
	assert.Contains(t, logger.infos[0], "k = 53")
	assert.Contains(t, logger.debug, "search state Enumerating -> Found")

	logger = &recordingLogger{}
	_, err = Solve(context.Background(), g, 0.5, WithLogger(logger), WithMaxK(4))
	require.NoError(t, err)
	require.Len(t, logger.infos, 2)
	assert.Contains(t, logger.infos[0], "k = 4")
	assert.Contains(t, logger.infos[1], "switching to max_k = 4")
}

func TestSolve_Silent(t *testing.T) {
	// The default logger must tolerate a nil override.
	g := mustGame(t, pdRow, pdCol)
	_, err := Solve(context.Background(), g, 0.4, WithLogger(nil))
	assert.NoError(t, err)
}

func TestEquilibrium_SaveLoad(t *testing.T) {
	g := mustGame(t, penniesRow, penniesCol)
	eq, err := Solve(context.Background(), g, 0.1, WithMaxK(2))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, eq.SaveTo(&buf))
	loaded, err := LoadEquilibrium(&buf)
	require.NoError(t, err)
	assert.Equal(t, eq, loaded)

	_, err = LoadEquilibrium(bytes.NewReader([]byte("not gob")))
	assert.Error(t, err)
}

func TestSearchState_String(t *testing.T) {
	assert.Equal(t, "Initializing", initializing.String())
	assert.Equal(t, "Exhausted", exhausted.String())
}
