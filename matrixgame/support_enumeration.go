package matrixgame

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/timpalpant/lmm/game"
	"github.com/timpalpant/lmm/strategy"
)

const supportTol = 1e-9

// Equilibrium is an exact Nash equilibrium.
type Equilibrium struct {
	Row, Col strategy.Mixed
}

// SupportEnumeration returns the Nash equilibria of g found by checking every
// pair of equal-size supports. For each pair, it solves for the strategies
// that make the opponent indifferent across its support and keeps the
// solution if both strategies are non-negative and no action outside the
// support does better.
//
// This finds all equilibria of nondegenerate games. Cost grows as 4^n, so it
// is only meant as a reference for small games.
func SupportEnumeration(g *game.Game) []Equilibrium {
	n := g.NumActions()
	colT := g.Col.Transpose()
	var result []Equilibrium
	for size := 1; size <= n; size++ {
		supports := combin.Combinations(n, size)
		for _, rowSupport := range supports {
			for _, colSupport := range supports {
				// The column strategy makes the row player indifferent over rowSupport.
				col, v, ok := indifferentStrategy(g.Row, rowSupport, colSupport, n)
				if !ok {
					continue
				}
				row, u, ok := indifferentStrategy(colT, colSupport, rowSupport, n)
				if !ok {
					continue
				}

				if isBestResponse(g.Row, col, v) && isBestResponse(colT, row, u) {
					result = append(result, Equilibrium{Row: row, Col: col})
				}
			}
		}
	}

	return result
}

// indifferentStrategy solves for the opponent strategy supported on
// oppSupport under which every action in support earns the same payoff v.
// payoffs is indexed [own action][opponent action].
func indifferentStrategy(payoffs *game.Matrix, support, oppSupport []int, n int) (strategy.Mixed, float64, bool) {
	s := len(oppSupport)
	if len(support) != s {
		return nil, 0, false
	}

	a := mat.NewDense(s+1, s+1, nil)
	for r, i := range support {
		for c, j := range oppSupport {
			a.Set(r, c, payoffs.At(i, j))
		}
		a.Set(r, s, -1)
	}
	for c := 0; c < s; c++ {
		a.Set(s, c, 1)
	}

	b := mat.NewVecDense(s+1, nil)
	b.SetVec(s, 1)

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		// Singular or ill-conditioned: no unique indifferent strategy.
		return nil, 0, false
	}

	result := make(strategy.Mixed, n)
	for c, j := range oppSupport {
		p := x.AtVec(c)
		if p < -supportTol {
			return nil, 0, false
		}
		if p < 0 {
			p = 0
		}
		result[j] = p
	}

	return result, x.AtVec(s), true
}

func isBestResponse(payoffs *game.Matrix, opponent strategy.Mixed, value float64) bool {
	for _, u := range payoffs.MulVec(opponent) {
		if u > value+supportTol {
			return false
		}
	}
	return true
}
