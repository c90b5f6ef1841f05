package game

import (
	"github.com/pkg/errors"
)

// Player identifies one of the two players.
type Player uint8

const (
	RowPlayer Player = iota
	ColPlayer
)

var playerStr = [...]string{
	"RowPlayer",
	"ColPlayer",
}

func (p Player) String() string {
	return playerStr[p]
}

// Game is a two-player game with n actions per player. Row[i][j] and
// Col[i][j] are the payoffs to each player when the row player plays i
// and the column player plays j.
type Game struct {
	Row *Matrix
	Col *Matrix
}

// NewGame validates that both matrices share the same square shape.
func NewGame(row, col *Matrix) (*Game, error) {
	if row == nil || col == nil {
		return nil, errors.Wrap(ErrInvalidMatrix, "nil payoff matrix")
	}

	if row.rows != col.rows || row.cols != col.cols {
		return nil, errors.Wrapf(ErrShapeMismatch, "%dx%d != %dx%d",
			row.rows, row.cols, col.rows, col.cols)
	}

	if !row.IsSquare() {
		return nil, errors.Wrapf(ErrNonSquare, "%dx%d", row.rows, row.cols)
	}

	return &Game{Row: row, Col: col}, nil
}

// FromSlices builds a Game from raw nested payoffs.
func FromSlices(row, col [][]float64) (*Game, error) {
	rowM, err := NewMatrix(row)
	if err != nil {
		return nil, errors.Wrapf(err, "%v payoffs", RowPlayer)
	}

	colM, err := NewMatrix(col)
	if err != nil {
		return nil, errors.Wrapf(err, "%v payoffs", ColPlayer)
	}

	return NewGame(rowM, colM)
}

// NumActions is the number of actions available to each player.
func (g *Game) NumActions() int {
	return g.Row.rows
}

// Payoffs returns the payoff matrix of player p.
func (g *Game) Payoffs(p Player) *Matrix {
	if p == RowPlayer {
		return g.Row
	}
	return g.Col
}

// Normalize rescales both players' payoffs into [0, 1] independently.
func (g *Game) Normalize() (*Game, error) {
	row, err := g.Row.Normalize()
	if err != nil {
		return nil, errors.Wrapf(err, "%v payoffs", RowPlayer)
	}

	col, err := g.Col.Normalize()
	if err != nil {
		return nil, errors.Wrapf(err, "%v payoffs", ColPlayer)
	}

	return &Game{Row: row, Col: col}, nil
}
