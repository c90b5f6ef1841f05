// Package game holds the payoff matrices of a two-player normal-form game.
package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

var (
	// ErrInvalidMatrix is returned for empty or ragged input, or input
	// containing NaN or Inf entries.
	ErrInvalidMatrix = errors.New("game: invalid payoff matrix")
	// ErrShapeMismatch is returned when the two players' matrices differ in shape.
	ErrShapeMismatch = errors.New("game: payoff matrices differ in shape")
	// ErrNonSquare is returned when a payoff matrix is not square.
	ErrNonSquare = errors.New("game: payoff matrix is not square")
	// ErrDegenerateMatrix is returned when normalizing a constant matrix.
	ErrDegenerateMatrix = errors.New("game: degenerate payoff matrix")
)

// Matrix is an immutable r×c grid of payoffs, indexed [row action][column action].
type Matrix struct {
	rows, cols int
	// Row-major.
	data []float64
}

// NewMatrix copies the given rows into a new Matrix.
func NewMatrix(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.Wrap(ErrInvalidMatrix, "no entries")
	}

	m := &Matrix{
		rows: len(rows),
		cols: len(rows[0]),
		data: make([]float64, 0, len(rows)*len(rows[0])),
	}
	for i, row := range rows {
		if len(row) != m.cols {
			return nil, errors.Wrapf(ErrInvalidMatrix,
				"row %d has %d entries, expected %d", i, len(row), m.cols)
		}

		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.Wrapf(ErrInvalidMatrix, "entry (%d, %d) is %v", i, j, v)
			}
		}

		m.data = append(m.data, row...)
	}

	return m, nil
}

// MustMatrix is like NewMatrix but panics on error. Intended for literals.
func MustMatrix(rows [][]float64) *Matrix {
	m, err := NewMatrix(rows)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

func (m *Matrix) Shape() (rows, cols int) { return m.rows, m.cols }

func (m *Matrix) IsSquare() bool { return m.rows == m.cols }

func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.cols+j]
}

// Row returns a view of row i. Callers must not modify it.
func (m *Matrix) Row(i int) []float64 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

func (m *Matrix) Min() float64 { return floats.Min(m.data) }
func (m *Matrix) Max() float64 { return floats.Max(m.data) }

// MulVec returns m·x, the expected payoff of each row action
// when the column player mixes according to x.
func (m *Matrix) MulVec(x []float64) []float64 {
	return m.MulVecTo(make([]float64, m.rows), x)
}

// MulVecTo writes m·x into dst and returns it.
func (m *Matrix) MulVecTo(dst, x []float64) []float64 {
	for i := range dst {
		dst[i] = floats.Dot(m.Row(i), x)
	}
	return dst
}

// TransposeMulVecTo writes mᵀ·x into dst and returns it, the expected payoff
// of each column action when the row player mixes according to x.
func (m *Matrix) TransposeMulVecTo(dst, x []float64) []float64 {
	for j := range dst {
		dst[j] = 0
	}
	for i, p := range x {
		if p == 0 {
			continue
		}
		floats.AddScaled(dst, p, m.Row(i))
	}
	return dst
}

func (m *Matrix) Transpose() *Matrix {
	t := &Matrix{
		rows: m.cols,
		cols: m.rows,
		data: make([]float64, len(m.data)),
	}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			t.data[j*t.cols+i] = m.data[i*m.cols+j]
		}
	}
	return t
}

// Normalize returns a copy of m affinely rescaled so that its smallest
// entry is 0 and its largest is 1. Every entry of the result is finite.
func (m *Matrix) Normalize() (*Matrix, error) {
	lo, hi := m.Min(), m.Max()
	if lo == hi {
		return nil, errors.Wrapf(ErrDegenerateMatrix, "all entries equal %v", lo)
	}

	result := &Matrix{
		rows: m.rows,
		cols: m.cols,
		data: make([]float64, len(m.data)),
	}

	scale := hi - lo
	if !math.IsInf(scale, 0) {
		for i, v := range m.data {
			result.data[i] = (v - lo) / scale
		}
		return result, nil
	}

	// The range overflows float64: rescale both ends by half first.
	scale = hi/2 - lo/2
	for i, v := range m.data {
		result.data[i] = (v/2 - lo/2) / scale
	}
	return result, nil
}

// Slices returns a copy of m as nested rows.
func (m *Matrix) Slices() [][]float64 {
	result := make([][]float64, m.rows)
	for i := range result {
		result[i] = append([]float64(nil), m.Row(i)...)
	}
	return result
}

func (m *Matrix) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%v", m.Row(i))
	}
	sb.WriteByte(']')
	return sb.String()
}
