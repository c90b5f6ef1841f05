// Package multiset enumerates the ordered k-tuples of actions {0, ..., n-1},
// drawn with repetition, from which k-uniform mixed strategies are built.
//
// Tuples are visited in lexicographic order with position 0 the most
// significant digit, i.e. tuple number t is the base-n representation of t.
// Only the current tuple is held in memory, so the n^k tuples are never
// materialized.
package multiset

import (
	"math/big"

	"github.com/pkg/errors"
)

var (
	ErrInvalidSize       = errors.New("multiset: invalid size")
	ErrOrdinalOutOfRange = errors.New("multiset: ordinal out of range")
)

// Enumerator walks all n^k tuples. The zero value is not usable; use New.
//
//	e, _ := multiset.New(n, k)
//	for e.Next() {
//		use(e.Tuple())
//	}
type Enumerator struct {
	n, k    int
	tuple   []int
	counts  []int
	started bool
	done    bool
}

func New(n, k int) (*Enumerator, error) {
	if n <= 0 || k <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "n=%d, k=%d", n, k)
	}

	e := &Enumerator{
		n:      n,
		k:      k,
		tuple:  make([]int, k),
		counts: make([]int, n),
	}
	e.Reset()
	return e, nil
}

func (e *Enumerator) NumActions() int { return e.n }
func (e *Enumerator) Size() int       { return e.k }

// Reset rewinds the enumerator so the next call to Next yields the first tuple.
func (e *Enumerator) Reset() {
	for i := range e.tuple {
		e.tuple[i] = 0
	}
	for v := range e.counts {
		e.counts[v] = 0
	}
	e.counts[0] = e.k
	e.started = false
	e.done = false
}

// Next advances to the next tuple, returning false once all have been visited.
func (e *Enumerator) Next() bool {
	if e.done {
		return false
	}
	if !e.started {
		e.started = true
		return true
	}

	// Odometer increment from the least significant (last) position.
	for pos := e.k - 1; pos >= 0; pos-- {
		v := e.tuple[pos]
		e.counts[v]--
		if v+1 < e.n {
			e.tuple[pos] = v + 1
			e.counts[v+1]++
			return true
		}

		e.tuple[pos] = 0
		e.counts[0]++
	}

	// Wrapped around: every tuple has been visited.
	e.done = true
	return false
}

// Tuple returns the current tuple. It is only valid until the next call
// to Next, Reset or Seek.
func (e *Enumerator) Tuple() []int { return e.tuple }

// Counts returns the multiplicity of each action in the current tuple,
// with the same validity as Tuple.
func (e *Enumerator) Counts() []int { return e.counts }

// Len returns the total number of tuples, n^k.
func (e *Enumerator) Len() *big.Int {
	return Count(e.n, e.k)
}

// Ordinal returns the position of the current tuple in the enumeration.
func (e *Enumerator) Ordinal() *big.Int {
	result := new(big.Int)
	base := big.NewInt(int64(e.n))
	digit := new(big.Int)
	for _, v := range e.tuple {
		result.Mul(result, base)
		result.Add(result, digit.SetInt64(int64(v)))
	}
	return result
}

// Seek positions the enumerator on the given tuple, so that the next
// call to Next yields the tuple after it.
func (e *Enumerator) Seek(ordinal *big.Int) error {
	if err := decode(e.n, ordinal, e.tuple); err != nil {
		return err
	}

	for v := range e.counts {
		e.counts[v] = 0
	}
	for _, v := range e.tuple {
		e.counts[v]++
	}
	e.started = true
	e.done = false
	return nil
}

// Count returns n^k.
func Count(n, k int) *big.Int {
	return new(big.Int).Exp(big.NewInt(int64(n)), big.NewInt(int64(k)), nil)
}

// At computes the tuple with the given ordinal directly.
func At(n, k int, ordinal *big.Int) ([]int, error) {
	if n <= 0 || k <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "n=%d, k=%d", n, k)
	}

	tuple := make([]int, k)
	if err := decode(n, ordinal, tuple); err != nil {
		return nil, err
	}
	return tuple, nil
}

func decode(n int, ordinal *big.Int, tuple []int) error {
	k := len(tuple)
	if ordinal.Sign() < 0 || ordinal.Cmp(Count(n, k)) >= 0 {
		return errors.Wrapf(ErrOrdinalOutOfRange, "%v not in [0, %d^%d)", ordinal, n, k)
	}

	rem := new(big.Int).Set(ordinal)
	base := big.NewInt(int64(n))
	digit := new(big.Int)
	for pos := k - 1; pos >= 0; pos-- {
		rem.QuoRem(rem, base, digit)
		tuple[pos] = int(digit.Int64())
	}
	return nil
}
