package multiset

// Product walks the Cartesian product of two enumerators in row-major
// order: every column tuple is visited before the row tuple advances.
type Product struct {
	Row, Col *Enumerator
	started  bool
	newRow   bool
}

func NewProduct(row, col *Enumerator) *Product {
	return &Product{Row: row, Col: col}
}

// Next advances to the next (row, col) pair.
func (p *Product) Next() bool {
	if !p.started {
		p.started = true
		p.newRow = true
		return p.Row.Next() && p.Col.Next()
	}

	if p.Col.Next() {
		p.newRow = false
		return true
	}

	if !p.Row.Next() {
		p.newRow = false
		return false
	}

	p.newRow = true
	p.Col.Reset()
	return p.Col.Next()
}

// NewRow reports whether the last call to Next moved to a new row tuple,
// including the first pair.
func (p *Product) NewRow() bool { return p.newRow }

// Reset rewinds both enumerators.
func (p *Product) Reset() {
	p.Row.Reset()
	p.Col.Reset()
	p.started = false
	p.newRow = false
}
