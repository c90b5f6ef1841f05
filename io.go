package lmm

import (
	"encoding/gob"
	"io"

	"github.com/pkg/errors"
)

// SaveTo writes eq in gob encoding.
func (eq *Equilibrium) SaveTo(w io.Writer) error {
	enc := gob.NewEncoder(w)
	return enc.Encode(eq)
}

// LoadEquilibrium reads an Equilibrium written by SaveTo.
func LoadEquilibrium(r io.Reader) (*Equilibrium, error) {
	var eq Equilibrium
	dec := gob.NewDecoder(r)
	if err := dec.Decode(&eq); err != nil {
		return nil, errors.Wrap(err, "decoding equilibrium")
	}

	if len(eq.Row) == 0 || len(eq.Row) != len(eq.Col) {
		return nil, errors.Errorf("corrupt equilibrium: strategies over %d and %d actions",
			len(eq.Row), len(eq.Col))
	}
	return &eq, nil
}
