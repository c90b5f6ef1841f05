package game

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is the on-disk description of a game. JSON is accepted too,
// since it is a subset of YAML.
type File struct {
	Name string      `yaml:"name"`
	Row  [][]float64 `yaml:"row"`
	Col  [][]float64 `yaml:"col"`

	// Optional solver defaults for the command-line tools.
	Epsilon float64 `yaml:"epsilon,omitempty"`
	MaxK    int     `yaml:"max_k,omitempty"`
}

// Game validates the payoffs of f.
func (f *File) Game() (*Game, error) {
	g, err := FromSlices(f.Row, f.Col)
	if err != nil {
		return nil, errors.Wrapf(err, "game %q", f.Name)
	}
	return g, nil
}

func Decode(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(err, "decoding game file")
	}
	return &f, nil
}

func LoadFile(filename string) (*File, error) {
	fd, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	f, err := Decode(fd)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %v", filename)
	}
	return f, nil
}
