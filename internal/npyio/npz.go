package npyio

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"sort"

	"github.com/klauspost/compress/zip"
)

// Archive collects named arrays to be written as a single .npz file.
type Archive struct {
	arrays map[string]*bytes.Buffer
}

func NewArchive() *Archive {
	return &Archive{arrays: make(map[string]*bytes.Buffer)}
}

// Add encodes v with the given shape under name.
func (a *Archive) Add(name string, v []float64, shape ...int) error {
	buf := new(bytes.Buffer)
	if err := Write(buf, v, shape...); err != nil {
		return err
	}
	a.arrays[name] = buf
	return nil
}

// AddMatrix encodes rows as a 2-d array under name.
func (a *Archive) AddMatrix(name string, rows [][]float64) error {
	buf := new(bytes.Buffer)
	if err := WriteMatrix(buf, rows); err != nil {
		return err
	}
	a.arrays[name] = buf
	return nil
}

// WriteTo writes the archive, one <name>.npy entry per array in name order.
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	names := make([]string, 0, len(a.arrays))
	for name := range a.arrays {
		names = append(names, name)
	}
	sort.Strings(names)

	cw := &countingWriter{w: w}
	z := zip.NewWriter(cw)
	for _, name := range names {
		fw, err := z.Create(name + ".npy")
		if err != nil {
			return cw.n, err
		}

		if _, err := fw.Write(a.arrays[name].Bytes()); err != nil {
			return cw.n, err
		}
	}

	err := z.Close()
	return cw.n, err
}

// Save writes the archive to the named file.
func (a *Archive) Save(output string) error {
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	b := bufio.NewWriter(f)
	if _, err := a.WriteTo(b); err != nil {
		return err
	}
	if err := b.Flush(); err != nil {
		return err
	}
	return f.Close()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
