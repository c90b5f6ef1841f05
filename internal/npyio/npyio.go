// Package npyio writes float64 arrays in numpy's .npy and .npz formats,
// so strategies and payoff matrices can be inspected from Python.
package npyio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"
)

var order = binary.LittleEndian

// Write writes v as an array with the given shape in C order.
func Write(w io.Writer, v []float64, shape ...int) error {
	if len(shape) == 0 {
		shape = []int{len(v)}
	}

	size := 1
	for _, d := range shape {
		size *= d
	}
	if size != len(v) {
		return errors.Errorf("npyio: shape %v does not hold %d elements", shape, len(v))
	}

	if err := writeHeader(w, shape); err != nil {
		return err
	}

	var buf [8]byte
	for _, x := range v {
		order.PutUint64(buf[:], math.Float64bits(x))
		_, err := w.Write(buf[:])
		if err != nil {
			return err
		}
	}

	return nil
}

// WriteMatrix writes rows as a 2-d array.
func WriteMatrix(w io.Writer, rows [][]float64) error {
	if len(rows) == 0 {
		return Write(w, nil, 0, 0)
	}

	flat := make([]float64, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		if len(row) != len(rows[0]) {
			return errors.New("npyio: ragged matrix")
		}
		flat = append(flat, row...)
	}
	return Write(w, flat, len(rows), len(rows[0]))
}

// The following is adapted from: github.com/sbinet/npyio
var magic = [6]byte{'\x93', 'N', 'U', 'M', 'P', 'Y'}

const (
	majorVersion = byte(2)
	minorVersion = byte(0)
	// The data must start on a multiple of this offset.
	headerAlign = 64
)

func writeHeader(w io.Writer, shape []int) error {
	if err := binary.Write(w, order, magic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, order, majorVersion); err != nil {
		return err
	}
	if err := binary.Write(w, order, minorVersion); err != nil {
		return err
	}

	buf := new(bytes.Buffer)
	fmt.Fprintf(buf,
		"{'descr': '<f8', 'fortran_order': False, 'shape': %s, }",
		shapeString(shape))

	// Magic, version and the 4-byte header length precede the header.
	var hdrSize = len(magic) + 2 + 4
	padding := (headerAlign - (hdrSize+buf.Len()+1)%headerAlign) % headerAlign
	if _, err := buf.Write(bytes.Repeat([]byte{'\x20'}, padding)); err != nil {
		return err
	}
	if _, err := buf.Write([]byte{'\n'}); err != nil {
		return err
	}

	buflen := int64(buf.Len())
	if err := binary.Write(w, order, uint32(buflen)); err != nil {
		return err
	}

	if n, err := io.Copy(w, buf); err != nil {
		return err
	} else if n < buflen {
		return io.ErrShortWrite
	}

	return nil
}

func shapeString(shape []int) string {
	if len(shape) == 1 {
		return fmt.Sprintf("(%d,)", shape[0])
	}

	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = fmt.Sprint(d)
	}
	return "(" + strings.Join(dims, ", ") + ")"
}
