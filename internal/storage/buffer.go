package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrBufferFull    = errors.New("storage: output buffer is full")
	ErrRowWidth      = errors.New("storage: row width does not match buffer")
	ErrUnknownFormat = errors.New("storage: unknown output format")
)

// Format selects how an OutputBuffer serializes its rows.
type Format string

const (
	CSV Format = "csv"
	NPY Format = "npy"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case CSV, NPY:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// OutputBuffer is a fixed-capacity row accumulator. Rows are appended in order
// and written to the backing file only when Flush is called.
type OutputBuffer struct {
	filename string
	format   Format
	rows     int
	width    int
	buf      *mat.Dense
	index    int
}

func NewOutputBuffer(filename string, format Format, rows, width int) (*OutputBuffer, error) {
	if rows < 1 || width < 1 {
		return nil, fmt.Errorf("storage: buffer shape (%d, %d) must be positive", rows, width)
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	return &OutputBuffer{
		filename: filename,
		format:   format,
		rows:     rows,
		width:    width,
		buf:      mat.NewDense(rows, width, nil),
	}, nil
}

func (b *OutputBuffer) Filename() string { return b.filename }
func (b *OutputBuffer) Format() Format   { return b.format }
func (b *OutputBuffer) Capacity() int    { return b.rows }
func (b *OutputBuffer) Width() int       { return b.width }

// Index is the position the next row will be written to.
func (b *OutputBuffer) Index() int { return b.index }

// WriteRow copies row into the next free slot. Writing to a full buffer is a
// sizing bug upstream and is reported, never dropped.
func (b *OutputBuffer) WriteRow(row []float64) error {
	if b.index >= b.rows {
		return fmt.Errorf("%w: %s holds %d rows", ErrBufferFull, b.filename, b.rows)
	}
	if len(row) != b.width {
		return fmt.Errorf("%w: got %d values, want %d", ErrRowWidth, len(row), b.width)
	}
	b.buf.SetRow(b.index, row)
	b.index++
	return nil
}

// Row returns a copy of row i of the whole preallocated buffer.
func (b *OutputBuffer) Row(i int) []float64 {
	return mat.Row(nil, i, b.buf)
}

// Filled returns copies of the rows written so far.
func (b *OutputBuffer) Filled() [][]float64 {
	out := make([][]float64, b.index)
	for i := range out {
		out[i] = mat.Row(nil, i, b.buf)
	}
	return out
}

// Flush writes the filled rows to the backing file, creating parent
// directories as needed. Each call overwrites the previous file.
func (b *OutputBuffer) Flush() error {
	if dir := filepath.Dir(b.filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(b.filename)
	if err != nil {
		return err
	}
	defer f.Close()

	rows := b.Filled()
	switch b.format {
	case CSV:
		err = WriteCSV(f, rows)
	case NPY:
		err = WriteNPY(f, rows, b.width)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", b.filename, err)
	}
	return f.Close()
}
