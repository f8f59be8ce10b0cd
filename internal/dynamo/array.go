package dynamo

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Array is a row-major float64 container of rank 1 or 2. Publishers share
// *Array values so subscribers always read the live data.
type Array struct {
	data  []float64
	shape []int
}

// NewArray allocates a zeroed array. One dimension gives a vector, two a matrix.
func NewArray(shape ...int) *Array {
	if len(shape) == 0 || len(shape) > 2 {
		panic(fmt.Sprintf("dynamo: array rank must be 1 or 2, got %d", len(shape)))
	}
	n := 1
	for _, d := range shape {
		if d < 0 {
			panic(fmt.Sprintf("dynamo: negative array dimension %d", d))
		}
		n *= d
	}
	return &Array{data: make([]float64, n), shape: append([]int(nil), shape...)}
}

// Linspace returns n evenly spaced values over [start, stop].
func Linspace(start, stop float64, n int) *Array {
	a := NewArray(n)
	switch n {
	case 0:
	case 1:
		a.data[0] = start
	default:
		floats.Span(a.data, start, stop)
	}
	return a
}

// Data returns the live backing slice.
func (a *Array) Data() []float64 { return a.data }

func (a *Array) Rows() int {
	if len(a.shape) == 1 {
		return 1
	}
	return a.shape[0]
}

func (a *Array) RowWidth() int {
	return a.shape[len(a.shape)-1]
}

// Row returns a live view of row i. A vector has the single row 0.
func (a *Array) Row(i int) []float64 {
	if i < 0 || i >= a.Rows() {
		panic(fmt.Sprintf("dynamo: row %d out of range [0, %d)", i, a.Rows()))
	}
	w := a.RowWidth()
	return a.data[i*w : (i+1)*w : (i+1)*w]
}

// CopyFrom overwrites the array contents in place.
func (a *Array) CopyFrom(src []float64) {
	copy(a.data, src)
}

// Recordable is a published value a diagnostic can sample row by row.
type Recordable interface {
	Rows() int
	RowWidth() int
	Row(i int) []float64
}
