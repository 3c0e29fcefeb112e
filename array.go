package arrayseq

import (
	"fmt"
	"slices"

	"github.com/hupe1980/arrayseq/internal/conv"
)

// Array is a dense, row-major n-dimensional array.
//
// An element of a sequence is an Array of shape (n, common_shape...).
// Accessors return copies, so an Array handed out by a sequence never
// aliases its backing store.
type Array struct {
	buffer
	shape []int
}

// Zeros returns a zero-filled array.
func Zeros(dtype DType, shape ...int) (Array, error) {
	if !dtype.valid() {
		return Array{}, unsupported("zeros", "dtype %s", dtype)
	}
	n, err := checkShape(shape)
	if err != nil {
		return Array{}, err
	}
	return Array{buffer: newBuffer(dtype, n), shape: cloneInts(shape)}, nil
}

// FromFloat64s wraps data as a Float array. Without a shape the array is
// rank-1. The data is copied.
func FromFloat64s(data []float64, shape ...int) (Array, error) {
	return fromBuffer(buffer{dtype: Float, floats: data}, shape)
}

// FromInt64s wraps data as an Int array. Without a shape the array is rank-1.
// The data is copied.
func FromInt64s(data []int64, shape ...int) (Array, error) {
	return fromBuffer(buffer{dtype: Int, ints: data}, shape)
}

// FromBools wraps data as a Bool array. Without a shape the array is rank-1.
func FromBools(data []bool, shape ...int) (Array, error) {
	ints := make([]int64, len(data))
	for i, v := range data {
		if v {
			ints[i] = 1
		}
	}
	return fromBuffer(buffer{dtype: Bool, ints: ints}, shape)
}

// FromFloatRows builds a Float array of shape (len(rows), d). All rows must
// have length d.
func FromFloatRows(rows [][]float64) (Array, error) {
	flat, d, err := flatten(rows)
	if err != nil {
		return Array{}, err
	}
	return FromFloat64s(flat, len(rows), d)
}

// FromIntRows builds an Int array of shape (len(rows), d).
func FromIntRows(rows [][]int64) (Array, error) {
	flat, d, err := flatten(rows)
	if err != nil {
		return Array{}, err
	}
	return FromInt64s(flat, len(rows), d)
}

// ScalarArray returns a rank-0 array holding v (a Go bool, integer or float).
func ScalarArray(v any) (Array, error) {
	s, ok := scalarOf(v)
	if !ok {
		return Array{}, unsupported("scalar", "%T", v)
	}
	return Array{buffer: s.buffer(), shape: []int{}}, nil
}

func flatten[T int64 | float64](rows [][]T) ([]T, int, error) {
	if len(rows) == 0 {
		return nil, 0, nil
	}
	d := len(rows[0])
	flat := make([]T, 0, len(rows)*d)
	for i, r := range rows {
		if len(r) != d {
			return nil, 0, shapeError("rows", []int{i, d}, []int{i, len(r)})
		}
		flat = append(flat, r...)
	}
	return flat, d, nil
}

func fromBuffer(b buffer, shape []int) (Array, error) {
	if shape == nil {
		shape = []int{b.len()}
	}
	n, err := checkShape(shape)
	if err != nil {
		return Array{}, err
	}
	if n != b.len() {
		return Array{}, fmt.Errorf("%w: cannot reshape %d values into %s", ErrShapeMismatch, b.len(), formatShape(shape))
	}
	return Array{buffer: b.clone(), shape: cloneInts(shape)}, nil
}

func checkShape(shape []int) (int, error) {
	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("%w: negative dimension in %s", ErrShapeMismatch, formatShape(shape))
		}
	}
	n, err := conv.Product(shape)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
	}
	return n, nil
}

// DType returns the element type.
func (a Array) DType() DType { return a.dtype }

// Shape returns a copy of the shape.
func (a Array) Shape() []int { return cloneInts(a.shape) }

// Rank returns the number of dimensions.
func (a Array) Rank() int { return len(a.shape) }

// Len returns the size of the first dimension, or 0 for rank-0 arrays.
func (a Array) Len() int {
	if len(a.shape) == 0 {
		return 0
	}
	return a.shape[0]
}

// Size returns the number of values.
func (a Array) Size() int { return a.len() }

// Float64s returns the values converted to float64.
func (a Array) Float64s() []float64 {
	out := make([]float64, a.len())
	for i := range out {
		out[i] = a.float(i)
	}
	return out
}

// Int64s returns the values converted to int64. Floats are truncated.
func (a Array) Int64s() []int64 {
	out := make([]int64, a.len())
	for i := range out {
		out[i] = a.int(i)
	}
	return out
}

// Bools returns the truth value of every value.
func (a Array) Bools() []bool {
	out := make([]bool, a.len())
	for i := range out {
		out[i] = a.truth(i)
	}
	return out
}

// AsType returns a copy cast to dtype, with numpy assignment semantics.
func (a Array) AsType(dtype DType) Array {
	return Array{buffer: a.astype(dtype), shape: cloneInts(a.shape)}
}

// Clone returns a deep copy.
func (a Array) Clone() Array {
	return Array{buffer: a.clone(), shape: cloneInts(a.shape)}
}

// Equal reports whether both arrays have the same shape and numerically
// equal values. The dtypes may differ.
func (a Array) Equal(b Array) bool {
	if !slices.Equal(a.shape, b.shape) {
		return false
	}
	for i := range a.len() {
		if !a.valueEqual(i, b.buffer, i) {
			return false
		}
	}
	return true
}

// trailing returns the shape after the first axis.
func (a Array) trailing() []int {
	if len(a.shape) == 0 {
		return nil
	}
	return a.shape[1:]
}

func cloneInts(s []int) []int {
	if s == nil {
		return []int{}
	}
	return slices.Clone(s)
}
