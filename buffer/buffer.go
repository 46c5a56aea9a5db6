// SPDX-License-Identifier: EPL-2.0

package buffer

import (
	"fmt"
	"math"
	"slices"
)

// Buffer is an n-dimensional array of real or complex elements stored
// contiguously in row-major order.
//
// A Buffer never changes after construction. Operations that produce a
// different shape or element type return a new Buffer, and every accessor
// that exposes storage returns a copy.
type Buffer struct {
	dtype DType
	shape []int
	re    []float64
	cx    []complex128
}

// New creates a real buffer. dtype must be Float32 or Float64. Float32
// values are rounded to single precision.
func New(dtype DType, shape []int, data []float64) (*Buffer, error) {
	if !dtype.Valid() || dtype.IsComplex() {
		return nil, fmt.Errorf("%w: New needs a real dtype, got %s", ErrDType, dtype)
	}
	if err := checkShape(shape, len(data)); err != nil {
		return nil, err
	}
	b := &Buffer{dtype: dtype, shape: slices.Clone(shape), re: make([]float64, len(data))}
	if dtype.single() {
		for i, v := range data {
			b.re[i] = float64(float32(v))
		}
	} else {
		copy(b.re, data)
	}
	return b, nil
}

// NewComplex creates a complex buffer. dtype must be Complex64 or Complex128.
func NewComplex(dtype DType, shape []int, data []complex128) (*Buffer, error) {
	if !dtype.IsComplex() {
		return nil, fmt.Errorf("%w: NewComplex needs a complex dtype, got %s", ErrDType, dtype)
	}
	if err := checkShape(shape, len(data)); err != nil {
		return nil, err
	}
	b := &Buffer{dtype: dtype, shape: slices.Clone(shape), cx: make([]complex128, len(data))}
	if dtype.single() {
		for i, v := range data {
			b.cx[i] = complex128(complex64(v))
		}
	} else {
		copy(b.cx, data)
	}
	return b, nil
}

// FromFloat32 creates a Float32 buffer from single precision samples.
func FromFloat32(shape []int, data []float32) (*Buffer, error) {
	vals := make([]float64, len(data))
	for i, v := range data {
		vals[i] = float64(v)
	}
	return New(Float32, shape, vals)
}

// Zeros returns a zero-filled buffer. Like MustNew it panics, with an
// error wrapping ErrDType or ErrShapeMismatch, on an invalid dtype or a
// negative dimension.
func Zeros(dtype DType, shape ...int) *Buffer {
	if !dtype.Valid() {
		panic(fmt.Errorf("%w: %s", ErrDType, dtype))
	}
	n := numElements(shape)
	if err := checkShape(shape, n); err != nil {
		panic(err)
	}
	b := &Buffer{dtype: dtype, shape: slices.Clone(shape)}
	if dtype.IsComplex() {
		b.cx = make([]complex128, n)
	} else {
		b.re = make([]float64, n)
	}
	return b
}

// MustNew is like New but panics on error. Intended for tests and literals.
func MustNew(dtype DType, shape []int, data []float64) *Buffer {
	b, err := New(dtype, shape, data)
	if err != nil {
		panic(err)
	}
	return b
}

func checkShape(shape []int, n int) error {
	for _, d := range shape {
		if d < 0 {
			return fmt.Errorf("%w: negative dimension in %v", ErrShapeMismatch, shape)
		}
	}
	if want := numElements(shape); want != n {
		return fmt.Errorf("%w: shape %v holds %d elements, got %d", ErrShapeMismatch, shape, want, n)
	}
	return nil
}

func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func (b *Buffer) DType() DType    { return b.dtype }
func (b *Buffer) Shape() []int    { return slices.Clone(b.shape) }
func (b *Buffer) Rank() int       { return len(b.shape) }
func (b *Buffer) IsComplex() bool { return b.dtype.IsComplex() }

// Len is the total number of elements.
func (b *Buffer) Len() int {
	if b.IsComplex() {
		return len(b.cx)
	}
	return len(b.re)
}

// Dim returns the size of axis i. Negative i counts from the last axis.
// It panics when i is out of range, like a slice index.
func (b *Buffer) Dim(i int) int {
	if i < 0 {
		i += len(b.shape)
	}
	return b.shape[i]
}

// Floats returns a copy of the elements of a real buffer, or nil for a
// complex one.
func (b *Buffer) Floats() []float64 { return slices.Clone(b.re) }

// Complexes returns a copy of the elements as complex numbers. Real
// buffers are promoted with a zero imaginary part.
func (b *Buffer) Complexes() []complex128 {
	if b.IsComplex() {
		return slices.Clone(b.cx)
	}
	out := make([]complex128, len(b.re))
	for i, v := range b.re {
		out[i] = complex(v, 0)
	}
	return out
}

// At returns the element at the given index as a complex number (real
// buffers have a zero imaginary part).
func (b *Buffer) At(idx ...int) (complex128, error) {
	if len(idx) != len(b.shape) {
		return 0, fmt.Errorf("%w: index rank %d for shape %v", ErrShapeMismatch, len(idx), b.shape)
	}
	flat := 0
	for i, v := range idx {
		if v < 0 || v >= b.shape[i] {
			return 0, fmt.Errorf("%w: index %v out of range for shape %v", ErrShapeMismatch, idx, b.shape)
		}
		flat = flat*b.shape[i] + v
	}
	if b.IsComplex() {
		return b.cx[flat], nil
	}
	return complex(b.re[flat], 0), nil
}

// Reshape returns a buffer with the same elements and a new shape. One
// dimension may be -1 and is inferred.
func (b *Buffer) Reshape(shape ...int) (*Buffer, error) {
	shape = slices.Clone(shape)
	infer := -1
	known := 1
	for i, d := range shape {
		if d == -1 {
			if infer >= 0 {
				return nil, fmt.Errorf("%w: more than one inferred dimension in %v", ErrShapeMismatch, shape)
			}
			infer = i
			continue
		}
		known *= d
	}
	if infer >= 0 {
		if known == 0 || b.Len()%known != 0 {
			return nil, fmt.Errorf("%w: cannot infer dimension of %v for %d elements", ErrShapeMismatch, shape, b.Len())
		}
		shape[infer] = b.Len() / known
	}
	if err := checkShape(shape, b.Len()); err != nil {
		return nil, err
	}
	out := b.Clone()
	out.shape = shape
	return out, nil
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{
		dtype: b.dtype,
		shape: slices.Clone(b.shape),
		re:    slices.Clone(b.re),
		cx:    slices.Clone(b.cx),
	}
}

// Promote converts the buffer to dtype. Real buffers may be promoted to
// complex ones; precision may change in either direction. Complex to real
// is refused since it would drop the imaginary part.
func (b *Buffer) Promote(dtype DType) (*Buffer, error) {
	if !dtype.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrDType, dtype)
	}
	if b.IsComplex() && !dtype.IsComplex() {
		return nil, fmt.Errorf("%w: cannot convert %s to %s", ErrDType, b.dtype, dtype)
	}
	if dtype.IsComplex() {
		return NewComplex(dtype, b.shape, b.Complexes())
	}
	return New(dtype, b.shape, b.re)
}

// Equal reports whether a and b have the same dtype, shape and elements.
// NaNs in matching positions are considered equal.
func Equal(a, b *Buffer) bool {
	if a.dtype != b.dtype || !slices.Equal(a.shape, b.shape) {
		return false
	}
	same := func(x, y float64) bool {
		return x == y || (math.IsNaN(x) && math.IsNaN(y))
	}
	if a.IsComplex() {
		for i := range a.cx {
			if !same(real(a.cx[i]), real(b.cx[i])) || !same(imag(a.cx[i]), imag(b.cx[i])) {
				return false
			}
		}
		return true
	}
	for i := range a.re {
		if !same(a.re[i], b.re[i]) {
			return false
		}
	}
	return true
}

func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer(%s, %v)", b.dtype, b.shape)
}
