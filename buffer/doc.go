// SPDX-License-Identifier: EPL-2.0

// Package buffer provides the numeric buffer that flows through every
// transform.
//
// A Buffer has an element type (DType), an immutable shape and contiguous
// row-major storage:
//
//	b, err := buffer.New(buffer.Float32, []int{2, 4}, samples)
//	if errors.Is(err, buffer.ErrShapeMismatch) {
//	    // len(samples) != 8
//	}
//
// # Complex values
//
// Complex data can be held natively (Complex64, Complex128) or in the
// pseudo-complex layout: a real buffer whose last axis has size 2 and holds
// [real, imaginary] pairs. ToComplex and ToPseudoComplex convert between
// the two without changing any value:
//
//	c, _ := buffer.ToComplex(pseudo)    // (..., 2) float32 -> (...) complex64
//	p, _ := buffer.ToPseudoComplex(c)   // and back
//
// # Precision
//
// Values are held as float64/complex128 internally. Buffers of 32-bit types
// round every value to single precision on construction, so results match
// what a single precision pipeline would produce at its outputs.
package buffer
