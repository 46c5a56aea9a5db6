// SPDX-License-Identifier: EPL-2.0

package buffer

import (
	"fmt"
	"slices"
)

// IsPseudoComplex reports whether b is a real buffer laid out as
// pseudo-complex values: a trailing axis of size 2 holding [real, imag].
func IsPseudoComplex(b *Buffer) bool {
	return !b.IsComplex() && b.Rank() > 0 && b.Dim(-1) == 2
}

// ToComplex reinterprets a pseudo-complex buffer (..., 2) as a complex
// buffer (...). A buffer that is already complex is returned as a copy.
func ToComplex(b *Buffer) (*Buffer, error) {
	if b.IsComplex() {
		return b.Clone(), nil
	}
	if !IsPseudoComplex(b) {
		return nil, fmt.Errorf("%w: pseudo-complex layout needs a trailing axis of 2, got %v", ErrShapeMismatch, b.shape)
	}
	out := make([]complex128, len(b.re)/2)
	for i := range out {
		out[i] = complex(b.re[2*i], b.re[2*i+1])
	}
	return NewComplex(b.dtype.ToComplex(), b.shape[:len(b.shape)-1], out)
}

// ToPseudoComplex reinterprets a complex buffer (...) as a real buffer
// (..., 2). A buffer already in pseudo-complex layout is returned as a copy.
func ToPseudoComplex(b *Buffer) (*Buffer, error) {
	if !b.IsComplex() {
		if IsPseudoComplex(b) {
			return b.Clone(), nil
		}
		return nil, fmt.Errorf("%w: %s buffer %v is neither complex nor pseudo-complex", ErrShapeMismatch, b.dtype, b.shape)
	}
	out := make([]float64, 2*len(b.cx))
	for i, v := range b.cx {
		out[2*i] = real(v)
		out[2*i+1] = imag(v)
	}
	return New(b.dtype.ToReal(), append(slices.Clone(b.shape), 2), out)
}
