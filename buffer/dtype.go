// SPDX-License-Identifier: EPL-2.0

package buffer

import (
	"fmt"
	"strings"
)

// DType is the element type of a Buffer.
type DType uint8

const (
	Float32 DType = iota + 1
	Float64
	Complex64
	Complex128
)

var dtypeNames = map[DType]string{
	Float32:    "float32",
	Float64:    "float64",
	Complex64:  "complex64",
	Complex128: "complex128",
}

func (d DType) String() string {
	if name, ok := dtypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("dtype(%d)", uint8(d))
}

// Valid reports whether d is one of the known element types.
func (d DType) Valid() bool {
	_, ok := dtypeNames[d]
	return ok
}

// IsComplex reports whether elements are complex valued.
func (d DType) IsComplex() bool { return d == Complex64 || d == Complex128 }

// Bits is the storage width of one element.
func (d DType) Bits() int {
	switch d {
	case Float32:
		return 32
	case Float64, Complex64:
		return 64
	case Complex128:
		return 128
	}
	return 0
}

// ToComplex returns the complex type with the same component precision.
func (d DType) ToComplex() DType {
	switch d {
	case Float32:
		return Complex64
	case Float64:
		return Complex128
	}
	return d
}

// ToReal returns the real type with the same component precision.
func (d DType) ToReal() DType {
	switch d {
	case Complex64:
		return Float32
	case Complex128:
		return Float64
	}
	return d
}

// single reports whether components are stored at 32-bit precision.
func (d DType) single() bool { return d == Float32 || d == Complex64 }

// ParseDType parses names like "float32" or "complex128".
func ParseDType(s string) (DType, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for d, name := range dtypeNames {
		if name == want {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown dtype %q", ErrDType, s)
}
