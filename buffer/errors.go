// SPDX-License-Identifier: EPL-2.0

package buffer

import "errors"

var (
	// ErrShapeMismatch indicates that a shape does not describe the data it is paired with.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrDType indicates an element type that the operation does not accept.
	ErrDType = errors.New("unsupported dtype")
)
