// SPDX-License-Identifier: EPL-2.0

package consistency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/transform"
)

// ErrConsistencyMismatch is matched by every failure where a replayed
// transform disagrees with the original.
var ErrConsistencyMismatch = errors.New("consistency mismatch")

// Divergence classifies a MismatchError.
type Divergence string

const (
	DivergeShape  Divergence = "shape"
	DivergeDType  Divergence = "dtype"
	DivergeValues Divergence = "values"
)

// MismatchError describes where the direct and replayed outputs disagree.
// For value divergences Index, Position, Direct and Replayed refer to the
// element with the largest absolute deviation among those outside the
// tolerance.
type MismatchError struct {
	Kind       transform.Kind
	Divergence Divergence
	Tolerance  Tolerance

	DirectShape   []int
	ReplayedShape []int
	DirectDType   buffer.DType
	ReplayedDType buffer.DType

	MaxAbs     float64
	MaxRel     float64
	Mismatched int
	Index      int
	Position   []int
	Direct     complex128
	Replayed   complex128
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	var buf strings.Builder

	buf.WriteString(ErrConsistencyMismatch.Error())
	if e.Kind != "" {
		fmt.Fprintf(&buf, " in %s", e.Kind)
	}
	switch e.Divergence {
	case DivergeShape:
		fmt.Fprintf(&buf, ": shape %v, replayed %v", e.DirectShape, e.ReplayedShape)
	case DivergeDType:
		fmt.Fprintf(&buf, ": dtype %s, replayed %s", e.DirectDType, e.ReplayedDType)
	default:
		fmt.Fprintf(&buf, ": %d elements outside abs=%g rel=%g; max abs deviation %g, max rel deviation %g at index %d %v (direct %v, replayed %v)",
			e.Mismatched, e.Tolerance.Abs, e.Tolerance.Rel, e.MaxAbs, e.MaxRel,
			e.Index, e.Position, formatValue(e.Direct, e.DirectDType), formatValue(e.Replayed, e.DirectDType))
	}
	return buf.String()
}

// Unwrap makes errors.Is(err, ErrConsistencyMismatch) hold.
func (e *MismatchError) Unwrap() error { return ErrConsistencyMismatch }

func formatValue(v complex128, d buffer.DType) string {
	if d.IsComplex() {
		return fmt.Sprint(v)
	}
	return fmt.Sprint(real(v))
}
