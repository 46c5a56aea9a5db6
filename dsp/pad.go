// SPDX-License-Identifier: EPL-2.0

package dsp

import "fmt"

// PadMode selects how a signal is extended past its ends.
type PadMode string

const (
	PadReflect   PadMode = "reflect"
	PadConstant  PadMode = "constant"
	PadReplicate PadMode = "replicate"
)

// Valid reports whether m is a supported padding mode.
func (m PadMode) Valid() bool {
	return m == PadReflect || m == PadConstant || m == PadReplicate
}

// Pad extends x by left and right samples. Constant padding uses zeros;
// reflect mirrors around the edge samples without repeating them and so
// needs left and right smaller than len(x).
func Pad(x []float64, left, right int, mode PadMode) ([]float64, error) {
	if left < 0 || right < 0 {
		return nil, fmt.Errorf("%w: negative padding", ErrInvalidArgument)
	}
	n := len(x)
	switch mode {
	case PadReflect:
		if left >= n || right >= n {
			return nil, fmt.Errorf("%w: reflect padding of %d/%d needs more than %d samples", ErrInvalidArgument, left, right, n)
		}
	case PadReplicate:
		if n == 0 && left+right > 0 {
			return nil, fmt.Errorf("%w: cannot replicate an empty signal", ErrInvalidArgument)
		}
	case PadConstant:
	default:
		return nil, fmt.Errorf("%w: unknown pad mode %q", ErrInvalidArgument, mode)
	}

	out := make([]float64, left+n+right)
	copy(out[left:], x)
	for i := range left {
		switch mode {
		case PadReflect:
			out[i] = x[left-i]
		case PadReplicate:
			out[i] = x[0]
		}
	}
	for i := range right {
		switch mode {
		case PadReflect:
			out[left+n+i] = x[n-2-i]
		case PadReplicate:
			out[left+n+i] = x[n-1]
		}
	}
	return out, nil
}
