// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"slices"

	"github.com/ik5/audxf/buffer"
)

// realInput checks that x is a real buffer of at least minRank dimensions
// and returns its shape and a copy of its data.
func realInput(k Kind, x *buffer.Buffer, minRank int) ([]int, []float64, error) {
	if x == nil {
		return nil, nil, inputError(k, "nil buffer")
	}
	if x.IsComplex() {
		return nil, nil, inputError(k, "expected a real buffer, got %s", x.DType())
	}
	if x.Rank() < minRank {
		return nil, nil, inputError(k, "expected at least %d dimensions, got shape %v", minRank, x.Shape())
	}
	return x.Shape(), x.Floats(), nil
}

// complexInput accepts a complex buffer (..., freq, time) or the same data
// in pseudo-complex layout (..., freq, time, 2). It returns the complex
// shape, the values and whether the input was pseudo-complex.
func complexInput(k Kind, x *buffer.Buffer, minRank int) ([]int, []complex128, bool, error) {
	if x == nil {
		return nil, nil, false, inputError(k, "nil buffer")
	}
	pseudo := !x.IsComplex()
	if pseudo && !buffer.IsPseudoComplex(x) {
		return nil, nil, false, inputError(k, "expected a complex or pseudo-complex buffer, got %s %v", x.DType(), x.Shape())
	}
	c, err := buffer.ToComplex(x)
	if err != nil {
		return nil, nil, false, wrapInput(k, err)
	}
	if c.Rank() < minRank {
		return nil, nil, false, inputError(k, "expected at least %d complex dimensions, got shape %v", minRank, c.Shape())
	}
	return c.Shape(), c.Complexes(), pseudo, nil
}

// realOutput builds a real buffer with the component precision of in.
func realOutput(in buffer.DType, shape []int, data []float64) (*buffer.Buffer, error) {
	return buffer.New(in.ToReal(), shape, data)
}

// complexOutput builds a complex buffer with the component precision of
// in, converted back to pseudo-complex layout when pseudo is set.
func complexOutput(in buffer.DType, shape []int, data []complex128, pseudo bool) (*buffer.Buffer, error) {
	out, err := buffer.NewComplex(in.ToComplex(), shape, data)
	if err != nil || !pseudo {
		return out, err
	}
	return buffer.ToPseudoComplex(out)
}

// split separates the last n dimensions of shape from the leading ones.
func split(shape []int, n int) ([]int, []int) {
	cut := len(shape) - n
	return slices.Clone(shape[:cut]), slices.Clone(shape[cut:])
}

func product(dims []int) int {
	p := 1
	for _, d := range dims {
		p *= d
	}
	return p
}

// withDims returns lead followed by dims in a new slice.
func withDims(lead []int, dims ...int) []int {
	out := make([]int, 0, len(lead)+len(dims))
	out = append(out, lead...)
	return append(out, dims...)
}

// applyMatrix computes out[m][t] = sum_f fb[f][m] * x[f][t] for every
// [freqs][time] matrix packed in x.
func applyMatrix(x []float64, batch, freqs, frames int, fb [][]float64) []float64 {
	nOut := len(fb[0])
	out := make([]float64, batch*nOut*frames)
	for b := range batch {
		in := x[b*freqs*frames : (b+1)*freqs*frames]
		dst := out[b*nOut*frames : (b+1)*nOut*frames]
		for f := range freqs {
			row := fb[f]
			src := in[f*frames : (f+1)*frames]
			for m, w := range row {
				o := dst[m*frames : (m+1)*frames]
				for t, v := range src {
					o[t] += w * v
				}
			}
		}
	}
	return out
}
