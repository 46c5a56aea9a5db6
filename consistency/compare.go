// SPDX-License-Identifier: EPL-2.0

package consistency

import (
	"math"
	"slices"

	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/transform"
)

// Tolerance bounds the element-wise deviation between two outputs. An
// element passes when |direct - replayed| <= Abs + Rel*|direct|. The zero
// Tolerance demands exact equality.
type Tolerance struct {
	Abs float64
	Rel float64
}

// Exact is the zero Tolerance.
func Exact() Tolerance { return Tolerance{} }

// DefaultTolerance is the tolerance Check uses for kind k. Every kind is
// deterministic and compares exactly except GriffinLim, whose iterations
// are allowed 1e-5.
func DefaultTolerance(k transform.Kind) Tolerance {
	if k == transform.KindGriffinLim {
		return Tolerance{Abs: 1e-5, Rel: 1e-5}
	}
	return Exact()
}

// toleranceFor widens DefaultTolerance over the steps of a Sequential.
func toleranceFor(cfg transform.Config) Tolerance {
	seq, ok := cfg.(transform.SequentialConfig)
	if !ok {
		return DefaultTolerance(cfg.Kind())
	}
	var tol Tolerance
	for _, step := range seq.Steps {
		if step == nil {
			continue
		}
		st := toleranceFor(step)
		tol.Abs = max(tol.Abs, st.Abs)
		tol.Rel = max(tol.Rel, st.Rel)
	}
	return tol
}

// Compare checks direct and replayed element-wise. It returns nil when they
// agree within tol and a *MismatchError otherwise. NaNs at the same
// position agree; a NaN against a number does not.
func Compare(direct, replayed *buffer.Buffer, tol Tolerance) error {
	if !slices.Equal(direct.Shape(), replayed.Shape()) {
		return &MismatchError{
			Divergence:    DivergeShape,
			Tolerance:     tol,
			DirectShape:   direct.Shape(),
			ReplayedShape: replayed.Shape(),
			DirectDType:   direct.DType(),
			ReplayedDType: replayed.DType(),
		}
	}
	if direct.DType() != replayed.DType() {
		return &MismatchError{
			Divergence:    DivergeDType,
			Tolerance:     tol,
			DirectShape:   direct.Shape(),
			ReplayedShape: replayed.Shape(),
			DirectDType:   direct.DType(),
			ReplayedDType: replayed.DType(),
		}
	}

	a, b := values(direct), values(replayed)
	e := &MismatchError{
		Divergence:    DivergeValues,
		Tolerance:     tol,
		DirectShape:   direct.Shape(),
		ReplayedShape: replayed.Shape(),
		DirectDType:   direct.DType(),
		ReplayedDType: replayed.DType(),
		Index:         -1,
	}
	worst := -1.0
	for i := range a {
		abs, rel, ok := deviation(a[i], b[i], tol)
		e.MaxAbs = max(e.MaxAbs, abs)
		e.MaxRel = max(e.MaxRel, rel)
		if ok {
			continue
		}
		e.Mismatched++
		if abs > worst {
			worst = abs
			e.Index = i
		}
	}
	if e.Mismatched == 0 {
		return nil
	}
	e.Position = unravel(e.Index, e.DirectShape)
	e.Direct, e.Replayed = a[e.Index], b[e.Index]
	return e
}

func values(b *buffer.Buffer) []complex128 {
	if b.IsComplex() {
		return b.Complexes()
	}
	re := b.Floats()
	out := make([]complex128, len(re))
	for i, v := range re {
		out[i] = complex(v, 0)
	}
	return out
}

// deviation reports the absolute and relative deviation of y from x and
// whether it lies within tol. Real and imaginary parts are measured
// separately and the larger deviation counts.
func deviation(x, y complex128, tol Tolerance) (abs, rel float64, ok bool) {
	ar, rr, okr := partDeviation(real(x), real(y), tol)
	ai, ri, oki := partDeviation(imag(x), imag(y), tol)
	return max(ar, ai), max(rr, ri), okr && oki
}

func partDeviation(x, y float64, tol Tolerance) (abs, rel float64, ok bool) {
	switch {
	case x == y:
		return 0, 0, true
	case math.IsNaN(x) && math.IsNaN(y):
		return 0, 0, true
	case math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0):
		return math.Inf(1), math.Inf(1), false
	}
	abs = math.Abs(x - y)
	if x != 0 {
		rel = abs / math.Abs(x)
	} else {
		rel = math.Inf(1)
	}
	return abs, rel, abs <= tol.Abs+tol.Rel*math.Abs(x)
}

// unravel turns a row-major flat index into a position.
func unravel(index int, shape []int) []int {
	pos := make([]int, len(shape))
	for d := len(shape) - 1; d >= 0; d-- {
		if shape[d] == 0 {
			continue
		}
		pos[d] = index % shape[d]
		index /= shape[d]
	}
	return pos
}
