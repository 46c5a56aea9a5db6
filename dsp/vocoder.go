// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"
	"math"
	"math/cmplx"
)

// PhaseAdvance returns the expected phase advance per hop for each of
// nFreqs bins: linspace(0, pi*hop, nFreqs).
func PhaseAdvance(nFreqs, hopLength int) []float64 {
	return Linspace(0, math.Pi*float64(hopLength), nFreqs)
}

// StretchedFrames is the frame count PhaseVocoder produces.
func StretchedFrames(frames int, rate float64) int {
	return int(math.Ceil(float64(frames) / rate))
}

// PhaseVocoder time-stretches a complex spectrogram laid out
// frequency-major ([nFreqs][frames] flattened) by rate. rate > 1 speeds up,
// rate < 1 slows down. It returns the stretched spectrogram and its frame
// count.
func PhaseVocoder(spec []complex128, nFreqs, frames int, rate float64, advance []float64) ([]complex128, int, error) {
	if rate <= 0 || math.IsInf(rate, 0) || math.IsNaN(rate) {
		return nil, 0, fmt.Errorf("%w: rate=%g", ErrInvalidArgument, rate)
	}
	if len(spec) != nFreqs*frames || len(advance) != nFreqs {
		return nil, 0, fmt.Errorf("%w: spectrogram of %d values for %d bins x %d frames", ErrInvalidArgument, len(spec), nFreqs, frames)
	}
	if rate == 1 {
		out := make([]complex128, len(spec))
		copy(out, spec)
		return out, frames, nil
	}

	steps := StretchedFrames(frames, rate)
	out := make([]complex128, nFreqs*steps)
	at := func(f, t int) complex128 {
		if t >= frames {
			return 0
		}
		return spec[f*frames+t]
	}

	for f := range nFreqs {
		acc := cmplx.Phase(at(f, 0))
		for i := range steps {
			s := float64(i) * rate
			idx := int(s)
			alpha := s - math.Floor(s)
			c0, c1 := at(f, idx), at(f, idx+1)

			mag := alpha*cmplx.Abs(c1) + (1-alpha)*cmplx.Abs(c0)
			out[f*steps+i] = cmplx.Rect(mag, acc)

			dphi := cmplx.Phase(c1) - cmplx.Phase(c0) - advance[f]
			dphi -= 2 * math.Pi * math.RoundToEven(dphi/(2*math.Pi))
			acc += dphi + advance[f]
		}
	}
	return out, steps, nil
}
