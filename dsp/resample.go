// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"
	"math"
)

// ResampleMethod selects the window applied to the sinc kernel.
type ResampleMethod string

const (
	SincHann   ResampleMethod = "sinc_interp_hann"
	SincKaiser ResampleMethod = "sinc_interp_kaiser"
)

// DefaultKaiserBeta is the Kaiser window shape used when none is given.
const DefaultKaiserBeta = 14.769656459379492

// SincResampler converts between two integer sample rates by band-limited
// sinc interpolation. The rates are reduced by their gcd; the kernel has one
// row per output phase and is stored only over its non-zero span.
//
// A SincResampler is read-only after construction and safe for concurrent
// use.
type SincResampler struct {
	orig, new int
	width     int
	rows      []kernelRow
}

type kernelRow struct {
	offset int
	taps   []float64
}

// NewSincResampler builds the kernel for resampling from origRate to
// newRate.
func NewSincResampler(origRate, newRate, lowpassFilterWidth int, rolloff float64, method ResampleMethod, beta float64) (*SincResampler, error) {
	if origRate <= 0 || newRate <= 0 {
		return nil, fmt.Errorf("%w: sample rates %d -> %d", ErrInvalidArgument, origRate, newRate)
	}
	if lowpassFilterWidth <= 0 {
		return nil, fmt.Errorf("%w: lowpass_filter_width=%d", ErrInvalidArgument, lowpassFilterWidth)
	}
	if rolloff <= 0 || rolloff > 1 {
		return nil, fmt.Errorf("%w: rolloff=%g", ErrInvalidArgument, rolloff)
	}
	if method != SincHann && method != SincKaiser {
		return nil, fmt.Errorf("%w: resampling method %q", ErrInvalidArgument, method)
	}

	g := gcd(origRate, newRate)
	orig, nw := origRate/g, newRate/g
	r := &SincResampler{orig: orig, new: nw}
	if orig == nw {
		return r, nil
	}

	lpw := float64(lowpassFilterWidth)
	baseFreq := float64(min(orig, nw)) * rolloff
	r.width = int(math.Ceil(lpw * float64(orig) / baseFreq))
	taps := 2*r.width + orig
	scale := baseFreq / float64(orig)
	// half-width of the non-zero region, in input samples
	reach := lpw*float64(orig)/baseFreq + 1

	var kaiserNorm float64
	if method == SincKaiser {
		kaiserNorm = besselI0(beta)
	}

	r.rows = make([]kernelRow, nw)
	for j := range nw {
		center := float64(r.width) + float64(j)*float64(orig)/float64(nw)
		lo := max(0, int(math.Floor(center-reach)))
		hi := min(taps-1, int(math.Ceil(center+reach)))
		row := kernelRow{offset: lo, taps: make([]float64, hi-lo+1)}
		for k := lo; k <= hi; k++ {
			idx := float64(k-r.width) / float64(orig)
			t := (-float64(j)/float64(nw) + idx) * baseFreq
			t = math.Max(-lpw, math.Min(lpw, t))

			var window float64
			if method == SincHann {
				c := math.Cos(t * math.Pi / lpw / 2)
				window = c * c
			} else {
				window = besselI0(beta*math.Sqrt(1-(t/lpw)*(t/lpw))) / kaiserNorm
			}

			t *= math.Pi
			sinc := 1.0
			if t != 0 {
				sinc = math.Sin(t) / t
			}
			row.taps[k-lo] = sinc * window * scale
		}
		r.rows[j] = row
	}
	return r, nil
}

// Ratio returns the reduced (orig, new) rate pair.
func (r *SincResampler) Ratio() (int, int) { return r.orig, r.new }

// OutputLength is the number of samples Resample returns for n inputs.
func (r *SincResampler) OutputLength(n int) int {
	return (r.new*n + r.orig - 1) / r.orig
}

// Resample converts one channel of samples.
func (r *SincResampler) Resample(x []float64) []float64 {
	if r.orig == r.new {
		out := make([]float64, len(x))
		copy(out, x)
		return out
	}
	n := len(x)
	padded := make([]float64, r.width+n+r.width+r.orig)
	copy(padded[r.width:], x)

	frames := n/r.orig + 1
	target := r.OutputLength(n)
	out := make([]float64, min(frames*r.new, target))
	for i := range out {
		f, j := i/r.new, i%r.new
		row := r.rows[j]
		base := f*r.orig + row.offset
		var acc float64
		for k, tap := range row.taps {
			acc += tap * padded[base+k]
		}
		out[i] = acc
	}
	return out
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// besselI0 is the zeroth order modified Bessel function of the first kind.
func besselI0(x float64) float64 {
	sum, term := 1.0, 1.0
	half := x / 2
	for k := 1; k < 500; k++ {
		term *= (half / float64(k)) * (half / float64(k))
		sum += term
		if term < sum*1e-17 {
			break
		}
	}
	return sum
}
