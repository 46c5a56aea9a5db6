// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"
	"math"
)

// WindowKind names a window function.
type WindowKind string

const (
	Hann        WindowKind = "hann"
	Hamming     WindowKind = "hamming"
	Blackman    WindowKind = "blackman"
	Bartlett    WindowKind = "bartlett"
	Rectangular WindowKind = "rectangular"
)

// WindowKinds lists the supported window functions.
func WindowKinds() []WindowKind {
	return []WindowKind{Hann, Hamming, Blackman, Bartlett, Rectangular}
}

// Valid reports whether k is a supported window.
func (k WindowKind) Valid() bool {
	for _, w := range WindowKinds() {
		if w == k {
			return true
		}
	}
	return false
}

// Window returns the periodic window of length n, the form used for
// spectral analysis (the symmetric window of length n+1 without its last
// point). A window of length 1 is [1].
func Window(kind WindowKind, n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: window length %d", ErrInvalidArgument, n)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown window %q", ErrInvalidArgument, kind)
	}
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w, nil
	}
	N := float64(n)
	for i := range w {
		x := float64(i)
		switch kind {
		case Hann:
			w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*x/N)
		case Hamming:
			w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*x/N)
		case Blackman:
			w[i] = 0.42 - 0.5*math.Cos(2*math.Pi*x/N) + 0.08*math.Cos(4*math.Pi*x/N)
		case Bartlett:
			w[i] = 1 - math.Abs(2*x/N-1)
		case Rectangular:
			w[i] = 1
		}
	}
	return w, nil
}

// PadWindow centers w inside a zero window of length n.
func PadWindow(w []float64, n int) []float64 {
	out := make([]float64, n)
	left := (n - len(w)) / 2
	copy(out[left:], w)
	return out
}

// SquareSum returns the sum of w[i]^2.
func SquareSum(w []float64) float64 {
	var s float64
	for _, v := range w {
		s += v * v
	}
	return s
}
