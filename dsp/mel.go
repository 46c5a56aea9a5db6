// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"
	"math"
)

// MelScale selects the Hz to mel mapping.
type MelScale string

const (
	// MelHTK is 2595*log10(1+f/700).
	MelHTK MelScale = "htk"
	// MelSlaney is linear below 1 kHz and logarithmic above.
	MelSlaney MelScale = "slaney"
)

// FilterNorm selects the area normalisation of triangular filters.
type FilterNorm string

const (
	NormNone FilterNorm = ""
	// NormSlaney divides each triangle by its width in Hz.
	NormSlaney FilterNorm = "slaney"
)

const (
	slaneyFSp       = 200.0 / 3
	slaneyMinLogHz  = 1000.0
	slaneyMinLogMel = slaneyMinLogHz / slaneyFSp
)

var slaneyLogStep = math.Log(6.4) / 27.0

// HzToMel converts a frequency to mels.
func HzToMel(f float64, scale MelScale) float64 {
	if scale == MelHTK {
		return 2595.0 * math.Log10(1.0+f/700.0)
	}
	if f >= slaneyMinLogHz {
		return slaneyMinLogMel + math.Log(f/slaneyMinLogHz)/slaneyLogStep
	}
	return f / slaneyFSp
}

// MelToHz converts mels back to a frequency.
func MelToHz(m float64, scale MelScale) float64 {
	if scale == MelHTK {
		return 700.0 * (math.Pow(10.0, m/2595.0) - 1.0)
	}
	if m >= slaneyMinLogMel {
		return slaneyMinLogHz * math.Exp(slaneyLogStep*(m-slaneyMinLogMel))
	}
	return slaneyFSp * m
}

// Linspace returns n evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// binFrequencies returns the center frequency of each one-sided FFT bin.
func binFrequencies(nFreqs, sampleRate int) []float64 {
	return Linspace(0, float64(sampleRate/2), nFreqs)
}

// triangular builds a [nFreqs][len(pts)-2] matrix of triangular filters
// whose corners are pts.
func triangular(freqs, pts []float64) [][]float64 {
	nFilters := len(pts) - 2
	diff := make([]float64, len(pts)-1)
	for i := range diff {
		diff[i] = pts[i+1] - pts[i]
	}
	fb := make([][]float64, len(freqs))
	for j, f := range freqs {
		row := make([]float64, nFilters)
		for m := range nFilters {
			down := (f - pts[m]) / diff[m]
			up := (pts[m+2] - f) / diff[m+1]
			row[m] = math.Max(0, math.Min(down, up))
		}
		fb[j] = row
	}
	return fb
}

// MelFilterbank returns a [nFreqs][nMels] matrix mapping a linear
// frequency axis onto nMels triangular mel bands between fMin and fMax.
func MelFilterbank(nFreqs int, fMin, fMax float64, nMels, sampleRate int, norm FilterNorm, scale MelScale) ([][]float64, error) {
	if nFreqs <= 0 || nMels <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: n_freqs=%d n_mels=%d sample_rate=%d", ErrInvalidArgument, nFreqs, nMels, sampleRate)
	}
	if fMin < 0 || fMax <= fMin {
		return nil, fmt.Errorf("%w: f_min=%g f_max=%g", ErrInvalidArgument, fMin, fMax)
	}
	if scale != MelHTK && scale != MelSlaney {
		return nil, fmt.Errorf("%w: mel scale %q", ErrInvalidArgument, scale)
	}
	if norm != NormNone && norm != NormSlaney {
		return nil, fmt.Errorf("%w: filter norm %q", ErrInvalidArgument, norm)
	}

	mels := Linspace(HzToMel(fMin, scale), HzToMel(fMax, scale), nMels+2)
	pts := make([]float64, len(mels))
	for i, m := range mels {
		pts[i] = MelToHz(m, scale)
	}
	fb := triangular(binFrequencies(nFreqs, sampleRate), pts)

	if norm == NormSlaney {
		for _, row := range fb {
			for m := range row {
				row[m] *= 2.0 / (pts[m+2] - pts[m])
			}
		}
	}
	return fb, nil
}

// LinearFilterbank returns a [nFreqs][nFilters] matrix of triangular
// filters evenly spaced in Hz between fMin and fMax.
func LinearFilterbank(nFreqs int, fMin, fMax float64, nFilters, sampleRate int) ([][]float64, error) {
	if nFreqs <= 0 || nFilters <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: n_freqs=%d n_filter=%d sample_rate=%d", ErrInvalidArgument, nFreqs, nFilters, sampleRate)
	}
	if fMin < 0 || fMax <= fMin {
		return nil, fmt.Errorf("%w: f_min=%g f_max=%g", ErrInvalidArgument, fMin, fMax)
	}
	pts := Linspace(fMin, fMax, nFilters+2)
	return triangular(binFrequencies(nFreqs, sampleRate), pts), nil
}

// DCTNorm selects DCT-II scaling.
type DCTNorm string

const (
	DCTOrtho DCTNorm = "ortho"
	DCTNone  DCTNorm = ""
)

// DCTMatrix returns the [nIn][nOut] DCT-II matrix that maps nIn filter
// energies to nOut cepstral coefficients.
func DCTMatrix(nOut, nIn int, norm DCTNorm) ([][]float64, error) {
	if nOut <= 0 || nIn <= 0 || nOut > nIn {
		return nil, fmt.Errorf("%w: dct %d outputs from %d inputs", ErrInvalidArgument, nOut, nIn)
	}
	if norm != DCTOrtho && norm != DCTNone {
		return nil, fmt.Errorf("%w: dct norm %q", ErrInvalidArgument, norm)
	}
	m := make([][]float64, nIn)
	for n := range nIn {
		row := make([]float64, nOut)
		for k := range nOut {
			v := math.Cos(math.Pi / float64(nIn) * (float64(n) + 0.5) * float64(k))
			if norm == DCTNone {
				v *= 2
			} else {
				if k == 0 {
					v *= 1 / math.Sqrt2
				}
				v *= math.Sqrt(2 / float64(nIn))
			}
			row[k] = v
		}
		m[n] = row
	}
	return m, nil
}
