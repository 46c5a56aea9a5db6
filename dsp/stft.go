// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"
)

// envelopeFloor is the smallest window envelope value the inverse STFT
// divides by; positions below it are left as accumulated.
const envelopeFloor = 1e-11

// STFTConfig holds the framing parameters shared by STFT and ISTFT.
type STFTConfig struct {
	NFFT      int
	HopLength int
	// Window has at most NFFT points and is centered in the frame.
	Window []float64
	// Center pads the signal by NFFT/2 on both sides so that frame t is
	// centered on sample t*HopLength.
	Center  bool
	PadMode PadMode
}

func (c STFTConfig) validate() error {
	if c.NFFT <= 0 || c.HopLength <= 0 {
		return fmt.Errorf("%w: n_fft=%d hop_length=%d", ErrInvalidArgument, c.NFFT, c.HopLength)
	}
	if len(c.Window) == 0 || len(c.Window) > c.NFFT {
		return fmt.Errorf("%w: window of %d points for n_fft=%d", ErrInvalidArgument, len(c.Window), c.NFFT)
	}
	return nil
}

// Bins is the number of one-sided frequency bins, NFFT/2+1.
func (c STFTConfig) Bins() int { return c.NFFT/2 + 1 }

// Frames returns the number of frames STFT produces for n samples.
func (c STFTConfig) Frames(n int) int {
	if c.Center {
		n += 2 * (c.NFFT / 2)
	}
	if n < c.NFFT {
		return 0
	}
	return 1 + (n-c.NFFT)/c.HopLength
}

// STFT computes the one-sided short-time Fourier transform of x. The result
// is laid out frequency-major: out[f*frames+t] for bin f of frame t.
func STFT(x []float64, cfg STFTConfig) ([]complex128, int, error) {
	if err := cfg.validate(); err != nil {
		return nil, 0, err
	}
	n := cfg.NFFT
	if cfg.Center {
		padded, err := Pad(x, n/2, n/2, cfg.PadMode)
		if err != nil {
			return nil, 0, err
		}
		x = padded
	}
	if len(x) < n {
		return nil, 0, fmt.Errorf("%w: %d samples is shorter than n_fft=%d", ErrInvalidArgument, len(x), n)
	}

	window := PadWindow(cfg.Window, n)
	frames := 1 + (len(x)-n)/cfg.HopLength
	bins := cfg.Bins()
	out := make([]complex128, bins*frames)

	fft := fourier.NewFFT(n)
	seg := make([]float64, n)
	coeff := make([]complex128, bins)
	for t := range frames {
		start := t * cfg.HopLength
		for i := range n {
			seg[i] = x[start+i] * window[i]
		}
		fft.Coefficients(coeff, seg)
		for f, v := range coeff {
			out[f*frames+t] = v
		}
	}
	return out, frames, nil
}

// ISTFT inverts a one-sided STFT laid out as STFT returns it, using
// windowed overlap-add normalised by the squared window envelope.
//
// When length is positive the output is trimmed or zero padded to exactly
// length samples; otherwise its length follows from the frame count.
func ISTFT(spec []complex128, frames int, cfg STFTConfig, length int) ([]float64, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	n := cfg.NFFT
	bins := cfg.Bins()
	if frames <= 0 || len(spec) != bins*frames {
		return nil, fmt.Errorf("%w: spectrogram of %d values is not %d bins x %d frames", ErrInvalidArgument, len(spec), bins, frames)
	}

	window := PadWindow(cfg.Window, n)
	expected := n + cfg.HopLength*(frames-1)
	y := make([]float64, expected)
	env := make([]float64, expected)

	fft := fourier.NewFFT(n)
	coeff := make([]complex128, bins)
	seg := make([]float64, n)
	scale := 1 / float64(n)
	for t := range frames {
		for f := range bins {
			coeff[f] = spec[f*frames+t]
		}
		fft.Sequence(seg, coeff)
		start := t * cfg.HopLength
		for i, w := range window {
			y[start+i] += seg[i] * scale * w
			env[start+i] += w * w
		}
	}

	start := 0
	if cfg.Center {
		start = n / 2
	}
	end := expected
	switch {
	case length > 0:
		end = start + length
	case cfg.Center:
		end = expected - n/2
	}

	if end < start {
		end = start
	}
	out := make([]float64, end-start)
	for i := range out {
		j := start + i
		if j >= expected {
			break
		}
		if env[j] > envelopeFloor {
			out[i] = y[j] / env[j]
		} else {
			out[i] = y[j]
		}
	}
	return out, nil
}
