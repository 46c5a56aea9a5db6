// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"math"

	"github.com/ik5/audxf/dsp"
)

// stftPlan is the framing shared by every STFT based transform.
type stftPlan struct {
	dsp.STFTConfig
	// pad is constant padding added to both ends of the signal before the
	// transform and removed after the inverse.
	pad        int
	normalized bool
}

// newSTFTPlan resolves the derived framing parameters. A zero winLength
// means nFFT and a zero hopLength means winLength/hopDiv.
func newSTFTPlan(k Kind, nFFT, winLength, hopLength, pad int, window dsp.WindowKind, hopDiv int, center bool, padMode dsp.PadMode, normalized bool) (*stftPlan, error) {
	if nFFT <= 0 {
		return nil, configError(k, "n_fft=%d must be positive", nFFT)
	}
	if winLength == 0 {
		winLength = nFFT
	}
	if winLength < 0 || winLength > nFFT {
		return nil, configError(k, "win_length=%d must be in [1, n_fft=%d]", winLength, nFFT)
	}
	if hopLength == 0 {
		hopLength = winLength / hopDiv
	}
	if hopLength <= 0 {
		return nil, configError(k, "hop_length=%d must be positive", hopLength)
	}
	if pad < 0 {
		return nil, configError(k, "pad=%d must not be negative", pad)
	}
	if center && !padMode.Valid() {
		return nil, configError(k, "unknown pad_mode %q", padMode)
	}
	w, err := dsp.Window(window, winLength)
	if err != nil {
		return nil, wrapConfig(k, err)
	}
	return &stftPlan{
		STFTConfig: dsp.STFTConfig{
			NFFT:      nFFT,
			HopLength: hopLength,
			Window:    w,
			Center:    center,
			PadMode:   padMode,
		},
		pad:        pad,
		normalized: normalized,
	}, nil
}

// frameCount is the number of frames forward yields for n samples.
func (p *stftPlan) frameCount(n int) int {
	return p.Frames(n + 2*p.pad)
}

// forward transforms batch signals of n samples packed in data and returns
// the spectrograms packed as [batch][bins][frames].
func (p *stftPlan) forward(k Kind, data []float64, batch, n int) ([]complex128, int, error) {
	frames := p.frameCount(n)
	bins := p.Bins()
	out := make([]complex128, 0, batch*bins*frames)
	for b := range batch {
		row := data[b*n : (b+1)*n]
		if p.pad > 0 {
			padded, err := dsp.Pad(row, p.pad, p.pad, dsp.PadConstant)
			if err != nil {
				return nil, 0, wrapInput(k, err)
			}
			row = padded
		}
		spec, _, err := dsp.STFT(row, p.STFTConfig)
		if err != nil {
			return nil, 0, wrapInput(k, err)
		}
		out = append(out, spec...)
	}
	if p.normalized {
		scale := complex(1/math.Sqrt(dsp.SquareSum(p.Window)), 0)
		for i := range out {
			out[i] *= scale
		}
	}
	return out, frames, nil
}

// inverse reconstructs batch signals from spectrograms packed as
// [batch][bins][frames]. A positive length fixes the output length.
func (p *stftPlan) inverse(k Kind, spec []complex128, batch, frames, length int) ([]float64, int, error) {
	bins := p.Bins()
	if p.normalized {
		scale := complex(math.Sqrt(dsp.SquareSum(p.Window)), 0)
		scaled := make([]complex128, len(spec))
		for i, v := range spec {
			scaled[i] = v * scale
		}
		spec = scaled
	}
	target := 0
	if length > 0 {
		target = length + 2*p.pad
	}

	var out []float64
	n := -1
	for b := range batch {
		y, err := dsp.ISTFT(spec[b*bins*frames:(b+1)*bins*frames], frames, p.STFTConfig, target)
		if err != nil {
			return nil, 0, wrapInput(k, err)
		}
		if p.pad > 0 {
			if len(y) < 2*p.pad {
				return nil, 0, inputError(k, "reconstructed %d samples, fewer than the padding", len(y))
			}
			y = y[p.pad : len(y)-p.pad]
		}
		if n < 0 {
			n = len(y)
			out = make([]float64, 0, batch*n)
		}
		out = append(out, y...)
	}
	if n < 0 {
		n = p.naturalLength(frames, length)
	}
	return out, n, nil
}

// naturalLength is the signal length inverse produces for frames frames.
func (p *stftPlan) naturalLength(frames, length int) int {
	if length > 0 {
		return length
	}
	n := p.NFFT + p.HopLength*(frames-1)
	if p.Center {
		n -= 2 * (p.NFFT / 2)
	}
	return max(n-2*p.pad, 0)
}
