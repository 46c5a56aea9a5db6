// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"math/cmplx"

	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/dsp"
)

// SlidingWindowCmnConfig configures SlidingWindowCmn.
type SlidingWindowCmnConfig struct {
	CMNWindow    int  `msgpack:"cmn_window" yaml:"cmn_window" json:"cmn_window"`
	MinCMNWindow int  `msgpack:"min_cmn_window" yaml:"min_cmn_window" json:"min_cmn_window"`
	Center       bool `msgpack:"center" yaml:"center" json:"center"`
	NormVars     bool `msgpack:"norm_vars" yaml:"norm_vars" json:"norm_vars"`
}

func DefaultSlidingWindowCmnConfig() SlidingWindowCmnConfig {
	return SlidingWindowCmnConfig{CMNWindow: 600, MinCMNWindow: 100}
}

func (SlidingWindowCmnConfig) Kind() Kind { return KindSlidingWindowCmn }

func (c SlidingWindowCmnConfig) Validate() error {
	if c.CMNWindow <= 0 || c.MinCMNWindow <= 0 {
		return configError(KindSlidingWindowCmn, "cmn_window=%d and min_cmn_window=%d must be positive", c.CMNWindow, c.MinCMNWindow)
	}
	return nil
}

// SlidingWindowCmn normalises features (..., time, feature) by the mean,
// and optionally the standard deviation, of a window of frames.
type SlidingWindowCmn struct {
	cfg SlidingWindowCmnConfig
}

func (s *SlidingWindowCmn) Kind() Kind     { return KindSlidingWindowCmn }
func (s *SlidingWindowCmn) Config() Config { return s.cfg }

func (s *SlidingWindowCmn) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	shape, data, err := realInput(KindSlidingWindowCmn, x, 2)
	if err != nil {
		return nil, err
	}
	lead, tail := split(shape, 2)
	frames, feats := tail[0], tail[1]
	cfg := dsp.CMNConfig{
		Window:    s.cfg.CMNWindow,
		MinWindow: s.cfg.MinCMNWindow,
		Center:    s.cfg.Center,
		NormVars:  s.cfg.NormVars,
	}
	size := frames * feats
	out := make([]float64, 0, len(data))
	for b := range product(lead) {
		part, err := dsp.SlidingWindowCMN(data[b*size:(b+1)*size], frames, feats, cfg)
		if err != nil {
			return nil, wrapInput(KindSlidingWindowCmn, err)
		}
		out = append(out, part...)
	}
	return realOutput(x.DType(), shape, out)
}

// ComputeDeltasConfig configures ComputeDeltas.
type ComputeDeltasConfig struct {
	WinLength int `msgpack:"win_length" yaml:"win_length" json:"win_length"`
	// Mode is the edge padding; only "replicate" is supported.
	Mode dsp.PadMode `msgpack:"mode" yaml:"mode" json:"mode"`
}

func DefaultComputeDeltasConfig() ComputeDeltasConfig {
	return ComputeDeltasConfig{WinLength: 5, Mode: dsp.PadReplicate}
}

func (ComputeDeltasConfig) Kind() Kind { return KindComputeDeltas }

func (c ComputeDeltasConfig) Validate() error {
	if c.WinLength < 3 {
		return configError(KindComputeDeltas, "win_length=%d must be at least 3", c.WinLength)
	}
	if c.Mode != dsp.PadReplicate {
		return configError(KindComputeDeltas, "mode %q, only %q is supported", c.Mode, dsp.PadReplicate)
	}
	return nil
}

// ComputeDeltas computes regression deltas of (..., freq, time) along the
// time axis.
type ComputeDeltas struct {
	cfg ComputeDeltasConfig
}

func (d *ComputeDeltas) Kind() Kind     { return KindComputeDeltas }
func (d *ComputeDeltas) Config() Config { return d.cfg }

func (d *ComputeDeltas) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	shape, data, err := realInput(KindComputeDeltas, x, 1)
	if err != nil {
		return nil, err
	}
	cols := shape[len(shape)-1]
	rows := product(shape[:len(shape)-1])
	out, err := dsp.Deltas(data, rows, cols, d.cfg.WinLength)
	if err != nil {
		return nil, wrapInput(KindComputeDeltas, err)
	}
	return realOutput(x.DType(), shape, out)
}

// SpectralCentroidConfig configures SpectralCentroid.
type SpectralCentroidConfig struct {
	SampleRate int            `msgpack:"sample_rate" yaml:"sample_rate" json:"sample_rate"`
	NFFT       int            `msgpack:"n_fft" yaml:"n_fft" json:"n_fft"`
	WinLength  int            `msgpack:"win_length" yaml:"win_length" json:"win_length"`
	HopLength  int            `msgpack:"hop_length" yaml:"hop_length" json:"hop_length"`
	Pad        int            `msgpack:"pad" yaml:"pad" json:"pad"`
	Window     dsp.WindowKind `msgpack:"window" yaml:"window" json:"window"`
}

func DefaultSpectralCentroidConfig() SpectralCentroidConfig {
	return SpectralCentroidConfig{SampleRate: 16000, NFFT: 400, Window: dsp.Hann}
}

func (SpectralCentroidConfig) Kind() Kind { return KindSpectralCentroid }

func (c SpectralCentroidConfig) Validate() error {
	if c.SampleRate <= 0 {
		return configError(KindSpectralCentroid, "sample_rate=%d must be positive", c.SampleRate)
	}
	_, err := c.plan()
	return err
}

func (c SpectralCentroidConfig) plan() (*stftPlan, error) {
	return newSTFTPlan(KindSpectralCentroid, c.NFFT, c.WinLength, c.HopLength, c.Pad, c.Window, 2, true, dsp.PadReflect, false)
}

// SpectralCentroid computes the magnitude weighted mean frequency of every
// frame: (..., time) to (..., frames). Silent frames give NaN.
type SpectralCentroid struct {
	cfg   SpectralCentroidConfig
	plan  *stftPlan
	freqs []float64
}

func newSpectralCentroid(cfg SpectralCentroidConfig) (*SpectralCentroid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	plan, err := cfg.plan()
	if err != nil {
		return nil, err
	}
	return &SpectralCentroid{
		cfg:   cfg,
		plan:  plan,
		freqs: dsp.Linspace(0, float64(cfg.SampleRate/2), plan.Bins()),
	}, nil
}

func (s *SpectralCentroid) Kind() Kind     { return KindSpectralCentroid }
func (s *SpectralCentroid) Config() Config { return s.cfg }

func (s *SpectralCentroid) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	shape, data, err := realInput(KindSpectralCentroid, x, 1)
	if err != nil {
		return nil, err
	}
	lead, tail := split(shape, 1)
	batch := product(lead)
	spec, frames, err := s.plan.forward(KindSpectralCentroid, data, batch, tail[0])
	if err != nil {
		return nil, err
	}
	bins := s.plan.Bins()
	out := make([]float64, batch*frames)
	for b := range batch {
		m := spec[b*bins*frames : (b+1)*bins*frames]
		for t := range frames {
			var num, den float64
			for f := range bins {
				mag := cmplx.Abs(m[f*frames+t])
				num += s.freqs[f] * mag
				den += mag
			}
			out[b*frames+t] = num / den
		}
	}
	return realOutput(x.DType(), withDims(lead, frames), out)
}
