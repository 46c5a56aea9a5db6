// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"math"

	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/dsp"
)

// TimeStretchConfig configures TimeStretch.
type TimeStretchConfig struct {
	// HopLength defaults to n_fft/2, where n_fft = 2*(NFreq-1).
	HopLength int `msgpack:"hop_length" yaml:"hop_length" json:"hop_length"`
	NFreq     int `msgpack:"n_freq" yaml:"n_freq" json:"n_freq"`
	// FixedRate above 1 speeds up, below 1 slows down.
	FixedRate float64 `msgpack:"fixed_rate" yaml:"fixed_rate" json:"fixed_rate"`
}

func DefaultTimeStretchConfig() TimeStretchConfig {
	return TimeStretchConfig{NFreq: 201, FixedRate: 1}
}

func (TimeStretchConfig) Kind() Kind { return KindTimeStretch }

func (c TimeStretchConfig) Validate() error {
	switch {
	case c.NFreq < 2:
		return configError(KindTimeStretch, "n_freq=%d must be at least 2", c.NFreq)
	case c.HopLength < 0:
		return configError(KindTimeStretch, "hop_length=%d must not be negative", c.HopLength)
	case c.FixedRate <= 0 || math.IsInf(c.FixedRate, 0) || math.IsNaN(c.FixedRate):
		return configError(KindTimeStretch, "fixed_rate=%g must be positive", c.FixedRate)
	}
	return nil
}

func (c TimeStretchConfig) hop() int {
	if c.HopLength > 0 {
		return c.HopLength
	}
	return c.NFreq - 1
}

// TimeStretch changes the duration of complex spectrograms
// (..., n_freq, frames) with a phase vocoder, yielding
// ceil(frames/fixed_rate) frames. Pseudo-complex input gives pseudo-complex
// output holding the same values.
type TimeStretch struct {
	cfg     TimeStretchConfig
	advance []float64
}

func newTimeStretch(cfg TimeStretchConfig) (*TimeStretch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &TimeStretch{cfg: cfg, advance: dsp.PhaseAdvance(cfg.NFreq, cfg.hop())}, nil
}

func (s *TimeStretch) Kind() Kind     { return KindTimeStretch }
func (s *TimeStretch) Config() Config { return s.cfg }

func (s *TimeStretch) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	shape, spec, pseudo, err := complexInput(KindTimeStretch, x, 2)
	if err != nil {
		return nil, err
	}
	lead, tail := split(shape, 2)
	bins, frames := tail[0], tail[1]
	if bins != s.cfg.NFreq {
		return nil, inputError(KindTimeStretch, "%d frequency bins, n_freq=%d", bins, s.cfg.NFreq)
	}

	batch := product(lead)
	steps := dsp.StretchedFrames(frames, s.cfg.FixedRate)
	if s.cfg.FixedRate == 1 {
		steps = frames
	}
	out := make([]complex128, 0, batch*bins*steps)
	for b := range batch {
		part, _, err := dsp.PhaseVocoder(spec[b*bins*frames:(b+1)*bins*frames], bins, frames, s.cfg.FixedRate, s.advance)
		if err != nil {
			return nil, wrapInput(KindTimeStretch, err)
		}
		out = append(out, part...)
	}
	return complexOutput(x.DType(), withDims(lead, bins, steps), out, pseudo)
}

// PitchShiftConfig configures PitchShift.
type PitchShiftConfig struct {
	SampleRate    int            `msgpack:"sample_rate" yaml:"sample_rate" json:"sample_rate"`
	NSteps        int            `msgpack:"n_steps" yaml:"n_steps" json:"n_steps"`
	BinsPerOctave int            `msgpack:"bins_per_octave" yaml:"bins_per_octave" json:"bins_per_octave"`
	NFFT          int            `msgpack:"n_fft" yaml:"n_fft" json:"n_fft"`
	WinLength     int            `msgpack:"win_length" yaml:"win_length" json:"win_length"`
	// HopLength defaults to WinLength/4 when zero.
	HopLength int            `msgpack:"hop_length" yaml:"hop_length" json:"hop_length"`
	Window    dsp.WindowKind `msgpack:"window" yaml:"window" json:"window"`
}

func DefaultPitchShiftConfig() PitchShiftConfig {
	return PitchShiftConfig{
		SampleRate:    16000,
		BinsPerOctave: 12,
		NFFT:          512,
		Window:        dsp.Hann,
	}
}

func (PitchShiftConfig) Kind() Kind { return KindPitchShift }

func (c PitchShiftConfig) Validate() error {
	_, err := newPitchShift(c)
	return err
}

// PitchShift moves the pitch of waveforms (..., time) by n_steps steps of
// an octave divided into bins_per_octave, keeping the duration: the signal
// is time stretched by the phase vocoder and resampled back.
type PitchShift struct {
	cfg     PitchShiftConfig
	rate    float64
	plan    *stftPlan
	advance []float64
	r       *dsp.SincResampler
}

func newPitchShift(cfg PitchShiftConfig) (*PitchShift, error) {
	if cfg.SampleRate <= 0 {
		return nil, configError(KindPitchShift, "sample_rate=%d must be positive", cfg.SampleRate)
	}
	if cfg.BinsPerOctave <= 0 {
		return nil, configError(KindPitchShift, "bins_per_octave=%d must be positive", cfg.BinsPerOctave)
	}
	plan, err := newSTFTPlan(KindPitchShift, cfg.NFFT, cfg.WinLength, cfg.HopLength, 0, cfg.Window, 4, true, dsp.PadReflect, false)
	if err != nil {
		return nil, err
	}
	rate := math.Pow(2, -float64(cfg.NSteps)/float64(cfg.BinsPerOctave))
	orig := int(float64(cfg.SampleRate) / rate)
	if orig <= 0 {
		return nil, configError(KindPitchShift, "n_steps=%d is out of range", cfg.NSteps)
	}
	r, err := dsp.NewSincResampler(orig, cfg.SampleRate, 6, 0.99, dsp.SincHann, 0)
	if err != nil {
		return nil, wrapConfig(KindPitchShift, err)
	}
	return &PitchShift{
		cfg:     cfg,
		rate:    rate,
		plan:    plan,
		advance: dsp.PhaseAdvance(plan.Bins(), plan.HopLength),
		r:       r,
	}, nil
}

func (p *PitchShift) Kind() Kind     { return KindPitchShift }
func (p *PitchShift) Config() Config { return p.cfg }

func (p *PitchShift) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	shape, data, err := realInput(KindPitchShift, x, 1)
	if err != nil {
		return nil, err
	}
	lead, tail := split(shape, 1)
	n := tail[0]
	batch := product(lead)
	bins := p.plan.Bins()
	stretchLen := int(math.RoundToEven(float64(n) / p.rate))

	out := make([]float64, batch*n)
	for b := range batch {
		spec, frames, err := p.plan.forward(KindPitchShift, data[b*n:(b+1)*n], 1, n)
		if err != nil {
			return nil, err
		}
		stretched, steps, err := dsp.PhaseVocoder(spec, bins, frames, p.rate, p.advance)
		if err != nil {
			return nil, wrapInput(KindPitchShift, err)
		}
		y, _, err := p.plan.inverse(KindPitchShift, stretched, 1, steps, stretchLen)
		if err != nil {
			return nil, err
		}
		shifted := p.r.Resample(y)
		copy(out[b*n:(b+1)*n], shifted)
	}
	return realOutput(x.DType(), shape, out)
}
