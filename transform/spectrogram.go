// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"math"
	"math/cmplx"
	"math/rand/v2"

	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/dsp"
)

// SpectrogramConfig configures Spectrogram.
type SpectrogramConfig struct {
	NFFT int `msgpack:"n_fft" yaml:"n_fft" json:"n_fft"`
	// WinLength defaults to NFFT when zero.
	WinLength int `msgpack:"win_length" yaml:"win_length" json:"win_length"`
	// HopLength defaults to WinLength/2 when zero.
	HopLength int            `msgpack:"hop_length" yaml:"hop_length" json:"hop_length"`
	Pad       int            `msgpack:"pad" yaml:"pad" json:"pad"`
	Window    dsp.WindowKind `msgpack:"window" yaml:"window" json:"window"`
	// Power is the exponent applied to the magnitude. Ignored when
	// ReturnComplex is set.
	Power         float64     `msgpack:"power" yaml:"power" json:"power"`
	Normalized    bool        `msgpack:"normalized" yaml:"normalized" json:"normalized"`
	Center        bool        `msgpack:"center" yaml:"center" json:"center"`
	PadMode       dsp.PadMode `msgpack:"pad_mode" yaml:"pad_mode" json:"pad_mode"`
	ReturnComplex bool        `msgpack:"return_complex" yaml:"return_complex" json:"return_complex"`
}

// DefaultSpectrogramConfig returns a 400 point power spectrogram with a
// hann window and a hop of 200 samples.
func DefaultSpectrogramConfig() SpectrogramConfig {
	return SpectrogramConfig{
		NFFT:    400,
		Window:  dsp.Hann,
		Power:   2,
		Center:  true,
		PadMode: dsp.PadReflect,
	}
}

func (SpectrogramConfig) Kind() Kind { return KindSpectrogram }

func (c SpectrogramConfig) Validate() error {
	if !c.ReturnComplex && (c.Power <= 0 || math.IsInf(c.Power, 0) || math.IsNaN(c.Power)) {
		return configError(KindSpectrogram, "power=%g must be positive", c.Power)
	}
	_, err := c.plan()
	return err
}

func (c SpectrogramConfig) plan() (*stftPlan, error) {
	return newSTFTPlan(KindSpectrogram, c.NFFT, c.WinLength, c.HopLength, c.Pad, c.Window, 2, c.Center, c.PadMode, c.Normalized)
}

// Spectrogram computes the short-time Fourier transform of waveforms
// (..., time), returning (..., n_fft/2+1, frames). The output is the
// magnitude raised to Power, or the complex transform when ReturnComplex is
// set.
type Spectrogram struct {
	cfg  SpectrogramConfig
	plan *stftPlan
}

func newSpectrogram(cfg SpectrogramConfig) (*Spectrogram, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	plan, err := cfg.plan()
	if err != nil {
		return nil, err
	}
	return &Spectrogram{cfg: cfg, plan: plan}, nil
}

func (s *Spectrogram) Kind() Kind     { return KindSpectrogram }
func (s *Spectrogram) Config() Config { return s.cfg }

func (s *Spectrogram) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	lead, spec, frames, err := s.complexSpec(x)
	if err != nil {
		return nil, err
	}
	shape := withDims(lead, s.plan.Bins(), frames)
	if s.cfg.ReturnComplex {
		return complexOutput(x.DType(), shape, spec, false)
	}
	return realOutput(x.DType(), shape, powerSpectrum(spec, s.cfg.Power))
}

// complexSpec returns the leading dimensions, the complex spectrogram and
// its frame count.
func (s *Spectrogram) complexSpec(x *buffer.Buffer) ([]int, []complex128, int, error) {
	shape, data, err := realInput(KindSpectrogram, x, 1)
	if err != nil {
		return nil, nil, 0, err
	}
	lead, tail := split(shape, 1)
	spec, frames, err := s.plan.forward(KindSpectrogram, data, product(lead), tail[0])
	if err != nil {
		return nil, nil, 0, err
	}
	return lead, spec, frames, nil
}

// powerSpectrum returns |v|^power for every value.
func powerSpectrum(spec []complex128, power float64) []float64 {
	out := make([]float64, len(spec))
	for i, v := range spec {
		switch power {
		case 1:
			out[i] = cmplx.Abs(v)
		case 2:
			out[i] = real(v)*real(v) + imag(v)*imag(v)
		default:
			out[i] = math.Pow(cmplx.Abs(v), power)
		}
	}
	return out
}

// InverseSpectrogramConfig configures InverseSpectrogram.
type InverseSpectrogramConfig struct {
	NFFT       int            `msgpack:"n_fft" yaml:"n_fft" json:"n_fft"`
	WinLength  int            `msgpack:"win_length" yaml:"win_length" json:"win_length"`
	HopLength  int            `msgpack:"hop_length" yaml:"hop_length" json:"hop_length"`
	Pad        int            `msgpack:"pad" yaml:"pad" json:"pad"`
	Window     dsp.WindowKind `msgpack:"window" yaml:"window" json:"window"`
	Normalized bool           `msgpack:"normalized" yaml:"normalized" json:"normalized"`
	Center     bool           `msgpack:"center" yaml:"center" json:"center"`
	PadMode    dsp.PadMode    `msgpack:"pad_mode" yaml:"pad_mode" json:"pad_mode"`
	// Length fixes the output length; zero keeps the natural length.
	Length int `msgpack:"length" yaml:"length" json:"length"`
}

func DefaultInverseSpectrogramConfig() InverseSpectrogramConfig {
	return InverseSpectrogramConfig{
		NFFT:    400,
		Window:  dsp.Hann,
		Center:  true,
		PadMode: dsp.PadReflect,
	}
}

func (InverseSpectrogramConfig) Kind() Kind { return KindInverseSpectrogram }

func (c InverseSpectrogramConfig) Validate() error {
	if c.Length < 0 {
		return configError(KindInverseSpectrogram, "length=%d must not be negative", c.Length)
	}
	_, err := c.plan()
	return err
}

func (c InverseSpectrogramConfig) plan() (*stftPlan, error) {
	return newSTFTPlan(KindInverseSpectrogram, c.NFFT, c.WinLength, c.HopLength, c.Pad, c.Window, 2, c.Center, c.PadMode, c.Normalized)
}

// InverseSpectrogram reconstructs waveforms (..., time) from complex
// spectrograms (..., n_fft/2+1, frames) by overlap-add. Native complex and
// pseudo-complex inputs give the same result.
type InverseSpectrogram struct {
	cfg  InverseSpectrogramConfig
	plan *stftPlan
}

func newInverseSpectrogram(cfg InverseSpectrogramConfig) (*InverseSpectrogram, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	plan, err := cfg.plan()
	if err != nil {
		return nil, err
	}
	return &InverseSpectrogram{cfg: cfg, plan: plan}, nil
}

func (s *InverseSpectrogram) Kind() Kind     { return KindInverseSpectrogram }
func (s *InverseSpectrogram) Config() Config { return s.cfg }

func (s *InverseSpectrogram) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	shape, spec, _, err := complexInput(KindInverseSpectrogram, x, 2)
	if err != nil {
		return nil, err
	}
	lead, tail := split(shape, 2)
	if tail[0] != s.plan.Bins() {
		return nil, inputError(KindInverseSpectrogram, "%d frequency bins, n_fft=%d needs %d", tail[0], s.cfg.NFFT, s.plan.Bins())
	}
	if tail[1] == 0 {
		return nil, inputError(KindInverseSpectrogram, "spectrogram has no frames")
	}
	y, n, err := s.plan.inverse(KindInverseSpectrogram, spec, product(lead), tail[1], s.cfg.Length)
	if err != nil {
		return nil, err
	}
	return realOutput(x.DType(), withDims(lead, n), y)
}

// GriffinLimConfig configures GriffinLim.
type GriffinLimConfig struct {
	NFFT      int            `msgpack:"n_fft" yaml:"n_fft" json:"n_fft"`
	NIter     int            `msgpack:"n_iter" yaml:"n_iter" json:"n_iter"`
	WinLength int            `msgpack:"win_length" yaml:"win_length" json:"win_length"`
	HopLength int            `msgpack:"hop_length" yaml:"hop_length" json:"hop_length"`
	Window    dsp.WindowKind `msgpack:"window" yaml:"window" json:"window"`
	// Power is the exponent the input magnitudes were raised to.
	Power    float64 `msgpack:"power" yaml:"power" json:"power"`
	Momentum float64 `msgpack:"momentum" yaml:"momentum" json:"momentum"`
	Length   int     `msgpack:"length" yaml:"length" json:"length"`
	// RandInit starts from random phases drawn from Seed instead of zero
	// phase.
	RandInit bool   `msgpack:"rand_init" yaml:"rand_init" json:"rand_init"`
	Seed     uint64 `msgpack:"seed" yaml:"seed" json:"seed"`
}

func DefaultGriffinLimConfig() GriffinLimConfig {
	return GriffinLimConfig{
		NFFT:     400,
		NIter:    32,
		Window:   dsp.Hann,
		Power:    2,
		Momentum: 0.99,
		RandInit: true,
	}
}

func (GriffinLimConfig) Kind() Kind { return KindGriffinLim }

func (c GriffinLimConfig) Validate() error {
	switch {
	case c.NIter <= 0:
		return configError(KindGriffinLim, "n_iter=%d must be positive", c.NIter)
	case c.Momentum < 0 || c.Momentum >= 1:
		return configError(KindGriffinLim, "momentum=%g must be in [0, 1)", c.Momentum)
	case c.Power <= 0:
		return configError(KindGriffinLim, "power=%g must be positive", c.Power)
	case c.Length < 0:
		return configError(KindGriffinLim, "length=%d must not be negative", c.Length)
	}
	_, err := c.plan()
	return err
}

func (c GriffinLimConfig) plan() (*stftPlan, error) {
	return newSTFTPlan(KindGriffinLim, c.NFFT, c.WinLength, c.HopLength, 0, c.Window, 2, true, dsp.PadReflect, false)
}

// GriffinLim estimates a waveform (..., time) from a magnitude spectrogram
// (..., n_fft/2+1, frames) by iterative phase reconstruction with momentum.
type GriffinLim struct {
	cfg  GriffinLimConfig
	plan *stftPlan
}

func newGriffinLim(cfg GriffinLimConfig) (*GriffinLim, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	plan, err := cfg.plan()
	if err != nil {
		return nil, err
	}
	return &GriffinLim{cfg: cfg, plan: plan}, nil
}

func (g *GriffinLim) Kind() Kind     { return KindGriffinLim }
func (g *GriffinLim) Config() Config { return g.cfg }

func (g *GriffinLim) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	shape, data, err := realInput(KindGriffinLim, x, 2)
	if err != nil {
		return nil, err
	}
	lead, tail := split(shape, 2)
	bins, frames := tail[0], tail[1]
	if bins != g.plan.Bins() {
		return nil, inputError(KindGriffinLim, "%d frequency bins, n_fft=%d needs %d", bins, g.cfg.NFFT, g.plan.Bins())
	}
	if frames == 0 {
		return nil, inputError(KindGriffinLim, "spectrogram has no frames")
	}
	if g.cfg.Length > 0 && g.plan.Frames(g.cfg.Length) != frames {
		return nil, inputError(KindGriffinLim, "length=%d gives %d frames, input has %d", g.cfg.Length, g.plan.Frames(g.cfg.Length), frames)
	}

	mag := make([]float64, len(data))
	for i, v := range data {
		mag[i] = math.Pow(v, 1/g.cfg.Power)
	}

	rng := rand.New(rand.NewPCG(g.cfg.Seed, seedStream))
	batch := product(lead)
	size := bins * frames
	var out []float64
	n := 0
	for b := range batch {
		y, err := g.reconstruct(mag[b*size:(b+1)*size], frames, rng)
		if err != nil {
			return nil, err
		}
		n = len(y)
		out = append(out, y...)
	}
	if batch == 0 {
		n = g.plan.naturalLength(frames, g.cfg.Length)
	}
	return realOutput(x.DType(), withDims(lead, n), out)
}

func (g *GriffinLim) reconstruct(mag []float64, frames int, rng *rand.Rand) ([]float64, error) {
	angles := make([]complex128, len(mag))
	for i := range angles {
		if g.cfg.RandInit {
			angles[i] = complex(rng.Float64(), rng.Float64())
		} else {
			angles[i] = 1
		}
	}

	spec := make([]complex128, len(mag))
	fill := func() {
		for i, m := range mag {
			spec[i] = complex(m, 0) * angles[i]
		}
	}

	prev := make([]complex128, len(mag))
	carry := complex(g.cfg.Momentum/(1+g.cfg.Momentum), 0)
	for range g.cfg.NIter {
		fill()
		y, _, err := g.plan.inverse(KindGriffinLim, spec, 1, frames, g.cfg.Length)
		if err != nil {
			return nil, err
		}
		rebuilt, got, err := g.plan.forward(KindGriffinLim, y, 1, len(y))
		if err != nil {
			return nil, err
		}
		if got != frames {
			return nil, inputError(KindGriffinLim, "rebuilt %d frames from %d", got, frames)
		}
		for i, r := range rebuilt {
			a := r - prev[i]*carry
			angles[i] = a / complex(cmplx.Abs(a)+1e-16, 0)
		}
		prev = rebuilt
	}

	fill()
	y, _, err := g.plan.inverse(KindGriffinLim, spec, 1, frames, g.cfg.Length)
	return y, err
}

// seedStream is the second PCG word for every seeded transform.
const seedStream = 0x61756478
