// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"math"
	"math/cmplx"

	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/dsp"
)

// ComplexNormConfig configures ComplexNorm.
type ComplexNormConfig struct {
	Power float64 `msgpack:"power" yaml:"power" json:"power"`
}

func DefaultComplexNormConfig() ComplexNormConfig { return ComplexNormConfig{Power: 1} }

func (ComplexNormConfig) Kind() Kind { return KindComplexNorm }

func (c ComplexNormConfig) Validate() error {
	if c.Power <= 0 || math.IsInf(c.Power, 0) || math.IsNaN(c.Power) {
		return configError(KindComplexNorm, "power=%g must be positive", c.Power)
	}
	return nil
}

// ComplexNorm computes |x|^power of a complex or pseudo-complex buffer. A
// pseudo-complex input (..., 2) yields (...).
type ComplexNorm struct {
	cfg ComplexNormConfig
}

func (n *ComplexNorm) Kind() Kind     { return KindComplexNorm }
func (n *ComplexNorm) Config() Config { return n.cfg }

func (n *ComplexNorm) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	shape, data, _, err := complexInput(KindComplexNorm, x, 0)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = math.Pow(cmplx.Abs(v), n.cfg.Power)
	}
	return realOutput(x.DType(), shape, out)
}

// MuLawConfig configures MuLawEncoding and MuLawDecoding.
type MuLawConfig struct {
	QuantizationChannels int `msgpack:"quantization_channels" yaml:"quantization_channels" json:"quantization_channels"`
}

func validateMuLaw(k Kind, c MuLawConfig) error {
	if c.QuantizationChannels < 2 {
		return configError(k, "quantization_channels=%d must be at least 2", c.QuantizationChannels)
	}
	return nil
}

// MuLawEncodingConfig configures MuLawEncoding.
type MuLawEncodingConfig MuLawConfig

func DefaultMuLawEncodingConfig() MuLawEncodingConfig {
	return MuLawEncodingConfig{QuantizationChannels: 256}
}

func (MuLawEncodingConfig) Kind() Kind { return KindMuLawEncoding }

func (c MuLawEncodingConfig) Validate() error {
	return validateMuLaw(KindMuLawEncoding, MuLawConfig(c))
}

// MuLawEncoding companders waveforms in [-1, 1] into integer levels
// 0..quantization_channels-1, stored in the input's real dtype.
type MuLawEncoding struct {
	cfg MuLawEncodingConfig
}

func (m *MuLawEncoding) Kind() Kind     { return KindMuLawEncoding }
func (m *MuLawEncoding) Config() Config { return m.cfg }

func (m *MuLawEncoding) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	return mapReal(KindMuLawEncoding, x, func(v float64) float64 {
		return dsp.MuLawEncode(v, m.cfg.QuantizationChannels)
	})
}

// MuLawDecodingConfig configures MuLawDecoding.
type MuLawDecodingConfig MuLawConfig

func DefaultMuLawDecodingConfig() MuLawDecodingConfig {
	return MuLawDecodingConfig{QuantizationChannels: 256}
}

func (MuLawDecodingConfig) Kind() Kind { return KindMuLawDecoding }

func (c MuLawDecodingConfig) Validate() error {
	return validateMuLaw(KindMuLawDecoding, MuLawConfig(c))
}

// MuLawDecoding expands mu-law levels back into [-1, 1].
type MuLawDecoding struct {
	cfg MuLawDecodingConfig
}

func (m *MuLawDecoding) Kind() Kind     { return KindMuLawDecoding }
func (m *MuLawDecoding) Config() Config { return m.cfg }

func (m *MuLawDecoding) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	return mapReal(KindMuLawDecoding, x, func(v float64) float64 {
		return dsp.MuLawDecode(v, m.cfg.QuantizationChannels)
	})
}

// mapReal applies fn to every element of a real buffer.
func mapReal(k Kind, x *buffer.Buffer, fn func(float64) float64) (*buffer.Buffer, error) {
	shape, data, err := realInput(k, x, 0)
	if err != nil {
		return nil, err
	}
	for i, v := range data {
		data[i] = fn(v)
	}
	return realOutput(x.DType(), shape, data)
}

// FadeConfig configures Fade. Lengths are in samples.
type FadeConfig struct {
	FadeInLen  int           `msgpack:"fade_in_len" yaml:"fade_in_len" json:"fade_in_len"`
	FadeOutLen int           `msgpack:"fade_out_len" yaml:"fade_out_len" json:"fade_out_len"`
	FadeShape  dsp.FadeShape `msgpack:"fade_shape" yaml:"fade_shape" json:"fade_shape"`
}

func DefaultFadeConfig() FadeConfig { return FadeConfig{FadeShape: dsp.FadeLinear} }

func (FadeConfig) Kind() Kind { return KindFade }

func (c FadeConfig) Validate() error {
	if c.FadeInLen < 0 || c.FadeOutLen < 0 {
		return configError(KindFade, "fade lengths %d/%d must not be negative", c.FadeInLen, c.FadeOutLen)
	}
	if !c.FadeShape.Valid() {
		return configError(KindFade, "unknown fade_shape %q", c.FadeShape)
	}
	return nil
}

// Fade multiplies waveforms (..., time) by a fade-in and fade-out
// envelope. Both fades must fit in the signal.
type Fade struct {
	cfg FadeConfig
}

func (f *Fade) Kind() Kind     { return KindFade }
func (f *Fade) Config() Config { return f.cfg }

func (f *Fade) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	shape, data, err := realInput(KindFade, x, 1)
	if err != nil {
		return nil, err
	}
	n := shape[len(shape)-1]
	env, err := dsp.FadeEnvelope(n, f.cfg.FadeInLen, f.cfg.FadeOutLen, f.cfg.FadeShape)
	if err != nil {
		return nil, wrapInput(KindFade, err)
	}
	for i := range data {
		data[i] *= env[i%n]
	}
	return realOutput(x.DType(), shape, data)
}

// Gain types accepted by Vol.
const (
	GainAmplitude = "amplitude"
	GainPower     = "power"
	GainDB        = "db"
)

// VolConfig configures Vol.
type VolConfig struct {
	Gain float64 `msgpack:"gain" yaml:"gain" json:"gain"`
	// GainType is "amplitude", "power" or "db".
	GainType string `msgpack:"gain_type" yaml:"gain_type" json:"gain_type"`
}

func DefaultVolConfig() VolConfig { return VolConfig{Gain: 1, GainType: GainAmplitude} }

func (VolConfig) Kind() Kind { return KindVol }

func (c VolConfig) Validate() error {
	switch c.GainType {
	case GainAmplitude, GainPower:
		if c.Gain < 0 {
			return configError(KindVol, "gain=%g must not be negative for gain_type %q", c.Gain, c.GainType)
		}
	case GainDB:
	default:
		return configError(KindVol, "unknown gain_type %q", c.GainType)
	}
	if math.IsNaN(c.Gain) || math.IsInf(c.Gain, 0) {
		return configError(KindVol, "gain=%g must be finite", c.Gain)
	}
	return nil
}

// Vol scales waveforms by a gain and clamps the result to [-1, 1].
type Vol struct {
	cfg    VolConfig
	factor float64
}

func newVol(cfg VolConfig) (*Vol, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	factor := cfg.Gain
	switch cfg.GainType {
	case GainDB:
		factor = math.Pow(10, cfg.Gain/20)
	case GainPower:
		factor = math.Pow(10, 10*math.Log10(cfg.Gain)/20)
	}
	return &Vol{cfg: cfg, factor: factor}, nil
}

func (v *Vol) Kind() Kind     { return KindVol }
func (v *Vol) Config() Config { return v.cfg }

func (v *Vol) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	return mapReal(KindVol, x, func(s float64) float64 {
		return math.Max(-1, math.Min(1, s*v.factor))
	})
}
