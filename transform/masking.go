// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"math"
	"math/rand/v2"

	"github.com/ik5/audxf/buffer"
)

// FrequencyMaskingConfig configures FrequencyMasking.
type FrequencyMaskingConfig struct {
	// FreqMaskParam is the maximum mask width in bins.
	FreqMaskParam int `msgpack:"freq_mask_param" yaml:"freq_mask_param" json:"freq_mask_param"`
	// IIDMasks draws an independent mask for every leading slice.
	IIDMasks  bool    `msgpack:"iid_masks" yaml:"iid_masks" json:"iid_masks"`
	MaskValue float64 `msgpack:"mask_value" yaml:"mask_value" json:"mask_value"`
	Seed      uint64  `msgpack:"seed" yaml:"seed" json:"seed"`
}

func DefaultFrequencyMaskingConfig() FrequencyMaskingConfig {
	return FrequencyMaskingConfig{FreqMaskParam: 30}
}

func (FrequencyMaskingConfig) Kind() Kind { return KindFrequencyMasking }

func (c FrequencyMaskingConfig) Validate() error {
	if c.FreqMaskParam < 0 {
		return configError(KindFrequencyMasking, "freq_mask_param=%d must not be negative", c.FreqMaskParam)
	}
	if math.IsNaN(c.MaskValue) {
		return configError(KindFrequencyMasking, "mask_value must be a number")
	}
	return nil
}

// FrequencyMasking fills a random band of frequency rows of spectrograms
// (..., freq, time) with mask_value. The band is drawn from Seed on every
// call, so repeated calls on the same input agree.
type FrequencyMasking struct {
	cfg FrequencyMaskingConfig
}

func (m *FrequencyMasking) Kind() Kind     { return KindFrequencyMasking }
func (m *FrequencyMasking) Config() Config { return m.cfg }

func (m *FrequencyMasking) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	return maskAxis(KindFrequencyMasking, x, axisFreq, m.cfg.FreqMaskParam, 1, m.cfg.IIDMasks, m.cfg.MaskValue, m.cfg.Seed)
}

// TimeMaskingConfig configures TimeMasking.
type TimeMaskingConfig struct {
	// TimeMaskParam is the maximum mask width in frames.
	TimeMaskParam int  `msgpack:"time_mask_param" yaml:"time_mask_param" json:"time_mask_param"`
	IIDMasks      bool `msgpack:"iid_masks" yaml:"iid_masks" json:"iid_masks"`
	// P caps the mask width at this proportion of the frames.
	P         float64 `msgpack:"p" yaml:"p" json:"p"`
	MaskValue float64 `msgpack:"mask_value" yaml:"mask_value" json:"mask_value"`
	Seed      uint64  `msgpack:"seed" yaml:"seed" json:"seed"`
}

func DefaultTimeMaskingConfig() TimeMaskingConfig {
	return TimeMaskingConfig{TimeMaskParam: 30, P: 1}
}

func (TimeMaskingConfig) Kind() Kind { return KindTimeMasking }

func (c TimeMaskingConfig) Validate() error {
	switch {
	case c.TimeMaskParam < 0:
		return configError(KindTimeMasking, "time_mask_param=%d must not be negative", c.TimeMaskParam)
	case c.P < 0 || c.P > 1 || math.IsNaN(c.P):
		return configError(KindTimeMasking, "p=%g must be in [0, 1]", c.P)
	case math.IsNaN(c.MaskValue):
		return configError(KindTimeMasking, "mask_value must be a number")
	}
	return nil
}

// TimeMasking fills a random span of frames of spectrograms
// (..., freq, time) with mask_value.
type TimeMasking struct {
	cfg TimeMaskingConfig
}

func (m *TimeMasking) Kind() Kind     { return KindTimeMasking }
func (m *TimeMasking) Config() Config { return m.cfg }

func (m *TimeMasking) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	return maskAxis(KindTimeMasking, x, axisTime, m.cfg.TimeMaskParam, m.cfg.P, m.cfg.IIDMasks, m.cfg.MaskValue, m.cfg.Seed)
}

type maskAxisKind int

const (
	axisFreq maskAxisKind = iota
	axisTime
)

// maskSpan draws a [start, end) span of at most param out of size.
func maskSpan(rng *rand.Rand, param, size int) (int, int) {
	value := rng.Float64() * float64(param)
	lo := rng.Float64() * (float64(size) - value)
	start := int(lo)
	end := start + int(value)
	return min(max(start, 0), size), min(max(end, 0), size)
}

func maskAxis(k Kind, x *buffer.Buffer, axis maskAxisKind, param int, p float64, iid bool, fill float64, seed uint64) (*buffer.Buffer, error) {
	shape, data, err := realInput(k, x, 2)
	if err != nil {
		return nil, err
	}
	lead, tail := split(shape, 2)
	freqs, frames := tail[0], tail[1]
	size := freqs
	if axis == axisTime {
		size = frames
	}
	if p < 1 {
		param = min(param, int(float64(size)*p))
	}

	rng := rand.New(rand.NewPCG(seed, seedStream))
	batch := product(lead)
	start, end := maskSpan(rng, param, size)
	for b := range batch {
		if iid && b > 0 {
			start, end = maskSpan(rng, param, size)
		}
		m := data[b*freqs*frames : (b+1)*freqs*frames]
		for f := range freqs {
			for t := range frames {
				pos := f
				if axis == axisTime {
					pos = t
				}
				if pos >= start && pos < end {
					m[f*frames+t] = fill
				}
			}
		}
	}
	return realOutput(x.DType(), shape, data)
}
