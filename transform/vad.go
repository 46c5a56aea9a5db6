// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"slices"

	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/dsp"
)

// VadConfig configures Vad. Times are in seconds and frequencies in Hz.
type VadConfig struct {
	SampleRate           int     `msgpack:"sample_rate" yaml:"sample_rate" json:"sample_rate"`
	TriggerLevel         float64 `msgpack:"trigger_level" yaml:"trigger_level" json:"trigger_level"`
	TriggerTime          float64 `msgpack:"trigger_time" yaml:"trigger_time" json:"trigger_time"`
	SearchTime           float64 `msgpack:"search_time" yaml:"search_time" json:"search_time"`
	AllowedGap           float64 `msgpack:"allowed_gap" yaml:"allowed_gap" json:"allowed_gap"`
	PreTriggerTime       float64 `msgpack:"pre_trigger_time" yaml:"pre_trigger_time" json:"pre_trigger_time"`
	BootTime             float64 `msgpack:"boot_time" yaml:"boot_time" json:"boot_time"`
	NoiseUpTime          float64 `msgpack:"noise_up_time" yaml:"noise_up_time" json:"noise_up_time"`
	NoiseDownTime        float64 `msgpack:"noise_down_time" yaml:"noise_down_time" json:"noise_down_time"`
	NoiseReductionAmount float64 `msgpack:"noise_reduction_amount" yaml:"noise_reduction_amount" json:"noise_reduction_amount"`
	MeasureFreq          float64 `msgpack:"measure_freq" yaml:"measure_freq" json:"measure_freq"`
	// MeasureDuration defaults to twice the measurement period when zero.
	MeasureDuration   float64 `msgpack:"measure_duration" yaml:"measure_duration" json:"measure_duration"`
	MeasureSmoothTime float64 `msgpack:"measure_smooth_time" yaml:"measure_smooth_time" json:"measure_smooth_time"`
	HPFilterFreq      float64 `msgpack:"hp_filter_freq" yaml:"hp_filter_freq" json:"hp_filter_freq"`
	LPFilterFreq      float64 `msgpack:"lp_filter_freq" yaml:"lp_filter_freq" json:"lp_filter_freq"`
	HPLifterFreq      float64 `msgpack:"hp_lifter_freq" yaml:"hp_lifter_freq" json:"hp_lifter_freq"`
	LPLifterFreq      float64 `msgpack:"lp_lifter_freq" yaml:"lp_lifter_freq" json:"lp_lifter_freq"`
	// TrimTrailing also removes silence at the end of the signal.
	TrimTrailing bool `msgpack:"trim_trailing" yaml:"trim_trailing" json:"trim_trailing"`
}

func DefaultVadConfig() VadConfig {
	return VadConfig{
		SampleRate:           16000,
		TriggerLevel:         7,
		TriggerTime:          0.25,
		SearchTime:           1,
		AllowedGap:           0.25,
		BootTime:             0.35,
		NoiseUpTime:          0.1,
		NoiseDownTime:        0.01,
		NoiseReductionAmount: 1.35,
		MeasureFreq:          20,
		MeasureSmoothTime:    0.4,
		HPFilterFreq:         50,
		LPFilterFreq:         6000,
		HPLifterFreq:         150,
		LPLifterFreq:         2000,
	}
}

func (VadConfig) Kind() Kind { return KindVad }

func (c VadConfig) Validate() error {
	if c.SampleRate <= 0 {
		return configError(KindVad, "sample_rate=%d must be positive", c.SampleRate)
	}
	// planning a run with no channels checks every derived parameter
	if _, err := dsp.VADTrimStart(nil, c.detector()); err != nil {
		return wrapConfig(KindVad, err)
	}
	return nil
}

func (c VadConfig) detector() dsp.VADConfig {
	return dsp.VADConfig{
		SampleRate:           float64(c.SampleRate),
		TriggerLevel:         c.TriggerLevel,
		TriggerTime:          c.TriggerTime,
		SearchTime:           c.SearchTime,
		AllowedGap:           c.AllowedGap,
		PreTriggerTime:       c.PreTriggerTime,
		BootTime:             c.BootTime,
		NoiseUpTime:          c.NoiseUpTime,
		NoiseDownTime:        c.NoiseDownTime,
		NoiseReductionAmount: c.NoiseReductionAmount,
		MeasureFreq:          c.MeasureFreq,
		MeasureDuration:      c.MeasureDuration,
		MeasureSmoothTime:    c.MeasureSmoothTime,
		HPFilterFreq:         c.HPFilterFreq,
		LPFilterFreq:         c.LPFilterFreq,
		HPLifterFreq:         c.HPLifterFreq,
		LPLifterFreq:         c.LPLifterFreq,
	}
}

// Vad trims leading silence from waveforms (..., time). All leading slices
// are treated as channels of one recording and are cut at the same sample.
type Vad struct {
	cfg VadConfig
	det dsp.VADConfig
}

func newVad(cfg VadConfig) (*Vad, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Vad{cfg: cfg, det: cfg.detector()}, nil
}

func (v *Vad) Kind() Kind     { return KindVad }
func (v *Vad) Config() Config { return v.cfg }

func (v *Vad) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	shape, data, err := realInput(KindVad, x, 1)
	if err != nil {
		return nil, err
	}
	lead, tail := split(shape, 1)
	n := tail[0]
	rows := make([][]float64, product(lead))
	for i := range rows {
		rows[i] = data[i*n : (i+1)*n]
	}

	start, err := dsp.VADTrimStart(rows, v.det)
	if err != nil {
		return nil, wrapInput(KindVad, err)
	}
	for i := range rows {
		rows[i] = rows[i][start:]
	}

	if v.cfg.TrimTrailing {
		for _, r := range rows {
			slices.Reverse(r)
		}
		end, err := dsp.VADTrimStart(rows, v.det)
		if err != nil {
			return nil, wrapInput(KindVad, err)
		}
		for i, r := range rows {
			r = r[end:]
			slices.Reverse(r)
			rows[i] = r
		}
	}

	kept := n - start
	if len(rows) > 0 {
		kept = len(rows[0])
	}
	out := make([]float64, 0, len(rows)*kept)
	for _, r := range rows {
		out = append(out, r...)
	}
	return realOutput(x.DType(), withDims(lead, kept), out)
}
