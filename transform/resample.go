// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"math"

	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/dsp"
)

// ResampleConfig configures Resample. Frequencies are in Hz and must be
// whole numbers.
type ResampleConfig struct {
	OrigFreq           float64            `msgpack:"orig_freq" yaml:"orig_freq" json:"orig_freq"`
	NewFreq            float64            `msgpack:"new_freq" yaml:"new_freq" json:"new_freq"`
	ResamplingMethod   dsp.ResampleMethod `msgpack:"resampling_method" yaml:"resampling_method" json:"resampling_method"`
	LowpassFilterWidth int                `msgpack:"lowpass_filter_width" yaml:"lowpass_filter_width" json:"lowpass_filter_width"`
	Rolloff            float64            `msgpack:"rolloff" yaml:"rolloff" json:"rolloff"`
	// Beta shapes the kaiser window; zero selects dsp.DefaultKaiserBeta.
	Beta float64 `msgpack:"beta" yaml:"beta" json:"beta"`
}

func DefaultResampleConfig() ResampleConfig {
	return ResampleConfig{
		OrigFreq:           16000,
		NewFreq:            16000,
		ResamplingMethod:   dsp.SincHann,
		LowpassFilterWidth: 6,
		Rolloff:            0.99,
	}
}

func (ResampleConfig) Kind() Kind { return KindResample }

func (c ResampleConfig) Validate() error {
	_, err := c.resampler()
	return err
}

func (c ResampleConfig) resampler() (*dsp.SincResampler, error) {
	for _, f := range []float64{c.OrigFreq, c.NewFreq} {
		if f <= 0 || f != math.Trunc(f) || f > math.MaxInt32 {
			return nil, configError(KindResample, "frequency %g must be a positive whole number", f)
		}
	}
	beta := c.Beta
	if beta == 0 {
		beta = dsp.DefaultKaiserBeta
	}
	r, err := dsp.NewSincResampler(int(c.OrigFreq), int(c.NewFreq), c.LowpassFilterWidth, c.Rolloff, c.ResamplingMethod, beta)
	if err != nil {
		return nil, wrapConfig(KindResample, err)
	}
	return r, nil
}

// Resample converts waveforms (..., time) between two sample rates with a
// windowed sinc kernel. The output has ceil(new*time/orig) samples.
type Resample struct {
	cfg ResampleConfig
	r   *dsp.SincResampler
}

func newResample(cfg ResampleConfig) (*Resample, error) {
	r, err := cfg.resampler()
	if err != nil {
		return nil, err
	}
	return &Resample{cfg: cfg, r: r}, nil
}

func (r *Resample) Kind() Kind     { return KindResample }
func (r *Resample) Config() Config { return r.cfg }

func (r *Resample) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	shape, data, err := realInput(KindResample, x, 1)
	if err != nil {
		return nil, err
	}
	lead, tail := split(shape, 1)
	out, n := resampleRows(r.r, data, product(lead), tail[0])
	return realOutput(x.DType(), withDims(lead, n), out)
}

// resampleRows resamples batch rows of n samples packed in data.
func resampleRows(r *dsp.SincResampler, data []float64, batch, n int) ([]float64, int) {
	m := r.OutputLength(n)
	out := make([]float64, 0, batch*m)
	for b := range batch {
		out = append(out, r.Resample(data[b*n:(b+1)*n])...)
	}
	return out, m
}
