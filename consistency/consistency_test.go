// SPDX-License-Identifier: EPL-2.0

package consistency

import (
	"errors"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/internal/audiotest"
	"github.com/ik5/audxf/transform"
)

// inputFor returns an input every default-configured kind accepts.
func inputFor(k transform.Kind) *buffer.Buffer {
	switch k {
	case transform.KindInverseSpectrogram, transform.KindTimeStretch:
		return audiotest.RandComplex(7, 1, 201, 9)
	case transform.KindComplexNorm:
		return audiotest.RandComplex(7, 2, 4, 5)
	case transform.KindGriffinLim, transform.KindAmplitudeToDB, transform.KindDBToAmplitude,
		transform.KindMelScale, transform.KindFrequencyMasking, transform.KindTimeMasking,
		transform.KindSlidingWindowCmn, transform.KindComputeDeltas:
		return audiotest.Rand(7, 2, 201, 9)
	case transform.KindMuLawDecoding:
		levels := audiotest.Rand(7, 2, 64).Floats()
		for i := range levels {
			levels[i] = math.Floor(levels[i] * 256)
		}
		return buffer.MustNew(buffer.Float32, []int{2, 64}, levels)
	}
	return audiotest.WhiteNoise(audiotest.WhiteNoiseOptions{SampleRate: 16000, Duration: 0.1, Channels: 2, Seed: 7})
}

func TestCheck_EveryKind(t *testing.T) {
	t.Parallel()

	for _, k := range transform.Kinds() {
		t.Run(string(k), func(t *testing.T) {
			t.Parallel()

			cfg, err := transform.DefaultConfig(k)
			require.NoError(t, err)

			report, err := Check(transform.MustNew(cfg), inputFor(k))
			require.NoError(t, err)
			assert.Equal(t, k, report.Kind)
			assert.NotEmpty(t, report.Fingerprint)
			assert.Empty(t, report.Path)
			assert.Equal(t, DefaultTolerance(k), report.Tolerance)
			if report.Tolerance == Exact() {
				assert.Zero(t, report.MaxAbs)
			}
		})
	}
}

func TestCheck_RandomizedKindsWithSeeds(t *testing.T) {
	t.Parallel()

	freq := transform.DefaultFrequencyMaskingConfig()
	freq.IIDMasks = true
	freq.Seed = 11
	tm := transform.DefaultTimeMaskingConfig()
	tm.TimeMaskParam = 4
	tm.Seed = 12
	gl := transform.DefaultGriffinLimConfig()
	gl.NIter = 8
	gl.Seed = 13

	x := audiotest.Rand(5, 3, 201, 9)
	for _, cfg := range []transform.Config{freq, tm, gl} {
		Assert(t, transform.MustNew(cfg), x, DefaultTolerance(cfg.Kind()))
	}
}

func TestCheck_SaveDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mel := transform.DefaultMelSpectrogramConfig()
	mel.NMels = 40
	pipeline := transform.MustNew(transform.SequentialConfig{Steps: []transform.Config{
		mel,
		transform.DefaultAmplitudeToDBConfig(),
	}})

	report, err := Check(pipeline, inputFor(transform.KindMelSpectrogram), WithSaveDir(dir))
	require.NoError(t, err)
	require.NotEmpty(t, report.Path)
	assert.Equal(t, []int{2, 40, 9}, report.Shape)
	assert.Equal(t, buffer.Float32, report.DType)

	_, err = os.Stat(report.Path)
	require.NoError(t, err)
}

// drifting scales the output of the transform it wraps, so its replay
// (which only sees the wrapped config) disagrees.
type drifting struct {
	transform.Transform
	gain float64
}

func (d drifting) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	y, err := d.Transform.Apply(x)
	if err != nil {
		return nil, err
	}
	return transform.MustNew(transform.VolConfig{Gain: d.gain, GainType: transform.GainAmplitude}).Apply(y)
}

type failing struct{ transform.Transform }

var errBroken = errors.New("broken")

func (failing) Apply(*buffer.Buffer) (*buffer.Buffer, error) { return nil, errBroken }

func TestCheck_ReportsDivergence(t *testing.T) {
	t.Parallel()

	x := buffer.MustNew(buffer.Float64, []int{1, 4}, []float64{0.1, -0.5, 0.25, 0.9})
	tr := drifting{Transform: transform.MustNew(transform.DefaultVolConfig()), gain: 1.001}

	_, err := Check(tr, x)
	require.ErrorIs(t, err, ErrConsistencyMismatch)

	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, transform.KindVol, mismatch.Kind)
	assert.Equal(t, DivergeValues, mismatch.Divergence)
	assert.Equal(t, 4, mismatch.Mismatched)
	assert.Equal(t, 3, mismatch.Index)
	assert.Equal(t, []int{0, 3}, mismatch.Position)
	assert.InDelta(t, 0.0009, mismatch.MaxAbs, 1e-12)
	assert.InDelta(t, 0.001, mismatch.MaxRel, 1e-5)
	assert.InDelta(t, 0.9, real(mismatch.Replayed), 1e-15)
	assert.Contains(t, err.Error(), "Vol")

	_, err = Check(tr, x, WithTolerance(Tolerance{Rel: 0.01}))
	require.NoError(t, err)
}

func TestCheck_ApplyFailures(t *testing.T) {
	t.Parallel()

	spec := transform.MustNew(transform.DefaultSpectrogramConfig())
	_, err := Check(spec, audiotest.RandComplex(1, 1, 800))
	require.ErrorIs(t, err, transform.ErrInvalidInput)
	require.NotErrorIs(t, err, ErrConsistencyMismatch)

	_, err = Check(failing{spec}, audiotest.Rand(1, 1, 800))
	require.ErrorIs(t, err, ErrConsistencyMismatch)
	require.ErrorIs(t, err, errBroken)

	_, err = Check(nil, audiotest.Rand(1, 1, 800))
	require.ErrorIs(t, err, transform.ErrInvalidConfig)
}

func TestCompare(t *testing.T) {
	t.Parallel()

	nan := math.NaN()
	a := buffer.MustNew(buffer.Float64, []int{2, 2}, []float64{1, nan, 3, 4})

	t.Run("equal with NaN", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, Compare(a, a.Clone(), Exact()))
	})

	t.Run("NaN against number", func(t *testing.T) {
		t.Parallel()
		b := buffer.MustNew(buffer.Float64, []int{2, 2}, []float64{1, 2, 3, 4})
		var mismatch *MismatchError
		require.ErrorAs(t, Compare(a, b, Tolerance{Abs: 10}), &mismatch)
		assert.Equal(t, []int{0, 1}, mismatch.Position)
		assert.True(t, math.IsInf(mismatch.MaxAbs, 1))
	})

	t.Run("within tolerance", func(t *testing.T) {
		t.Parallel()
		b := buffer.MustNew(buffer.Float64, []int{2, 2}, []float64{1, nan, 3.0000001, 4})
		require.NoError(t, Compare(a, b, Tolerance{Abs: 1e-6}))
		require.Error(t, Compare(a, b, Exact()))
	})

	t.Run("shape", func(t *testing.T) {
		t.Parallel()
		b, err := a.Reshape(4)
		require.NoError(t, err)
		var mismatch *MismatchError
		require.ErrorAs(t, Compare(a, b, Exact()), &mismatch)
		assert.Equal(t, DivergeShape, mismatch.Divergence)
		assert.Equal(t, []int{4}, mismatch.ReplayedShape)
	})

	t.Run("dtype", func(t *testing.T) {
		t.Parallel()
		b, err := a.Promote(buffer.Complex128)
		require.NoError(t, err)
		var mismatch *MismatchError
		err = Compare(a, b, Exact())
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, DivergeDType, mismatch.Divergence)
		assert.ErrorIs(t, err, ErrConsistencyMismatch)
	})

	t.Run("complex imaginary part", func(t *testing.T) {
		t.Parallel()
		x, err := buffer.NewComplex(buffer.Complex128, []int{3}, []complex128{1, 2i, 3})
		require.NoError(t, err)
		y, err := buffer.NewComplex(buffer.Complex128, []int{3}, []complex128{1, 2.5i, 3})
		require.NoError(t, err)
		var mismatch *MismatchError
		require.ErrorAs(t, Compare(x, y, Exact()), &mismatch)
		assert.Equal(t, []int{1}, mismatch.Position)
		assert.InDelta(t, 0.5, mismatch.MaxAbs, 1e-15)
	})
}

func TestDefaultTolerance(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Exact(), DefaultTolerance(transform.KindSpectrogram))
	assert.Equal(t, Tolerance{Abs: 1e-5, Rel: 1e-5}, DefaultTolerance(transform.KindGriffinLim))

	seq := transform.SequentialConfig{Steps: []transform.Config{
		transform.DefaultVolConfig(),
		transform.SequentialConfig{Steps: []transform.Config{transform.DefaultGriffinLimConfig()}},
	}}
	assert.Equal(t, Tolerance{Abs: 1e-5, Rel: 1e-5}, toleranceFor(seq))
}

func TestUnravel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{1, 2, 3}, unravel(1*20+2*5+3, []int{2, 4, 5}))
	assert.Equal(t, []int{0}, unravel(0, []int{7}))
}
