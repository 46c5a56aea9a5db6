// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/internal/audiotest"
)

func TestSpectrogram_Shape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		center bool
		frames int
	}{
		{"centered", true, 6},
		{"uncentered", false, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultSpectrogramConfig()
			cfg.Center = tt.center
			spec := MustNew(cfg)

			out, err := spec.Apply(audiotest.Rand(1, 1, 1000))
			require.NoError(t, err)
			assert.Equal(t, []int{1, 201, tt.frames}, out.Shape())
			assert.Equal(t, buffer.Float32, out.DType())
		})
	}
}

func TestSpectrogram_ReturnComplex(t *testing.T) {
	t.Parallel()

	x := audiotest.Rand(2, 3, 1000)

	cfg := DefaultSpectrogramConfig()
	cfg.ReturnComplex = true
	c, err := MustNew(cfg).Apply(x)
	require.NoError(t, err)
	assert.Equal(t, buffer.Complex64, c.DType())
	assert.Equal(t, []int{3, 201, 6}, c.Shape())

	p, err := MustNew(DefaultSpectrogramConfig()).Apply(x)
	require.NoError(t, err)

	power := p.Floats()
	for i, v := range c.Complexes() {
		want := real(v)*real(v) + imag(v)*imag(v)
		assert.InDelta(t, want, power[i], 1e-3*max(1, want))
	}
}

func TestSpectrogram_PrecisionFollowsInput(t *testing.T) {
	t.Parallel()

	x, err := audiotest.Rand(3, 1, 800).Promote(buffer.Float64)
	require.NoError(t, err)

	out, err := MustNew(DefaultSpectrogramConfig()).Apply(x)
	require.NoError(t, err)
	assert.Equal(t, buffer.Float64, out.DType())
}

func TestSpectrogram_Errors(t *testing.T) {
	t.Parallel()

	t.Run("config", func(t *testing.T) {
		t.Parallel()

		bad := []SpectrogramConfig{
			func() SpectrogramConfig { c := DefaultSpectrogramConfig(); c.NFFT = 0; return c }(),
			func() SpectrogramConfig { c := DefaultSpectrogramConfig(); c.WinLength = 500; return c }(),
			func() SpectrogramConfig { c := DefaultSpectrogramConfig(); c.Power = 0; return c }(),
			func() SpectrogramConfig { c := DefaultSpectrogramConfig(); c.Window = "triangle"; return c }(),
			func() SpectrogramConfig { c := DefaultSpectrogramConfig(); c.PadMode = "wrap"; return c }(),
		}
		for _, cfg := range bad {
			_, err := New(cfg)
			require.ErrorIs(t, err, ErrInvalidConfig, "%+v", cfg)
		}
	})

	t.Run("input", func(t *testing.T) {
		t.Parallel()

		spec := MustNew(DefaultSpectrogramConfig())

		_, err := spec.Apply(nil)
		require.ErrorIs(t, err, ErrInvalidInput)

		_, err = spec.Apply(audiotest.RandComplex(1, 1, 1000))
		require.ErrorIs(t, err, ErrInvalidInput)

		// reflect padding needs more samples than half the window
		_, err = spec.Apply(audiotest.Rand(1, 1, 100))
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestInverseSpectrogram_RoundTrip(t *testing.T) {
	t.Parallel()

	x := audiotest.WhiteNoise(audiotest.WhiteNoiseOptions{SampleRate: 8000, Channels: 2, Scale: 0.5, Seed: 4})

	scfg := DefaultSpectrogramConfig()
	scfg.HopLength = 100
	scfg.ReturnComplex = true
	spec, err := MustNew(scfg).Apply(x)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 201, 81}, spec.Shape())

	icfg := DefaultInverseSpectrogramConfig()
	icfg.HopLength = 100
	inv := MustNew(icfg)

	pseudo, err := buffer.ToPseudoComplex(spec)
	require.NoError(t, err)

	for name, in := range map[string]*buffer.Buffer{"complex": spec, "pseudo": pseudo} {
		y, err := inv.Apply(in)
		require.NoError(t, err, name)
		assert.Equal(t, []int{2, 8000}, y.Shape(), name)
		assert.Equal(t, buffer.Float32, y.DType(), name)
		assert.InDeltaSlice(t, x.Floats(), y.Floats(), 1e-4, name)
	}
}

func TestInverseSpectrogram_Length(t *testing.T) {
	t.Parallel()

	scfg := DefaultSpectrogramConfig()
	scfg.ReturnComplex = true
	spec, err := MustNew(scfg).Apply(audiotest.Rand(5, 1, 1000))
	require.NoError(t, err)

	icfg := DefaultInverseSpectrogramConfig()
	icfg.Length = 1300
	y, err := MustNew(icfg).Apply(spec)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1300}, y.Shape())

	// frames cover 1200 samples past the centre padding, the rest is zero
	for _, v := range y.Floats()[1200:] {
		assert.Zero(t, v)
	}

	icfg.Length = 0
	y, err = MustNew(icfg).Apply(spec)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1000}, y.Shape())
}

func TestInverseSpectrogram_Errors(t *testing.T) {
	t.Parallel()

	inv := MustNew(DefaultInverseSpectrogramConfig())

	_, err := inv.Apply(audiotest.Rand(1, 1, 201, 6))
	require.ErrorIs(t, err, ErrInvalidInput, "real input that is not pseudo-complex")

	_, err = inv.Apply(audiotest.RandComplex(1, 1, 200, 6))
	require.ErrorIs(t, err, ErrInvalidInput, "wrong bin count")

	_, err = inv.Apply(audiotest.RandComplex(1, 1, 201, 0))
	require.ErrorIs(t, err, ErrInvalidInput, "no frames")

	cfg := DefaultInverseSpectrogramConfig()
	cfg.Length = -1
	_, err = New(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestGriffinLim_Shape(t *testing.T) {
	t.Parallel()

	cfg := DefaultGriffinLimConfig()
	cfg.NIter = 4
	cfg.Length = 1000
	cfg.RandInit = false

	y, err := MustNew(cfg).Apply(audiotest.Rand(6, 1, 201, 6))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1000}, y.Shape())
	assert.Equal(t, buffer.Float32, y.DType())
}

func TestGriffinLim_Deterministic(t *testing.T) {
	t.Parallel()

	cfg := DefaultGriffinLimConfig()
	cfg.NIter = 3
	cfg.Seed = 42
	gl := MustNew(cfg)
	spec := audiotest.Rand(7, 2, 201, 5)

	a, err := gl.Apply(spec)
	require.NoError(t, err)
	b, err := gl.Apply(spec)
	require.NoError(t, err)
	assert.True(t, buffer.Equal(a, b))
	assert.Equal(t, []int{2, 800}, a.Shape())
}

func TestGriffinLim_ConvergesOnRealSpectrum(t *testing.T) {
	t.Parallel()

	x := audiotest.WhiteNoise(audiotest.WhiteNoiseOptions{SampleRate: 2000, Scale: 0.5, Seed: 8})
	scfg := DefaultSpectrogramConfig()
	scfg.Power = 1
	mag, err := MustNew(scfg).Apply(x)
	require.NoError(t, err)

	cfg := DefaultGriffinLimConfig()
	cfg.Power = 1
	cfg.Length = 2000
	cfg.NIter = 16
	y, err := MustNew(cfg).Apply(mag)
	require.NoError(t, err)

	rebuilt, err := MustNew(scfg).Apply(y)
	require.NoError(t, err)

	var diff, total float64
	want := mag.Floats()
	for i, v := range rebuilt.Floats() {
		d := v - want[i]
		diff += d * d
		total += want[i] * want[i]
	}
	assert.Less(t, diff/total, 0.5)
}

func TestGriffinLim_Errors(t *testing.T) {
	t.Parallel()

	for _, mut := range []func(*GriffinLimConfig){
		func(c *GriffinLimConfig) { c.NIter = 0 },
		func(c *GriffinLimConfig) { c.Momentum = 1 },
		func(c *GriffinLimConfig) { c.Momentum = -0.1 },
		func(c *GriffinLimConfig) { c.Power = 0 },
		func(c *GriffinLimConfig) { c.Length = -5 },
	} {
		cfg := DefaultGriffinLimConfig()
		mut(&cfg)
		_, err := New(cfg)
		require.ErrorIs(t, err, ErrInvalidConfig, "%+v", cfg)
	}

	cfg := DefaultGriffinLimConfig()
	cfg.Length = 900
	_, err := MustNew(cfg).Apply(audiotest.Rand(1, 1, 201, 6))
	require.ErrorIs(t, err, ErrInvalidInput, "length inconsistent with frame count")

	_, err = MustNew(DefaultGriffinLimConfig()).Apply(audiotest.Rand(1, 1, 100, 6))
	require.ErrorIs(t, err, ErrInvalidInput)
}
