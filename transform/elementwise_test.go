// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/dsp"
	"github.com/ik5/audxf/internal/audiotest"
)

func TestAmplitudeToDB_TopDB(t *testing.T) {
	t.Parallel()

	cfg := DefaultAmplitudeToDBConfig()
	cfg.TopDB = 80
	out, err := MustNew(cfg).Apply(audiotest.Rand(1, 6, 201))
	require.NoError(t, err)
	assert.Equal(t, []int{6, 201}, out.Shape())

	data := out.Floats()
	hi, lo := math.Inf(-1), math.Inf(1)
	for _, v := range data {
		hi = math.Max(hi, v)
		lo = math.Min(lo, v)
	}
	assert.LessOrEqual(t, hi-lo, 80.0+1e-4)

	_, err = MustNew(cfg).Apply(audiotest.Rand(1, 201))
	require.ErrorIs(t, err, ErrInvalidInput, "top_db needs a matrix")
}

func TestAmplitudeToDB_Inverse(t *testing.T) {
	t.Parallel()

	x, err := audiotest.Rand(2, 3, 50).Promote(buffer.Float64)
	require.NoError(t, err)

	tests := []struct {
		stype string
		power float64
	}{
		{STypePower, 1},
		{STypeMagnitude, 0.5},
	}

	for _, tt := range tests {
		to := DefaultAmplitudeToDBConfig()
		to.Stype = tt.stype
		db, err := MustNew(to).Apply(x)
		require.NoError(t, err)

		from := DefaultDBToAmplitudeConfig()
		from.Power = tt.power
		back, err := MustNew(from).Apply(db)
		require.NoError(t, err)

		want := x.Floats()
		for i, v := range back.Floats() {
			assert.InEpsilon(t, want[i], v, 1e-9, tt.stype)
		}
	}
}

func TestAmplitudeToDB_Errors(t *testing.T) {
	t.Parallel()

	for _, mut := range []func(*AmplitudeToDBConfig){
		func(c *AmplitudeToDBConfig) { c.Stype = "energy" },
		func(c *AmplitudeToDBConfig) { c.TopDB = -1 },
		func(c *AmplitudeToDBConfig) { c.Amin = 0 },
		func(c *AmplitudeToDBConfig) { c.Ref = 0 },
	} {
		cfg := DefaultAmplitudeToDBConfig()
		mut(&cfg)
		_, err := New(cfg)
		require.ErrorIs(t, err, ErrInvalidConfig, "%+v", cfg)
	}

	_, err := New(DBToAmplitudeConfig{Ref: 1})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestComplexNorm(t *testing.T) {
	t.Parallel()

	x := audiotest.Rand(3, 1, 2, 201, 2)
	out, err := MustNew(DefaultComplexNormConfig()).Apply(x)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 201}, out.Shape())
	assert.Equal(t, buffer.Float32, out.DType())

	in := x.Floats()
	for i, v := range out.Floats() {
		assert.InDelta(t, math.Hypot(in[2*i], in[2*i+1]), v, 1e-6)
	}

	cfg := DefaultComplexNormConfig()
	cfg.Power = 2
	sq, err := MustNew(cfg).Apply(audiotest.RandComplex(3, 4, 5))
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5}, sq.Shape())

	_, err = MustNew(DefaultComplexNormConfig()).Apply(audiotest.Rand(1, 4, 5))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestMuLaw_RoundTrip(t *testing.T) {
	t.Parallel()

	x := audiotest.WhiteNoise(audiotest.WhiteNoiseOptions{SampleRate: 1000, Seed: 5})

	enc, err := MustNew(DefaultMuLawEncodingConfig()).Apply(x)
	require.NoError(t, err)
	for _, v := range enc.Floats() {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 255.0)
		assert.Equal(t, math.Trunc(v), v)
	}

	dec, err := MustNew(DefaultMuLawDecodingConfig()).Apply(enc)
	require.NoError(t, err)
	assert.InDeltaSlice(t, x.Floats(), dec.Floats(), 0.03)

	_, err = New(MuLawEncodingConfig{QuantizationChannels: 1})
	require.ErrorIs(t, err, ErrInvalidConfig)
	_, err = New(MuLawDecodingConfig{})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFade(t *testing.T) {
	t.Parallel()

	x := audiotest.WhiteNoise(audiotest.WhiteNoiseOptions{SampleRate: 8000, Channels: 2, Seed: 6})
	cfg := FadeConfig{FadeInLen: 3000, FadeOutLen: 3000, FadeShape: dsp.FadeLinear}

	out, err := MustNew(cfg).Apply(x)
	require.NoError(t, err)
	assert.Equal(t, x.Shape(), out.Shape())

	in, got := x.Floats(), out.Floats()
	for _, ch := range []int{0, 8000} {
		assert.Zero(t, got[ch])
		assert.Zero(t, got[ch+7999])
		assert.Equal(t, in[ch+4000], got[ch+4000])
		assert.LessOrEqual(t, math.Abs(got[ch+1500]), math.Abs(in[ch+1500]))
	}

	cfg.FadeInLen = 9000
	_, err = MustNew(cfg).Apply(x)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = New(FadeConfig{FadeShape: "cosine"})
	require.ErrorIs(t, err, ErrInvalidConfig)
	_, err = New(FadeConfig{FadeInLen: -1, FadeShape: dsp.FadeLinear})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestVol(t *testing.T) {
	t.Parallel()

	x := audiotest.WhiteNoise(audiotest.WhiteNoiseOptions{SampleRate: 1000, Scale: 0.5, Seed: 2})

	t.Run("unit gain", func(t *testing.T) {
		t.Parallel()

		out, err := MustNew(DefaultVolConfig()).Apply(x)
		require.NoError(t, err)
		assert.True(t, buffer.Equal(x, out))
	})

	t.Run("gain types agree", func(t *testing.T) {
		t.Parallel()

		amp, err := MustNew(VolConfig{Gain: 1.1, GainType: GainAmplitude}).Apply(x)
		require.NoError(t, err)
		db, err := MustNew(VolConfig{Gain: 20 * math.Log10(1.1), GainType: GainDB}).Apply(x)
		require.NoError(t, err)
		pow, err := MustNew(VolConfig{Gain: 1.21, GainType: GainPower}).Apply(x)
		require.NoError(t, err)

		assert.InDeltaSlice(t, amp.Floats(), db.Floats(), 1e-6)
		assert.InDeltaSlice(t, amp.Floats(), pow.Floats(), 1e-6)
	})

	t.Run("clamps", func(t *testing.T) {
		t.Parallel()

		out, err := MustNew(VolConfig{Gain: 10, GainType: GainAmplitude}).Apply(x)
		require.NoError(t, err)
		for _, v := range out.Floats() {
			assert.LessOrEqual(t, math.Abs(v), 1.0)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		_, err := New(VolConfig{Gain: -1, GainType: GainAmplitude})
		require.ErrorIs(t, err, ErrInvalidConfig)
		_, err = New(VolConfig{Gain: 1, GainType: "loudness"})
		require.ErrorIs(t, err, ErrInvalidConfig)
		_, err = New(VolConfig{Gain: math.Inf(1), GainType: GainDB})
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}
