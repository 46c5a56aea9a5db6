// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/internal/audiotest"
)

func TestSequential_MatchesStepByStep(t *testing.T) {
	t.Parallel()

	spec := DefaultSpectrogramConfig()
	db := DefaultAmplitudeToDBConfig()
	db.TopDB = 80
	mask := DefaultTimeMaskingConfig()
	mask.TimeMaskParam = 3
	mask.Seed = 1

	seq, err := New(SequentialConfig{Steps: []Config{spec, db, mask}})
	require.NoError(t, err)

	x := audiotest.Rand(9, 2, 1000)
	got, err := seq.Apply(x)
	require.NoError(t, err)

	want := x
	for _, c := range []Config{spec, db, mask} {
		want, err = MustNew(c).Apply(want)
		require.NoError(t, err)
	}
	assert.True(t, buffer.Equal(want, got))
	assert.Equal(t, []int{2, 201, 6}, got.Shape())

	cfg, ok := seq.Config().(SequentialConfig)
	require.True(t, ok)
	assert.Equal(t, []Config{spec, db, mask}, cfg.Steps)
}

func TestSequential_Empty(t *testing.T) {
	t.Parallel()

	x := audiotest.Rand(1, 3, 4)
	out, err := NewSequential().Apply(x)
	require.NoError(t, err)
	assert.True(t, buffer.Equal(x, out))
}

func TestSequential_Errors(t *testing.T) {
	t.Parallel()

	_, err := New(SequentialConfig{Steps: []Config{DefaultVolConfig(), nil}})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(SequentialConfig{Steps: []Config{ComplexNormConfig{Power: -1}}})
	require.ErrorIs(t, err, ErrInvalidConfig)

	err = SequentialConfig{Steps: []Config{FadeConfig{FadeShape: "bogus"}}}.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)

	// vol passes the rank one waveform through and masking rejects it
	seq := NewSequential(MustNew(DefaultVolConfig()), MustNew(DefaultTimeMaskingConfig()))
	_, err = seq.Apply(audiotest.Rand(1, 10))
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = seq.Apply(nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSequential_Nested(t *testing.T) {
	t.Parallel()

	inner := SequentialConfig{Steps: []Config{DefaultMelSpectrogramConfig()}}
	outer, err := New(SequentialConfig{Steps: []Config{inner, DefaultAmplitudeToDBConfig()}})
	require.NoError(t, err)

	out, err := outer.Apply(audiotest.Rand(2, 1, 1000))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 128, 6}, out.Shape())
	assert.Len(t, outer.(*Sequential).Steps(), 2)
}
