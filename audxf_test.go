// SPDX-License-Identifier: EPL-2.0

package audxf

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audxf/audio"
	"github.com/ik5/audxf/internal/audiotest"
	"github.com/ik5/audxf/transform"
)

func TestDecoders(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"aif", "aiff", "mp3", "oga", "ogg", "wav", "wave"}, Decoders().Formats())
}

func TestWriteAndLoadFile(t *testing.T) {
	t.Parallel()

	x := audiotest.WhiteNoise(audiotest.WhiteNoiseOptions{SampleRate: 8000, Duration: 0.25, Channels: 2, Scale: 0.5, Seed: 4})
	path := filepath.Join(t.TempDir(), "noise.wav")
	require.NoError(t, WriteWAVFile(path, x, 8000))

	y, rate, err := LoadFile(path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 8000, rate)
	require.Equal(t, []int{2, 2000}, y.Shape())

	mono, _, err := LoadFile(path, LoadOptions{Mono: true})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2000}, mono.Shape())

	ys, ms := y.Floats(), mono.Floats()
	for i := range 2000 {
		assert.InDelta(t, (ys[i]+ys[2000+i])/2, ms[i], 1e-6)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "x.flac")
	require.NoError(t, WriteWAVFile(path, audiotest.Rand(1, 1, 100), 8000))

	_, _, err := LoadFile(path, LoadOptions{})
	require.ErrorIs(t, err, audio.ErrUnknownFormat)

	_, _, err = LoadFile(path, LoadOptions{Format: "wav"})
	require.NoError(t, err)

	_, _, err = LoadFile(filepath.Join(dir, "missing.wav"), LoadOptions{})
	require.Error(t, err)
}

func TestApplyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.wav")
	x := audiotest.WhiteNoise(audiotest.WhiteNoiseOptions{SampleRate: 16000, Duration: 0.5, Scale: 0.5, Seed: 2})
	require.NoError(t, WriteWAVFile(in, x, 16000))

	resample := transform.DefaultResampleConfig()
	resample.NewFreq = 8000
	pipeline := transform.MustNew(transform.SequentialConfig{Steps: []transform.Config{
		transform.VolConfig{Gain: -6, GainType: transform.GainDB},
		resample,
	}})
	require.NoError(t, ApplyFile(in, out, pipeline))

	y, rate, err := LoadFile(out, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 8000, rate)
	assert.Equal(t, []int{1, 4000}, y.Shape())
}

func TestApplyFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	require.NoError(t, WriteWAVFile(in, audiotest.Rand(3, 1, 8000), 8000))

	resample := transform.DefaultResampleConfig()
	err := ApplyFile(in, filepath.Join(dir, "a.wav"), transform.MustNew(resample))
	require.ErrorIs(t, err, ErrRateMismatch)

	spectrum := filepath.Join(dir, "b.wav")
	err = ApplyFile(in, spectrum, transform.MustNew(transform.DefaultSpectrogramConfig()))
	require.ErrorIs(t, err, audio.ErrNotWaveform)
	assert.NoFileExists(t, spectrum)
}

func TestWriteWAVFile_RemovesFileOnError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "complex.wav")
	err := WriteWAVFile(path, audiotest.RandComplex(1, 1, 100), 8000)
	require.ErrorIs(t, err, audio.ErrNotWaveform)
	assert.NoFileExists(t, path)
}

func TestOutputRate(t *testing.T) {
	t.Parallel()

	up := transform.DefaultResampleConfig()
	up.OrigFreq, up.NewFreq = 8000, 16000
	down := transform.DefaultResampleConfig()
	down.OrigFreq, down.NewFreq = 16000, 11025

	rate, err := OutputRate(transform.SequentialConfig{Steps: []transform.Config{up, transform.DefaultVolConfig(), down}}, 8000)
	require.NoError(t, err)
	assert.Equal(t, 11025, rate)

	rate, err = OutputRate(transform.DefaultFadeConfig(), 44100)
	require.NoError(t, err)
	assert.Equal(t, 44100, rate)
}
