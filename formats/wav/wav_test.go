// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audxf/audio"
	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/internal/audiotest"
	"github.com/ik5/audxf/utils"
)

func encodeFile(t *testing.T, rate, depth int, x *buffer.Buffer) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "x.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, Encode(f, rate, depth, x))
	return path
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		depth    int
		channels int
		rate     int
	}{
		{16, 1, 8000},
		{16, 2, 44100},
		{24, 2, 16000},
		{32, 1, 22050},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			t.Parallel()

			x := audiotest.WhiteNoise(audiotest.WhiteNoiseOptions{
				SampleRate: tt.rate, Duration: 0.05, Channels: tt.channels, Scale: 0.9, Seed: uint64(tt.depth),
			})
			path := encodeFile(t, tt.rate, tt.depth, x)

			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()

			src, err := Decoder{}.Decode(f)
			require.NoError(t, err)
			assert.Equal(t, tt.rate, src.SampleRate())
			assert.Equal(t, tt.channels, src.Channels())

			y, rate, err := audio.Collect(src)
			require.NoError(t, err)
			assert.Equal(t, tt.rate, rate)
			require.Equal(t, x.Shape(), y.Shape())

			step := 2.0 / float64(int64(1)<<(tt.depth-1))
			xs, ys := x.Floats(), y.Floats()
			for i := range xs {
				require.InDelta(t, xs[i], ys[i], step+1e-7, "sample %d", i)
			}
		})
	}
}

func TestEncode_16BitQuantization(t *testing.T) {
	t.Parallel()

	x, rate, err := audio.Collect(audiotest.NewSineSource(8000, 2, 400, 440))
	require.NoError(t, err)

	f, err := os.Open(encodeFile(t, rate, 16, x))
	require.NoError(t, err)
	defer f.Close()

	src, err := Decoder{}.Decode(f)
	require.NoError(t, err)
	y, _, err := audio.Collect(src)
	require.NoError(t, err)
	require.Equal(t, []int{2, 400}, y.Shape())

	xs, ys := x.Floats(), y.Floats()
	for i := range xs {
		want := float32(float64(utils.Float32ToInt16(float32(xs[i]))) / 32768)
		require.Equal(t, float64(want), ys[i], "sample %d", i)
	}
}

func TestDecode_NonSeekableReader(t *testing.T) {
	t.Parallel()

	x := buffer.MustNew(buffer.Float64, []int{6}, []float64{0, 0.5, -0.5, 1, -1, 0.25})
	data, err := os.ReadFile(encodeFile(t, 8000, 16, x))
	require.NoError(t, err)

	src, err := Decoder{}.Decode(io.MultiReader(bytes.NewReader(data)))
	require.NoError(t, err)

	dst := make([]float32, 16)
	n, err := src.ReadSamples(dst)
	assert.ErrorIs(t, err, io.EOF)
	require.Equal(t, 6, n)
	assert.InDelta(t, 0.5, dst[1], 1e-4)
	assert.InDelta(t, -1, dst[4], 1e-9)
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("definitely not RIFF data at all, not even close")))
	require.ErrorIs(t, err, ErrNotWavFile)

	_, err = Decoder{}.Decode(bytes.NewReader(nil))
	require.ErrorIs(t, err, ErrNotWavFile)
}

func TestEncode_Errors(t *testing.T) {
	t.Parallel()

	var f *os.File
	require.ErrorIs(t, Encode(f, 8000, 12, audiotest.Rand(1, 1, 10)), ErrOnlyPCMSupported)
	require.ErrorIs(t, Encode(f, 8000, 16, audiotest.RandComplex(1, 1, 10)), audio.ErrNotWaveform)
}
