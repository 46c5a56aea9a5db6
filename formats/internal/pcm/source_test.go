// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"bytes"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	samples []int
	pos     int
	err     error
}

func (f *fakeReader) Format() *goaudio.Format {
	return &goaudio.Format{NumChannels: 2, SampleRate: 8000}
}

func (f *fakeReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := copy(buf.Data, f.samples[f.pos:])
	f.pos += n
	return n, nil
}

func TestSource_Scales(t *testing.T) {
	t.Parallel()

	src, err := NewSource(&fakeReader{samples: []int{0, 16384, -32768, 32767}}, 8000, 2, 16)
	require.NoError(t, err)

	dst := make([]float32, 2)
	n, err := src.ReadSamples(dst)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0.5}, dst[:n])

	n, err = src.ReadSamples(dst)
	require.NoError(t, err)
	assert.Equal(t, float32(-1), dst[0])
	assert.InDelta(t, 1, dst[1], 1e-4)
	assert.Equal(t, 2, n)

	n, err = src.ReadSamples(dst)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSource_Unsigned(t *testing.T) {
	t.Parallel()

	src, err := NewSource(&fakeReader{samples: []int{128, 0, 192}}, 8000, 1, 8)
	require.NoError(t, err)
	src.Unsigned()

	dst := make([]float32, 4)
	n, err := src.ReadSamples(dst)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []float32{0, -1, 0.5}, dst[:n])
}

func TestSource_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewSource(&fakeReader{}, 8000, 1, 12)
	require.ErrorIs(t, err, ErrUnsupportedBitDepth)
	_, err = NewSource(&fakeReader{}, 8000, 0, 16)
	require.ErrorIs(t, err, ErrUnsupportedLayout)

	src, err := NewSource(&fakeReader{err: io.ErrUnexpectedEOF}, 8000, 1, 16)
	require.NoError(t, err)
	_, err = src.ReadSamples(make([]float32, 4))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadSeeker(t *testing.T) {
	t.Parallel()

	br := bytes.NewReader([]byte("abc"))
	rs, err := ReadSeeker(br)
	require.NoError(t, err)
	assert.Same(t, br, rs)

	rs, err = ReadSeeker(io.MultiReader(bytes.NewBufferString("ab"), bytes.NewBufferString("c")))
	require.NoError(t, err)
	data, err := io.ReadAll(rs)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}
