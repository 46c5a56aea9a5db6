// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSincResampler_Ratio(t *testing.T) {
	t.Parallel()

	r, err := NewSincResampler(44100, 22050, 6, 0.99, SincHann, 0)
	require.NoError(t, err)

	orig, nw := r.Ratio()
	assert.Equal(t, 2, orig)
	assert.Equal(t, 1, nw)
}

func TestSincResampler_OutputLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		orig, new int
		n, want   int
	}{
		{"downsample", 16000, 8000, 1001, 501},
		{"upsample", 8000, 16000, 1000, 2000},
		{"rational", 16000, 44100, 160, 441},
		{"identity", 16000, 16000, 123, 123},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			for _, method := range []ResampleMethod{SincHann, SincKaiser} {
				r, err := NewSincResampler(tt.orig, tt.new, 6, 0.99, method, DefaultKaiserBeta)
				require.NoError(t, err)
				assert.Equal(t, tt.want, r.OutputLength(tt.n))
				assert.Len(t, r.Resample(noise(3, tt.n)), tt.want)
			}
		})
	}
}

func TestSincResampler_PreservesDC(t *testing.T) {
	t.Parallel()

	r, err := NewSincResampler(16000, 8000, 6, 0.99, SincHann, 0)
	require.NoError(t, err)

	x := make([]float64, 2000)
	for i := range x {
		x[i] = 1
	}
	y := r.Resample(x)
	for i := 100; i < len(y)-100; i++ {
		assert.InDelta(t, 1.0, y[i], 0.02, "sample %d", i)
	}
}

func TestSincResampler_LowFrequencyTone(t *testing.T) {
	t.Parallel()

	r, err := NewSincResampler(8000, 16000, 6, 0.99, SincKaiser, DefaultKaiserBeta)
	require.NoError(t, err)

	x := make([]float64, 4000)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * 100 * float64(i) / 8000)
	}
	y := r.Resample(x)
	for i := 200; i < len(y)-200; i++ {
		want := math.Sin(2 * math.Pi * 100 * float64(i) / 16000)
		assert.InDelta(t, want, y[i], 0.02, "sample %d", i)
	}
}

func TestNewSincResampler_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		orig     int
		new      int
		width    int
		rolloff  float64
		method   ResampleMethod
		wantFail bool
	}{
		{"zero rate", 0, 8000, 6, 0.99, SincHann, true},
		{"zero width", 16000, 8000, 0, 0.99, SincHann, true},
		{"rolloff above one", 16000, 8000, 6, 1.5, SincHann, true},
		{"unknown method", 16000, 8000, 6, 0.99, "linear", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewSincResampler(tt.orig, tt.new, tt.width, tt.rolloff, tt.method, DefaultKaiserBeta)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}
