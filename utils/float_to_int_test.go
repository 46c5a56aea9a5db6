// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestFloat32ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input float32
		want  int16
	}{
		{name: "zero", input: 0, want: 0},
		{name: "max positive", input: 1, want: math.MaxInt16},
		{name: "max negative", input: -1, want: math.MinInt16},
		{name: "half positive", input: 0.5, want: 16383},
		{name: "half negative", input: -0.5, want: -16384},
		{name: "clamp over max", input: 1.5, want: math.MaxInt16},
		{name: "clamp under min", input: -100, want: math.MinInt16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Float32ToInt16(tt.input); got != tt.want {
				t.Errorf("Float32ToInt16(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestPCMScale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		depth int
		want  float64
		ok    bool
	}{
		{8, 128, true},
		{16, 32768, true},
		{24, 8388608, true},
		{32, 2147483648, true},
		{12, 0, false},
		{0, 0, false},
	}

	for _, tt := range tests {
		got, ok := PCMScale(tt.depth)
		if got != tt.want || ok != tt.ok {
			t.Errorf("PCMScale(%d) = %v, %v, want %v, %v", tt.depth, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPCMRoundTrip(t *testing.T) {
	t.Parallel()

	for _, depth := range []int{16, 24, 32} {
		step := 1 / MustPCMScale(depth)
		for _, x := range []float64{-1, -0.75, -0.001, 0, 0.3, 0.999} {
			got := float64(PCMToFloat(FloatToPCM(x, depth), depth))
			if math.Abs(got-x) > 2*step+1e-7 {
				t.Errorf("depth %d: %v came back as %v", depth, x, got)
			}
		}
	}
}

func TestMustPCMScale_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("MustPCMScale(20) did not panic")
		}
	}()
	MustPCMScale(20)
}
