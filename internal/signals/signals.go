// SPDX-License-Identifier: EPL-2.0

// Package signals generates seeded test signals: white noise for checking
// pipelines without an input file, and uniform random buffers.
package signals

import (
	"math/rand/v2"

	"github.com/ik5/audxf/buffer"
)

// newRand returns the deterministic generator behind every generator here.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0x74657374))
}

// Rand returns a float32 buffer of the given shape filled with uniform
// values in [0, 1).
func Rand(seed uint64, shape ...int) *buffer.Buffer {
	rng := newRand(seed)
	data := make([]float64, count(shape))
	for i := range data {
		data[i] = rng.Float64()
	}
	return buffer.MustNew(buffer.Float32, shape, data)
}

// RandComplex returns a complex64 buffer whose real and imaginary parts
// are uniform in [0, 1).
func RandComplex(seed uint64, shape ...int) *buffer.Buffer {
	rng := newRand(seed)
	data := make([]complex128, count(shape))
	for i := range data {
		data[i] = complex(rng.Float64(), rng.Float64())
	}
	b, err := buffer.NewComplex(buffer.Complex64, shape, data)
	if err != nil {
		panic(err)
	}
	return b
}

// WhiteNoiseOptions configures WhiteNoise. Zero fields take the defaults
// noted on each.
type WhiteNoiseOptions struct {
	// SampleRate defaults to 8000.
	SampleRate int
	// Duration in seconds defaults to 1.
	Duration float64
	// Channels defaults to 1.
	Channels int
	// Scale is the peak amplitude and defaults to 1.
	Scale float64
	Seed  uint64
}

// WhiteNoise returns a float32 buffer [channels, samples] of uniform noise
// in [-scale, scale).
func WhiteNoise(opts WhiteNoiseOptions) *buffer.Buffer {
	if opts.SampleRate == 0 {
		opts.SampleRate = 8000
	}
	if opts.Duration == 0 {
		opts.Duration = 1
	}
	if opts.Channels == 0 {
		opts.Channels = 1
	}
	if opts.Scale == 0 {
		opts.Scale = 1
	}
	n := int(float64(opts.SampleRate) * opts.Duration)
	rng := newRand(opts.Seed)
	data := make([]float64, opts.Channels*n)
	for i := range data {
		data[i] = opts.Scale * (2*rng.Float64() - 1)
	}
	return buffer.MustNew(buffer.Float32, []int{opts.Channels, n}, data)
}

func count(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
