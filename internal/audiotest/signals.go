// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/internal/signals"
)

// WhiteNoiseOptions configures WhiteNoise.
type WhiteNoiseOptions = signals.WhiteNoiseOptions

// Rand returns a float32 buffer of uniform values in [0, 1).
func Rand(seed uint64, shape ...int) *buffer.Buffer { return signals.Rand(seed, shape...) }

// RandComplex returns a complex64 buffer with uniform parts in [0, 1).
func RandComplex(seed uint64, shape ...int) *buffer.Buffer {
	return signals.RandComplex(seed, shape...)
}

// WhiteNoise returns a float32 buffer [channels, samples] of uniform noise.
func WhiteNoise(opts WhiteNoiseOptions) *buffer.Buffer { return signals.WhiteNoise(opts) }
