// SPDX-License-Identifier: EPL-2.0

package utils

import "fmt"

// Float32ToInt16 converts a sample in [-1, 1] to 16-bit PCM, clamping
// values outside the range.
func Float32ToInt16(x float32) int16 {
	return int16(FloatToPCM(float64(x), 16))
}

// PCMScale is the magnitude of full scale for signed PCM of the given bit
// depth. It reports false for depths other than 8, 16, 24 and 32.
func PCMScale(bitDepth int) (float64, bool) {
	switch bitDepth {
	case 8, 16, 24, 32:
		return float64(int64(1) << (bitDepth - 1)), true
	}
	return 0, false
}

// MustPCMScale is PCMScale for depths already checked by the caller.
func MustPCMScale(bitDepth int) float64 {
	s, ok := PCMScale(bitDepth)
	if !ok {
		panic(fmt.Sprintf("utils: unsupported bit depth %d", bitDepth))
	}
	return s
}

// PCMToFloat maps a signed PCM value to [-1, 1).
func PCMToFloat(v int, bitDepth int) float32 {
	return float32(float64(v) / MustPCMScale(bitDepth))
}

// FloatToPCM maps x in [-1, 1] to signed PCM of the given depth. The
// positive peak is scale-1 so that 1.0 does not overflow.
func FloatToPCM(x float64, bitDepth int) int {
	scale := MustPCMScale(bitDepth)
	x = min(max(x, -1), 1)
	if x >= 0 {
		return int(x * (scale - 1))
	}
	return int(x * scale)
}
