// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrUnknownFormat  = errors.New("unknown audio format")
	// ErrNotWaveform is returned when a buffer cannot be played back as
	// PCM: it must be real with shape (time) or (channels, time).
	ErrNotWaveform = errors.New("buffer is not a waveform")
)
