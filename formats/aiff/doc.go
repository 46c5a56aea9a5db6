// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files through github.com/go-audio/aiff.
//
// Integer PCM at 8, 16, 24 or 32 bits is supported, mono or multi-channel,
// at any sample rate. Samples are yielded as float32 in [-1, 1]:
//
//	src, err := aiff.Decoder{}.Decode(f)
//	if err != nil {
//		return err
//	}
//	x, rate, err := audio.Collect(src)
package aiff
