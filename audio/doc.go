// SPDX-License-Identifier: EPL-2.0

// Package audio streams decoded PCM and moves it in and out of numeric
// buffers.
//
// Decoders in the formats packages produce a Source of interleaved float32
// samples in [-1, 1]. Collect drains a Source into a buffer of shape
// [channels, frames], the layout transforms expect for waveforms:
//
//	src, err := registry.Decode("wav", f)
//	if err != nil {
//		return err
//	}
//	defer src.Close()
//	x, rate, err := audio.Collect(audio.NewMonoMixer(src))
//
// NewBufferSource goes the other way, streaming a waveform buffer so it
// can be encoded.
//
// ReadSamples returns io.EOF when the stream ends; any other error is a
// decoding failure.
package audio
