// SPDX-License-Identifier: EPL-2.0

// Package audxf applies deterministic, serializable audio transforms to
// audio files.
//
// The transforms live in the transform subpackage and operate on numeric
// buffers from the buffer subpackage. This package joins them to the
// decoders in formats:
//
//	x, rate, err := audxf.LoadFile("speech.wav", audxf.LoadOptions{Mono: true})
//	if err != nil {
//		return err
//	}
//	mel := transform.DefaultMelSpectrogramConfig()
//	mel.SampleRate = rate
//	spec, err := transform.MustNew(mel).Apply(x)
//
// ApplyFile runs a transform whose output is still a waveform (Vol, Fade,
// Resample, Vad and the like) from one file to another:
//
//	t, err := serialize.LoadPipelineFile("cleanup.yaml")
//	if err != nil {
//		return err
//	}
//	err = audxf.ApplyFile("in.mp3", "out.wav", t)
//
// # Supported Formats
//
//   - WAV, integer PCM 8 to 32 bit (formats/wav, also encodes)
//   - AIFF (formats/aiff)
//   - MP3 (formats/mp3)
//   - Ogg Vorbis (formats/vorbis)
package audxf
