// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes PCM WAV files through
// github.com/go-audio/wav.
//
// Decoder accepts integer PCM at 8, 16, 24 or 32 bits, mono or
// multi-channel, at any sample rate, and yields float32 samples in
// [-1, 1]. Encode writes a waveform buffer:
//
//	f, err := os.Create("out.wav")
//	if err != nil {
//		return err
//	}
//	defer f.Close()
//	err = wav.Encode(f, 16000, 16, x)
//
// Floating-point WAV is rejected with ErrOnlyPCMSupported.
package wav
