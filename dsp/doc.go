// SPDX-License-Identifier: EPL-2.0

// Package dsp holds the numeric kernels behind the transform catalog.
//
// Everything here works on plain []float64 and []complex128 slices so the
// kernels stay independent of the buffer layout. Spectrograms are laid out
// frequency-major: bin f of frame t lives at index f*frames+t.
//
// FFTs are computed with gonum's dsp/fourier package. A new FFT plan is
// created per call, so every function in this package is safe to call
// concurrently.
//
// # Conventions
//
//   - Windows are periodic, as used for spectral analysis.
//   - STFT frames are centered with reflect padding when requested and the
//     window is zero padded to the FFT size.
//   - ISTFT normalises overlap-add by the squared window envelope.
//   - Filterbanks are [freq][filter] matrices.
package dsp
