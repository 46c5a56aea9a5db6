// SPDX-License-Identifier: EPL-2.0

// Package transform defines the catalog of audio transforms.
//
// Every kind has a config struct carrying its parameters and a
// DefaultXConfig constructor with the usual defaults. New turns a config
// into a Transform, validating parameters and precomputing windows,
// filterbanks and resampling kernels:
//
//	cfg := transform.DefaultSpectrogramConfig()
//	cfg.HopLength = 100
//	spec, err := transform.New(cfg)
//	if err != nil {
//		return err // wraps transform.ErrInvalidConfig
//	}
//	out, err := spec.Apply(waveform) // (..., time) -> (..., 201, frames)
//
// # Shapes
//
// Waveforms are (..., time). Spectrograms are (..., freq, time). Complex
// spectrograms are either complex buffers (..., freq, time) or real buffers
// in pseudo-complex layout (..., freq, time, 2); transforms that consume
// complex data accept both and produce the same values. SlidingWindowCmn
// works on (..., time, feature). Leading dimensions are treated as a batch.
//
// Output precision follows the input: float32 and complex64 inputs give
// float32 or complex64 outputs, float64 and complex128 give float64 or
// complex128.
//
// # Randomness
//
// FrequencyMasking, TimeMasking and GriffinLim with rand_init draw from a
// generator seeded by the config's seed field on every call, so Apply is a
// pure function of the config and the input.
//
// # Errors
//
// New fails with ErrInvalidConfig for parameters outside their domain and
// with ErrUnknownKind for configs outside the catalog. Apply fails with
// ErrInvalidInput for inputs of the wrong dtype, rank or size.
//
// # Concurrency
//
// Transforms are immutable after construction and safe to share between
// goroutines.
package transform
