// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"
	"math"
)

// MuLawEncode companders x in [-1, 1] into integer levels
// 0..quantizationChannels-1 (returned as floats).
func MuLawEncode(x float64, quantizationChannels int) float64 {
	mu := float64(quantizationChannels - 1)
	y := sign(x) * math.Log1p(mu*math.Abs(x)) / math.Log1p(mu)
	return math.Trunc((y+1)/2*mu + 0.5)
}

// MuLawDecode maps an encoded level back into [-1, 1].
func MuLawDecode(level float64, quantizationChannels int) float64 {
	mu := float64(quantizationChannels - 1)
	y := level/mu*2 - 1
	return sign(y) * (math.Exp(math.Abs(y)*math.Log1p(mu)) - 1) / mu
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// DBConfig parameterises amplitude to decibel conversion.
type DBConfig struct {
	// Multiplier is 10 for power and 20 for amplitude values.
	Multiplier float64
	// Amin clamps inputs from below to avoid log(0).
	Amin float64
	// DBMultiplier is log10(max(Amin, ref)).
	DBMultiplier float64
}

// AmplitudeToDB converts values in place: m*log10(max(x, amin)) - m*dbMult.
func AmplitudeToDB(x []float64, cfg DBConfig) {
	for i, v := range x {
		x[i] = cfg.Multiplier*math.Log10(math.Max(v, cfg.Amin)) - cfg.Multiplier*cfg.DBMultiplier
	}
}

// ClampTopDB limits the dynamic range of each consecutive group of
// groupSize values to topDB below the group maximum.
func ClampTopDB(x []float64, groupSize int, topDB float64) {
	for start := 0; start < len(x); start += groupSize {
		group := x[start:min(start+groupSize, len(x))]
		peak := math.Inf(-1)
		for _, v := range group {
			peak = math.Max(peak, v)
		}
		floor := peak - topDB
		for i, v := range group {
			group[i] = math.Max(v, floor)
		}
	}
}

// DBToAmplitude inverts AmplitudeToDB: ref * (10^(0.1*x))^power.
func DBToAmplitude(x []float64, ref, power float64) {
	for i, v := range x {
		x[i] = ref * math.Pow(math.Pow(10, 0.1*v), power)
	}
}

// FadeShape names a fade curve.
type FadeShape string

const (
	FadeLinear      FadeShape = "linear"
	FadeExponential FadeShape = "exponential"
	FadeLogarithmic FadeShape = "logarithmic"
	FadeQuarterSine FadeShape = "quarter_sine"
	FadeHalfSine    FadeShape = "half_sine"
)

// Valid reports whether s is a supported fade curve.
func (s FadeShape) Valid() bool {
	switch s {
	case FadeLinear, FadeExponential, FadeLogarithmic, FadeQuarterSine, FadeHalfSine:
		return true
	}
	return false
}

// FadeEnvelope returns the gain applied to each of length samples for a
// fade-in of fadeIn samples and a fade-out of fadeOut samples.
func FadeEnvelope(length, fadeIn, fadeOut int, shape FadeShape) ([]float64, error) {
	if fadeIn < 0 || fadeOut < 0 || fadeIn > length || fadeOut > length {
		return nil, fmt.Errorf("%w: fades of %d/%d samples over %d samples", ErrInvalidArgument, fadeIn, fadeOut, length)
	}
	if !shape.Valid() {
		return nil, fmt.Errorf("%w: fade shape %q", ErrInvalidArgument, shape)
	}
	env := make([]float64, length)
	for i := range env {
		env[i] = 1
	}
	if fadeIn > 0 {
		for i, f := range Linspace(0, 1, fadeIn) {
			env[i] *= fadeInCurve(f, shape)
		}
	}
	if fadeOut > 0 {
		off := length - fadeOut
		for i, f := range Linspace(0, 1, fadeOut) {
			env[off+i] *= fadeOutCurve(f, shape)
		}
	}
	return env, nil
}

func fadeInCurve(f float64, shape FadeShape) float64 {
	switch shape {
	case FadeExponential:
		return math.Pow(2, (f-1)*5)
	case FadeLogarithmic:
		return math.Log10(0.1+f) + 1
	case FadeQuarterSine:
		return math.Sin(f * math.Pi / 2)
	case FadeHalfSine:
		return math.Sin(f*math.Pi-math.Pi/2)/2 + 0.5
	}
	return f
}

func fadeOutCurve(f float64, shape FadeShape) float64 {
	switch shape {
	case FadeExponential:
		return math.Pow(2, -f*5)
	case FadeLogarithmic:
		return math.Log10(1.1-f) + 1
	case FadeQuarterSine:
		return math.Sin(f*math.Pi/2 + math.Pi/2)
	case FadeHalfSine:
		return math.Sin(f*math.Pi+math.Pi/2)/2 + 0.5
	}
	return 1 - f
}
