// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
)

// Kind names a catalog entry.
type Kind string

const (
	KindSpectrogram        Kind = "Spectrogram"
	KindInverseSpectrogram Kind = "InverseSpectrogram"
	KindGriffinLim         Kind = "GriffinLim"
	KindAmplitudeToDB      Kind = "AmplitudeToDB"
	KindDBToAmplitude      Kind = "DBToAmplitude"
	KindMelScale           Kind = "MelScale"
	KindMelSpectrogram     Kind = "MelSpectrogram"
	KindMFCC               Kind = "MFCC"
	KindLFCC               Kind = "LFCC"
	KindResample           Kind = "Resample"
	KindComplexNorm        Kind = "ComplexNorm"
	KindMuLawEncoding      Kind = "MuLawEncoding"
	KindMuLawDecoding      Kind = "MuLawDecoding"
	KindFade               Kind = "Fade"
	KindFrequencyMasking   Kind = "FrequencyMasking"
	KindTimeMasking        Kind = "TimeMasking"
	KindVol                Kind = "Vol"
	KindSlidingWindowCmn   Kind = "SlidingWindowCmn"
	KindVad                Kind = "Vad"
	KindSpectralCentroid   Kind = "SpectralCentroid"
	KindTimeStretch        Kind = "TimeStretch"
	KindPitchShift         Kind = "PitchShift"
	KindComputeDeltas      Kind = "ComputeDeltas"
	KindSequential         Kind = "Sequential"
)

var catalog = []Kind{
	KindSpectrogram,
	KindInverseSpectrogram,
	KindGriffinLim,
	KindAmplitudeToDB,
	KindDBToAmplitude,
	KindMelScale,
	KindMelSpectrogram,
	KindMFCC,
	KindLFCC,
	KindResample,
	KindComplexNorm,
	KindMuLawEncoding,
	KindMuLawDecoding,
	KindFade,
	KindFrequencyMasking,
	KindTimeMasking,
	KindVol,
	KindSlidingWindowCmn,
	KindVad,
	KindSpectralCentroid,
	KindTimeStretch,
	KindPitchShift,
	KindComputeDeltas,
	KindSequential,
}

// Kinds lists every catalog entry.
func Kinds() []Kind { return slices.Clone(catalog) }

// ParseKind looks a kind up by name.
func ParseKind(name string) (Kind, error) {
	k := Kind(name)
	if !slices.Contains(catalog, k) {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return k, nil
}

// DefaultConfig returns the default parameters of kind k.
func DefaultConfig(k Kind) (Config, error) {
	switch k {
	case KindSpectrogram:
		return DefaultSpectrogramConfig(), nil
	case KindInverseSpectrogram:
		return DefaultInverseSpectrogramConfig(), nil
	case KindGriffinLim:
		return DefaultGriffinLimConfig(), nil
	case KindAmplitudeToDB:
		return DefaultAmplitudeToDBConfig(), nil
	case KindDBToAmplitude:
		return DefaultDBToAmplitudeConfig(), nil
	case KindMelScale:
		return DefaultMelScaleConfig(), nil
	case KindMelSpectrogram:
		return DefaultMelSpectrogramConfig(), nil
	case KindMFCC:
		return DefaultMFCCConfig(), nil
	case KindLFCC:
		return DefaultLFCCConfig(), nil
	case KindResample:
		return DefaultResampleConfig(), nil
	case KindComplexNorm:
		return DefaultComplexNormConfig(), nil
	case KindMuLawEncoding:
		return DefaultMuLawEncodingConfig(), nil
	case KindMuLawDecoding:
		return DefaultMuLawDecodingConfig(), nil
	case KindFade:
		return DefaultFadeConfig(), nil
	case KindFrequencyMasking:
		return DefaultFrequencyMaskingConfig(), nil
	case KindTimeMasking:
		return DefaultTimeMaskingConfig(), nil
	case KindVol:
		return DefaultVolConfig(), nil
	case KindSlidingWindowCmn:
		return DefaultSlidingWindowCmnConfig(), nil
	case KindVad:
		return DefaultVadConfig(), nil
	case KindSpectralCentroid:
		return DefaultSpectralCentroidConfig(), nil
	case KindTimeStretch:
		return DefaultTimeStretchConfig(), nil
	case KindPitchShift:
		return DefaultPitchShiftConfig(), nil
	case KindComputeDeltas:
		return DefaultComputeDeltasConfig(), nil
	case KindSequential:
		return SequentialConfig{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
}

// New builds the transform described by cfg. Parameters outside their
// domain fail with ErrInvalidConfig; derived data such as windows,
// filterbanks and resampling kernels is computed here once.
func New(cfg Config) (Transform, error) {
	switch c := cfg.(type) {
	case SpectrogramConfig:
		return built(newSpectrogram(c))
	case InverseSpectrogramConfig:
		return built(newInverseSpectrogram(c))
	case GriffinLimConfig:
		return built(newGriffinLim(c))
	case AmplitudeToDBConfig:
		return built(newAmplitudeToDB(c))
	case DBToAmplitudeConfig:
		return validated(c, &DBToAmplitude{cfg: c})
	case MelScaleConfig:
		return built(newMelScale(c))
	case MelSpectrogramConfig:
		return built(newMelSpectrogram(c))
	case MFCCConfig:
		return built(newMFCC(c))
	case LFCCConfig:
		return built(newLFCC(c))
	case ResampleConfig:
		return built(newResample(c))
	case ComplexNormConfig:
		return validated(c, &ComplexNorm{cfg: c})
	case MuLawEncodingConfig:
		return validated(c, &MuLawEncoding{cfg: c})
	case MuLawDecodingConfig:
		return validated(c, &MuLawDecoding{cfg: c})
	case FadeConfig:
		return validated(c, &Fade{cfg: c})
	case FrequencyMaskingConfig:
		return validated(c, &FrequencyMasking{cfg: c})
	case TimeMaskingConfig:
		return validated(c, &TimeMasking{cfg: c})
	case VolConfig:
		return built(newVol(c))
	case SlidingWindowCmnConfig:
		return validated(c, &SlidingWindowCmn{cfg: c})
	case VadConfig:
		return built(newVad(c))
	case SpectralCentroidConfig:
		return built(newSpectralCentroid(c))
	case TimeStretchConfig:
		return built(newTimeStretch(c))
	case PitchShiftConfig:
		return built(newPitchShift(c))
	case ComputeDeltasConfig:
		return validated(c, &ComputeDeltas{cfg: c})
	case SequentialConfig:
		return built(newSequential(c))
	case nil:
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	return nil, fmt.Errorf("%w: config type %T", ErrUnknownKind, cfg)
}

// MustNew is like New but panics on error.
func MustNew(cfg Config) Transform {
	t, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return t
}

// built drops the typed nil a failed constructor returns.
func built[T Transform](t T, err error) (Transform, error) {
	if err != nil {
		return nil, err
	}
	return t, nil
}

func validated(cfg Config, t Transform) (Transform, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Field describes one parameter of a kind.
type Field struct {
	// Name is the serialized field name; nested fields are dotted.
	Name    string
	Type    string
	Default string
}

// Describe lists the parameters of kind k with their defaults.
func Describe(k Kind) ([]Field, error) {
	cfg, err := DefaultConfig(k)
	if err != nil {
		return nil, err
	}
	if k == KindSequential {
		return []Field{{Name: "steps", Type: "list", Default: "[]"}}, nil
	}
	return describeStruct(reflect.ValueOf(cfg), ""), nil
}

func describeStruct(v reflect.Value, prefix string) []Field {
	var fields []Field
	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		name := sf.Tag.Get("yaml")
		if name == "" || name == "-" {
			continue
		}
		fv := v.Field(i)
		if fv.Kind() == reflect.Struct {
			fields = append(fields, describeStruct(fv, prefix+name+".")...)
			continue
		}
		def := fmt.Sprint(fv.Interface())
		if fv.Kind() == reflect.String {
			def = strconv.Quote(fv.String())
		}
		fields = append(fields, Field{Name: prefix + name, Type: fv.Kind().String(), Default: def})
	}
	return fields
}
