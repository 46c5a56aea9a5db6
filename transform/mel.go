// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"math"

	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/dsp"
)

// MelScaleConfig configures MelScale.
type MelScaleConfig struct {
	NMels      int     `msgpack:"n_mels" yaml:"n_mels" json:"n_mels"`
	SampleRate int     `msgpack:"sample_rate" yaml:"sample_rate" json:"sample_rate"`
	FMin       float64 `msgpack:"f_min" yaml:"f_min" json:"f_min"`
	// FMax defaults to SampleRate/2 when zero.
	FMax float64 `msgpack:"f_max" yaml:"f_max" json:"f_max"`
	// NStft is the number of frequency bins of the input, n_fft/2+1.
	NStft    int            `msgpack:"n_stft" yaml:"n_stft" json:"n_stft"`
	Norm     dsp.FilterNorm `msgpack:"norm" yaml:"norm" json:"norm"`
	MelScale dsp.MelScale   `msgpack:"mel_scale" yaml:"mel_scale" json:"mel_scale"`
}

func DefaultMelScaleConfig() MelScaleConfig {
	return MelScaleConfig{
		NMels:      128,
		SampleRate: 16000,
		NStft:      201,
		MelScale:   dsp.MelHTK,
	}
}

func (MelScaleConfig) Kind() Kind { return KindMelScale }

func (c MelScaleConfig) Validate() error {
	_, err := c.filterbank()
	return err
}

func (c MelScaleConfig) filterbank() ([][]float64, error) {
	fMax := c.FMax
	if fMax == 0 {
		fMax = float64(c.SampleRate / 2)
	}
	fb, err := dsp.MelFilterbank(c.NStft, c.FMin, fMax, c.NMels, c.SampleRate, c.Norm, c.MelScale)
	if err != nil {
		return nil, wrapConfig(KindMelScale, err)
	}
	return fb, nil
}

// MelScale maps a linear frequency spectrogram (..., n_stft, time) onto
// (..., n_mels, time) with a triangular filterbank.
type MelScale struct {
	cfg MelScaleConfig
	fb  [][]float64
}

func newMelScale(cfg MelScaleConfig) (*MelScale, error) {
	fb, err := cfg.filterbank()
	if err != nil {
		return nil, err
	}
	return &MelScale{cfg: cfg, fb: fb}, nil
}

func (m *MelScale) Kind() Kind     { return KindMelScale }
func (m *MelScale) Config() Config { return m.cfg }

func (m *MelScale) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	return applyFilterbank(KindMelScale, x, m.fb)
}

// applyFilterbank multiplies every (freq, time) matrix of x by the
// transposed [freq][filter] matrix fb.
func applyFilterbank(k Kind, x *buffer.Buffer, fb [][]float64) (*buffer.Buffer, error) {
	shape, data, err := realInput(k, x, 2)
	if err != nil {
		return nil, err
	}
	lead, tail := split(shape, 2)
	if tail[0] != len(fb) {
		return nil, inputError(k, "%d rows along the frequency axis, expected %d", tail[0], len(fb))
	}
	out := applyMatrix(data, product(lead), tail[0], tail[1], fb)
	return realOutput(x.DType(), withDims(lead, len(fb[0]), tail[1]), out)
}

// MelSpectrogramConfig configures MelSpectrogram.
type MelSpectrogramConfig struct {
	SampleRate int            `msgpack:"sample_rate" yaml:"sample_rate" json:"sample_rate"`
	NFFT       int            `msgpack:"n_fft" yaml:"n_fft" json:"n_fft"`
	WinLength  int            `msgpack:"win_length" yaml:"win_length" json:"win_length"`
	HopLength  int            `msgpack:"hop_length" yaml:"hop_length" json:"hop_length"`
	FMin       float64        `msgpack:"f_min" yaml:"f_min" json:"f_min"`
	FMax       float64        `msgpack:"f_max" yaml:"f_max" json:"f_max"`
	Pad        int            `msgpack:"pad" yaml:"pad" json:"pad"`
	NMels      int            `msgpack:"n_mels" yaml:"n_mels" json:"n_mels"`
	Window     dsp.WindowKind `msgpack:"window" yaml:"window" json:"window"`
	Power      float64        `msgpack:"power" yaml:"power" json:"power"`
	Normalized bool           `msgpack:"normalized" yaml:"normalized" json:"normalized"`
	Center     bool           `msgpack:"center" yaml:"center" json:"center"`
	PadMode    dsp.PadMode    `msgpack:"pad_mode" yaml:"pad_mode" json:"pad_mode"`
	Norm       dsp.FilterNorm `msgpack:"norm" yaml:"norm" json:"norm"`
	MelScale   dsp.MelScale   `msgpack:"mel_scale" yaml:"mel_scale" json:"mel_scale"`
}

func DefaultMelSpectrogramConfig() MelSpectrogramConfig {
	return MelSpectrogramConfig{
		SampleRate: 16000,
		NFFT:       400,
		NMels:      128,
		Window:     dsp.Hann,
		Power:      2,
		Center:     true,
		PadMode:    dsp.PadReflect,
		MelScale:   dsp.MelHTK,
	}
}

func (MelSpectrogramConfig) Kind() Kind { return KindMelSpectrogram }

func (c MelSpectrogramConfig) Validate() error {
	if err := c.spectrogram().Validate(); err != nil {
		return err
	}
	return c.melScale().Validate()
}

func (c MelSpectrogramConfig) spectrogram() SpectrogramConfig {
	return SpectrogramConfig{
		NFFT:       c.NFFT,
		WinLength:  c.WinLength,
		HopLength:  c.HopLength,
		Pad:        c.Pad,
		Window:     c.Window,
		Power:      c.Power,
		Normalized: c.Normalized,
		Center:     c.Center,
		PadMode:    c.PadMode,
	}
}

func (c MelSpectrogramConfig) melScale() MelScaleConfig {
	return MelScaleConfig{
		NMels:      c.NMels,
		SampleRate: c.SampleRate,
		FMin:       c.FMin,
		FMax:       c.FMax,
		NStft:      c.NFFT/2 + 1,
		Norm:       c.Norm,
		MelScale:   c.MelScale,
	}
}

// MelSpectrogram chains Spectrogram and MelScale: (..., time) to
// (..., n_mels, frames).
type MelSpectrogram struct {
	cfg  MelSpectrogramConfig
	spec *Spectrogram
	mel  *MelScale
}

func newMelSpectrogram(cfg MelSpectrogramConfig) (*MelSpectrogram, error) {
	spec, err := newSpectrogram(cfg.spectrogram())
	if err != nil {
		return nil, err
	}
	mel, err := newMelScale(cfg.melScale())
	if err != nil {
		return nil, err
	}
	return &MelSpectrogram{cfg: cfg, spec: spec, mel: mel}, nil
}

func (m *MelSpectrogram) Kind() Kind     { return KindMelSpectrogram }
func (m *MelSpectrogram) Config() Config { return m.cfg }

func (m *MelSpectrogram) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	spec, err := m.spec.Apply(x)
	if err != nil {
		return nil, err
	}
	return m.mel.Apply(spec)
}

// cepstrum is the tail shared by MFCC and LFCC: log or decibel scaling of
// filter energies followed by a DCT over the filter axis.
type cepstrum struct {
	log bool
	db  *AmplitudeToDB
	dct [][]float64
}

func newCepstrum(k Kind, nCoeffs, nFilters, dctType int, norm dsp.DCTNorm, log bool) (*cepstrum, error) {
	if dctType != 2 {
		return nil, configError(k, "dct_type=%d, only type 2 is supported", dctType)
	}
	if nCoeffs > nFilters {
		return nil, configError(k, "%d coefficients from %d filters", nCoeffs, nFilters)
	}
	dct, err := dsp.DCTMatrix(nCoeffs, nFilters, norm)
	if err != nil {
		return nil, wrapConfig(k, err)
	}
	c := &cepstrum{log: log, dct: dct}
	if !log {
		cfg := DefaultAmplitudeToDBConfig()
		cfg.TopDB = 80
		if c.db, err = newAmplitudeToDB(cfg); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *cepstrum) apply(k Kind, energies *buffer.Buffer) (*buffer.Buffer, error) {
	var scaled *buffer.Buffer
	if c.log {
		shape := energies.Shape()
		data := energies.Floats()
		for i, v := range data {
			data[i] = math.Log(v + 1e-6)
		}
		var err error
		if scaled, err = realOutput(energies.DType(), shape, data); err != nil {
			return nil, err
		}
	} else {
		var err error
		if scaled, err = c.db.Apply(energies); err != nil {
			return nil, err
		}
	}
	return applyFilterbank(k, scaled, c.dct)
}

// MFCCConfig configures MFCC. MelKwargs configures the underlying
// MelSpectrogram; its sample rate is replaced by SampleRate.
type MFCCConfig struct {
	SampleRate int                  `msgpack:"sample_rate" yaml:"sample_rate" json:"sample_rate"`
	NMFCC      int                  `msgpack:"n_mfcc" yaml:"n_mfcc" json:"n_mfcc"`
	DCTType    int                  `msgpack:"dct_type" yaml:"dct_type" json:"dct_type"`
	Norm       dsp.DCTNorm          `msgpack:"norm" yaml:"norm" json:"norm"`
	LogMels    bool                 `msgpack:"log_mels" yaml:"log_mels" json:"log_mels"`
	MelKwargs  MelSpectrogramConfig `msgpack:"melkwargs" yaml:"melkwargs" json:"melkwargs"`
}

func DefaultMFCCConfig() MFCCConfig {
	return MFCCConfig{
		SampleRate: 16000,
		NMFCC:      40,
		DCTType:    2,
		Norm:       dsp.DCTOrtho,
		MelKwargs:  DefaultMelSpectrogramConfig(),
	}
}

func (MFCCConfig) Kind() Kind { return KindMFCC }

func (c MFCCConfig) Validate() error {
	_, err := newMFCC(c)
	return err
}

// MFCC computes mel-frequency cepstral coefficients: (..., time) to
// (..., n_mfcc, frames).
type MFCC struct {
	cfg MFCCConfig
	mel *MelSpectrogram
	cep *cepstrum
}

func newMFCC(cfg MFCCConfig) (*MFCC, error) {
	melCfg := cfg.MelKwargs
	melCfg.SampleRate = cfg.SampleRate
	mel, err := newMelSpectrogram(melCfg)
	if err != nil {
		return nil, err
	}
	cep, err := newCepstrum(KindMFCC, cfg.NMFCC, melCfg.NMels, cfg.DCTType, cfg.Norm, cfg.LogMels)
	if err != nil {
		return nil, err
	}
	return &MFCC{cfg: cfg, mel: mel, cep: cep}, nil
}

func (m *MFCC) Kind() Kind     { return KindMFCC }
func (m *MFCC) Config() Config { return m.cfg }

func (m *MFCC) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	mel, err := m.mel.Apply(x)
	if err != nil {
		return nil, err
	}
	return m.cep.apply(KindMFCC, mel)
}

// LFCCConfig configures LFCC. SpecKwargs configures the underlying
// Spectrogram, which must produce real magnitudes.
type LFCCConfig struct {
	SampleRate int               `msgpack:"sample_rate" yaml:"sample_rate" json:"sample_rate"`
	NFilter    int               `msgpack:"n_filter" yaml:"n_filter" json:"n_filter"`
	FMin       float64           `msgpack:"f_min" yaml:"f_min" json:"f_min"`
	FMax       float64           `msgpack:"f_max" yaml:"f_max" json:"f_max"`
	NLFCC      int               `msgpack:"n_lfcc" yaml:"n_lfcc" json:"n_lfcc"`
	DCTType    int               `msgpack:"dct_type" yaml:"dct_type" json:"dct_type"`
	Norm       dsp.DCTNorm       `msgpack:"norm" yaml:"norm" json:"norm"`
	LogLF      bool              `msgpack:"log_lf" yaml:"log_lf" json:"log_lf"`
	SpecKwargs SpectrogramConfig `msgpack:"speckwargs" yaml:"speckwargs" json:"speckwargs"`
}

func DefaultLFCCConfig() LFCCConfig {
	return LFCCConfig{
		SampleRate: 16000,
		NFilter:    128,
		NLFCC:      40,
		DCTType:    2,
		Norm:       dsp.DCTOrtho,
		SpecKwargs: DefaultSpectrogramConfig(),
	}
}

func (LFCCConfig) Kind() Kind { return KindLFCC }

func (c LFCCConfig) Validate() error {
	_, err := newLFCC(c)
	return err
}

// LFCC computes linear-frequency cepstral coefficients: (..., time) to
// (..., n_lfcc, frames).
type LFCC struct {
	cfg  LFCCConfig
	spec *Spectrogram
	fb   [][]float64
	cep  *cepstrum
}

func newLFCC(cfg LFCCConfig) (*LFCC, error) {
	if cfg.SpecKwargs.ReturnComplex {
		return nil, configError(KindLFCC, "speckwargs must not return a complex spectrogram")
	}
	spec, err := newSpectrogram(cfg.SpecKwargs)
	if err != nil {
		return nil, err
	}
	fMax := cfg.FMax
	if fMax == 0 {
		fMax = float64(cfg.SampleRate / 2)
	}
	fb, err := dsp.LinearFilterbank(spec.plan.Bins(), cfg.FMin, fMax, cfg.NFilter, cfg.SampleRate)
	if err != nil {
		return nil, wrapConfig(KindLFCC, err)
	}
	cep, err := newCepstrum(KindLFCC, cfg.NLFCC, cfg.NFilter, cfg.DCTType, cfg.Norm, cfg.LogLF)
	if err != nil {
		return nil, err
	}
	return &LFCC{cfg: cfg, spec: spec, fb: fb, cep: cep}, nil
}

func (l *LFCC) Kind() Kind     { return KindLFCC }
func (l *LFCC) Config() Config { return l.cfg }

func (l *LFCC) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	spec, err := l.spec.Apply(x)
	if err != nil {
		return nil, err
	}
	lf, err := applyFilterbank(KindLFCC, spec, l.fb)
	if err != nil {
		return nil, err
	}
	return l.cep.apply(KindLFCC, lf)
}
