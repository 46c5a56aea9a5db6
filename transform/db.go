// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"math"

	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/dsp"
)

// Scale types accepted by AmplitudeToDB.
const (
	STypePower     = "power"
	STypeMagnitude = "magnitude"
)

// AmplitudeToDBConfig configures AmplitudeToDB.
type AmplitudeToDBConfig struct {
	// Stype is "power" (10*log10) or "magnitude" (20*log10).
	Stype string `msgpack:"stype" yaml:"stype" json:"stype"`
	// TopDB limits the dynamic range below the peak; zero disables it.
	TopDB float64 `msgpack:"top_db" yaml:"top_db" json:"top_db"`
	// Amin is the floor applied before taking the logarithm.
	Amin float64 `msgpack:"amin" yaml:"amin" json:"amin"`
	// Ref is the value mapped to 0 dB.
	Ref float64 `msgpack:"ref" yaml:"ref" json:"ref"`
}

func DefaultAmplitudeToDBConfig() AmplitudeToDBConfig {
	return AmplitudeToDBConfig{Stype: STypePower, Amin: 1e-10, Ref: 1}
}

func (AmplitudeToDBConfig) Kind() Kind { return KindAmplitudeToDB }

func (c AmplitudeToDBConfig) Validate() error {
	switch {
	case c.Stype != STypePower && c.Stype != STypeMagnitude:
		return configError(KindAmplitudeToDB, "stype %q must be %q or %q", c.Stype, STypePower, STypeMagnitude)
	case c.TopDB < 0:
		return configError(KindAmplitudeToDB, "top_db=%g must not be negative", c.TopDB)
	case c.Amin <= 0:
		return configError(KindAmplitudeToDB, "amin=%g must be positive", c.Amin)
	case c.Ref <= 0:
		return configError(KindAmplitudeToDB, "ref=%g must be positive", c.Ref)
	}
	return nil
}

// AmplitudeToDB rescales power or magnitude values to decibels. With a
// top_db limit the input must have at least two dimensions; the limit is
// applied per (channel, freq, time) block for ranks above two.
type AmplitudeToDB struct {
	cfg AmplitudeToDBConfig
	db  dsp.DBConfig
}

func newAmplitudeToDB(cfg AmplitudeToDBConfig) (*AmplitudeToDB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mult := 10.0
	if cfg.Stype == STypeMagnitude {
		mult = 20
	}
	return &AmplitudeToDB{
		cfg: cfg,
		db: dsp.DBConfig{
			Multiplier:   mult,
			Amin:         cfg.Amin,
			DBMultiplier: math.Log10(math.Max(cfg.Amin, cfg.Ref)),
		},
	}, nil
}

func (a *AmplitudeToDB) Kind() Kind     { return KindAmplitudeToDB }
func (a *AmplitudeToDB) Config() Config { return a.cfg }

func (a *AmplitudeToDB) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	minRank := 1
	if a.cfg.TopDB > 0 {
		minRank = 2
	}
	shape, data, err := realInput(KindAmplitudeToDB, x, minRank)
	if err != nil {
		return nil, err
	}
	dsp.AmplitudeToDB(data, a.db)
	if a.cfg.TopDB > 0 {
		group := shape[len(shape)-1] * shape[len(shape)-2]
		if len(shape) > 2 {
			group *= shape[len(shape)-3]
		}
		if group > 0 {
			dsp.ClampTopDB(data, group, a.cfg.TopDB)
		}
	}
	return realOutput(x.DType(), shape, data)
}

// DBToAmplitudeConfig configures DBToAmplitude.
type DBToAmplitudeConfig struct {
	Ref float64 `msgpack:"ref" yaml:"ref" json:"ref"`
	// Power is 1 to undo a power conversion and 0.5 for magnitudes.
	Power float64 `msgpack:"power" yaml:"power" json:"power"`
}

func DefaultDBToAmplitudeConfig() DBToAmplitudeConfig {
	return DBToAmplitudeConfig{Ref: 1, Power: 1}
}

func (DBToAmplitudeConfig) Kind() Kind { return KindDBToAmplitude }

func (c DBToAmplitudeConfig) Validate() error {
	if c.Ref <= 0 {
		return configError(KindDBToAmplitude, "ref=%g must be positive", c.Ref)
	}
	if c.Power <= 0 {
		return configError(KindDBToAmplitude, "power=%g must be positive", c.Power)
	}
	return nil
}

// DBToAmplitude maps decibel values back to power or magnitude:
// ref * (10^(x/10))^power.
type DBToAmplitude struct {
	cfg DBToAmplitudeConfig
}

func (d *DBToAmplitude) Kind() Kind     { return KindDBToAmplitude }
func (d *DBToAmplitude) Config() Config { return d.cfg }

func (d *DBToAmplitude) Apply(x *buffer.Buffer) (*buffer.Buffer, error) {
	shape, data, err := realInput(KindDBToAmplitude, x, 1)
	if err != nil {
		return nil, err
	}
	dsp.DBToAmplitude(data, d.cfg.Ref, d.cfg.Power)
	return realOutput(x.DType(), shape, data)
}
