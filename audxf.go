// SPDX-License-Identifier: EPL-2.0

package audxf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audxf/audio"
	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/formats/aiff"
	"github.com/ik5/audxf/formats/mp3"
	"github.com/ik5/audxf/formats/vorbis"
	"github.com/ik5/audxf/formats/wav"
	"github.com/ik5/audxf/transform"
)

// ErrRateMismatch is returned by ApplyFile when a Resample step expects a
// different input rate than the audio has at that point.
var ErrRateMismatch = errors.New("sample rate mismatch")

// Decoders returns a registry holding every bundled decoder under its file
// extensions.
func Decoders() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{})
	r.Register("wave", wav.Decoder{})
	r.Register("aif", aiff.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
	return r
}

// LoadOptions adjusts LoadFile.
type LoadOptions struct {
	// Mono averages all channels into one.
	Mono bool
	// Format overrides the format taken from the file extension.
	Format string
}

// LoadFile decodes an audio file into a float32 buffer [channels, frames]
// and returns it with the sample rate.
func LoadFile(path string, opts LoadOptions) (*buffer.Buffer, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	format := opts.Format
	if format == "" {
		format = strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	}
	x, rate, err := Load(f, format, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	return x, rate, nil
}

// Load decodes r as format. opts.Format is ignored.
func Load(r io.Reader, format string, opts LoadOptions) (*buffer.Buffer, int, error) {
	src, err := Decoders().Decode(format, r)
	if err != nil {
		return nil, 0, err
	}
	defer src.Close()

	if opts.Mono {
		src = audio.NewMonoMixer(src)
	}
	return audio.Collect(src)
}

// WriteWAVFile writes a waveform buffer as a 16-bit PCM WAV file.
func WriteWAVFile(path string, x *buffer.Buffer, rate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := wav.Encode(f, rate, 16, x); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// ApplyFile loads in, applies t and writes the result to out as WAV. The
// result must still be a waveform; a Resample in t sets the output rate.
func ApplyFile(in, out string, t transform.Transform) error {
	x, rate, err := LoadFile(in, LoadOptions{})
	if err != nil {
		return err
	}
	outRate, err := OutputRate(t.Config(), rate)
	if err != nil {
		return err
	}
	y, err := t.Apply(x)
	if err != nil {
		return fmt.Errorf("apply %s: %w", t.Kind(), err)
	}
	if err := WriteWAVFile(out, y, outRate); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"in":    in,
		"out":   out,
		"kind":  t.Kind(),
		"shape": y.Shape(),
		"rate":  outRate,
	}).Debug("file transformed")
	return nil
}

// OutputRate follows the sample rate of waveform audio at rate through
// cfg. Resample steps must expect the rate they receive.
func OutputRate(cfg transform.Config, rate int) (int, error) {
	switch c := cfg.(type) {
	case transform.ResampleConfig:
		if int(c.OrigFreq) != rate {
			return 0, fmt.Errorf("%w: Resample expects %g Hz, audio is %d Hz", ErrRateMismatch, c.OrigFreq, rate)
		}
		return int(c.NewFreq), nil
	case transform.SequentialConfig:
		for _, step := range c.Steps {
			var err error
			if rate, err = OutputRate(step, rate); err != nil {
				return 0, err
			}
		}
	}
	return rate, nil
}
