// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audxf/audio"
)

// oggReader is the part of oggvorbis.Reader the source reads from. Read
// returns a count of interleaved values, always whole frames.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec oggReader
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return s.dec.Channels() }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 * s.dec.Channels() }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.dec.Channels() != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	total := 0
	for total < len(dst) {
		n, err := s.dec.Read(dst[total:])
		total += n
		if errors.Is(err, io.EOF) {
			return total, io.EOF
		}
		if err != nil {
			return total, fmt.Errorf("decode vorbis: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return total, nil
}

// Decoder reads Ogg Vorbis streams.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotVorbis, err)
	}
	if dec.Channels() <= 0 {
		return nil, fmt.Errorf("%w: %d channels", ErrNotVorbis, dec.Channels())
	}
	return &source{dec: dec}, nil
}
