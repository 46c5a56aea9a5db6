// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audxf/audio"
	"github.com/ik5/audxf/utils"
)

// go-mp3 always produces interleaved stereo 16-bit little-endian PCM.
const (
	channels   = 2
	frameBytes = channels * 2
)

// mp3Reader is the part of gomp3.Decoder the source reads from.
type mp3Reader interface {
	io.Reader
	SampleRate() int
}

type source struct {
	dec mp3Reader
	buf []byte
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	n, err := io.ReadFull(s.dec, s.buf)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("decode mp3: %w", err)
	}
	n -= n % frameBytes
	samples := n / 2
	for i := range samples {
		dst[i] = utils.PCMToFloat(int(int16(binary.LittleEndian.Uint16(s.buf[2*i:]))), 16)
	}
	return samples, err
}

// Decoder reads MPEG-1/2 Layer III streams as stereo.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMP3, err)
	}
	return &source{dec: dec}, nil
}
