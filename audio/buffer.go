// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audxf/buffer"
)

// Collect reads src to the end and returns its samples as a float32
// buffer [channels, frames] together with the sample rate. src is not
// closed.
func Collect(src Source) (*buffer.Buffer, int, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, 0, fmt.Errorf("%w: source reports %d channels", ErrInvalidDstSize, channels)
	}
	size := src.BufSize()
	if size < channels {
		size = 4096
	}
	size -= size % channels
	chunk := make([]float32, size)

	var interleaved []float32
	for {
		n, err := src.ReadSamples(chunk)
		interleaved = append(interleaved, chunk[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read samples: %w", err)
		}
		if n == 0 {
			break
		}
	}

	frames := len(interleaved) / channels
	planar := make([]float64, channels*frames)
	for f := range frames {
		for ch := range channels {
			planar[ch*frames+f] = float64(interleaved[f*channels+ch])
		}
	}
	logrus.WithFields(logrus.Fields{
		"rate":     src.SampleRate(),
		"channels": channels,
		"frames":   frames,
	}).Debug("audio collected")

	b, err := buffer.New(buffer.Float32, []int{channels, frames}, planar)
	if err != nil {
		return nil, 0, err
	}
	return b, src.SampleRate(), nil
}

// bufferSource streams a waveform buffer as interleaved samples.
type bufferSource struct {
	rate     int
	channels int
	frames   int
	planar   []float64
	pos      int
}

// NewBufferSource streams a real waveform buffer of shape (time) or
// (channels, time) at rate.
func NewBufferSource(b *buffer.Buffer, rate int) (Source, error) {
	if b == nil || b.IsComplex() || b.Rank() < 1 || b.Rank() > 2 {
		return nil, fmt.Errorf("%w: %v", ErrNotWaveform, b)
	}
	if rate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrNotWaveform, rate)
	}
	channels := 1
	if b.Rank() == 2 {
		channels = b.Dim(0)
	}
	if channels == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrNotWaveform)
	}
	return &bufferSource{
		rate:     rate,
		channels: channels,
		frames:   b.Dim(-1),
		planar:   b.Floats(),
	}, nil
}

func (s *bufferSource) SampleRate() int { return s.rate }
func (s *bufferSource) Channels() int   { return s.channels }
func (s *bufferSource) BufSize() int    { return 4096 * s.channels }
func (s *bufferSource) Close() error    { return nil }

func (s *bufferSource) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if s.pos >= s.frames {
		return 0, io.EOF
	}
	n := min(len(dst)/s.channels, s.frames-s.pos)
	for f := range n {
		for ch := range s.channels {
			dst[f*s.channels+ch] = float32(s.planar[ch*s.frames+s.pos+f])
		}
	}
	s.pos += n
	if s.pos >= s.frames {
		return n * s.channels, io.EOF
	}
	return n * s.channels, nil
}
