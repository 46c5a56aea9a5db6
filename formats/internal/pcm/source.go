// SPDX-License-Identifier: EPL-2.0

// Package pcm adapts the integer PCM decoders of go-audio to audio.Source.
package pcm

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audxf/audio"
	"github.com/ik5/audxf/utils"
)

// Reader is the part of the go-audio wav and aiff decoders Source needs.
type Reader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source streams a Reader as float32 samples.
type Source struct {
	dec      Reader
	rate     int
	channels int
	scale    float64
	// offset is added to every value before scaling; unsigned 8-bit WAV
	// centres on 128.
	offset int
	buf    *goaudio.IntBuffer
}

// NewSource wraps dec, whose samples are signed PCM of bitDepth bits.
func NewSource(dec Reader, rate, channels, bitDepth int) (*Source, error) {
	scale, ok := utils.PCMScale(bitDepth)
	if !ok {
		return nil, fmt.Errorf("%w: %d-bit", ErrUnsupportedBitDepth, bitDepth)
	}
	if channels <= 0 || rate <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedLayout, channels, rate)
	}
	return &Source{dec: dec, rate: rate, channels: channels, scale: scale}, nil
}

// Unsigned marks the samples as unsigned, centred on half of full scale.
func (s *Source) Unsigned() *Source {
	s.offset = -int(s.scale)
	return s
}

func (s *Source) SampleRate() int { return s.rate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) Close() error    { return nil }

func (s *Source) BufSize() int {
	if s.buf != nil {
		return cap(s.buf.Data)
	}
	return 4096
}

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.buf == nil || cap(s.buf.Data) < len(dst) {
		s.buf = &goaudio.IntBuffer{Data: make([]int, len(dst)), Format: s.dec.Format()}
	}
	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.buf)
	for i, v := range s.buf.Data[:n] {
		dst[i] = float32(float64(v+s.offset) / s.scale)
	}
	switch {
	case err != nil && !errors.Is(err, io.EOF):
		return n, err
	case n == 0 || n < len(dst):
		return n, io.EOF
	}
	return n, err
}

// ReadSeeker returns r itself when it can seek, or buffers it in memory.
func ReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

var (
	ErrUnsupportedBitDepth = errors.New("unsupported PCM bit depth")
	ErrUnsupportedLayout   = errors.New("unsupported PCM layout")
)
