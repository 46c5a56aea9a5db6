// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"math"
)

// Waveform gives the value of channel ch at frame i.
type Waveform func(i, ch int) float32

// MockSource streams a generated waveform as interleaved samples. It
// satisfies audio.Source without importing it.
type MockSource struct {
	rate     int
	channels int
	frames   int
	pos      int
	wave     Waveform
	closed   bool
}

// NewMockSource streams frames frames of wave.
func NewMockSource(rate, channels, frames int, wave Waveform) *MockSource {
	return &MockSource{rate: rate, channels: channels, frames: frames, wave: wave}
}

// NewConstantSource streams v on every channel.
func NewConstantSource(rate, channels, frames int, v float32) *MockSource {
	return NewMockSource(rate, channels, frames, func(int, int) float32 { return v })
}

// NewSineSource streams a sine of freq Hz on every channel.
func NewSineSource(rate, channels, frames int, freq float64) *MockSource {
	return NewMockSource(rate, channels, frames, func(i, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(rate)))
	})
}

// NewChannelSource streams frame index i scaled by 1e-3, offset by the
// channel number, so every sample identifies its origin.
func NewChannelSource(rate, channels, frames int) *MockSource {
	return NewMockSource(rate, channels, frames, func(i, ch int) float32 {
		return float32(ch) + float32(i)*1e-3
	})
}

func (m *MockSource) SampleRate() int { return m.rate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Rewind restarts the stream.
func (m *MockSource) Rewind() { m.pos = 0 }

// ReadSamples writes whole frames only. The final read returns io.EOF
// along with the remaining samples.
func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.pos >= m.frames {
		return 0, io.EOF
	}
	n := min(len(dst)/m.channels, m.frames-m.pos)
	for f := range n {
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.wave(m.pos+f, ch)
		}
	}
	m.pos += n
	if m.pos >= m.frames {
		return n * m.channels, io.EOF
	}
	return n * m.channels, nil
}
