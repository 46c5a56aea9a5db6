// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audxf/audio"
	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/utils"
)

// Encode writes a real waveform buffer, (time) or (channels, time), as a
// signed PCM WAV of bitDepth 16, 24 or 32. Samples outside [-1, 1] are
// clipped.
func Encode(w io.WriteSeeker, rate, bitDepth int, b *buffer.Buffer) error {
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return fmt.Errorf("%w: cannot encode %d-bit", ErrOnlyPCMSupported, bitDepth)
	}
	src, err := audio.NewBufferSource(b, rate)
	if err != nil {
		return err
	}
	channels := src.Channels()

	enc := gowav.NewEncoder(w, rate, bitDepth, channels, formatPCM)
	chunk := make([]float32, src.BufSize())
	ints := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		SourceBitDepth: bitDepth,
	}
	toPCM := func(v float32) int { return utils.FloatToPCM(float64(v), bitDepth) }
	if bitDepth == 16 {
		toPCM = func(v float32) int { return int(utils.Float32ToInt16(v)) }
	}
	for {
		n, readErr := src.ReadSamples(chunk)
		if n > 0 {
			ints.Data = ints.Data[:0]
			for _, v := range chunk[:n] {
				ints.Data = append(ints.Data, toPCM(v))
			}
			if err := enc.Write(ints); err != nil {
				return fmt.Errorf("write wav: %w", err)
			}
		}
		if readErr != nil {
			break
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finish wav: %w", err)
	}
	return nil
}
