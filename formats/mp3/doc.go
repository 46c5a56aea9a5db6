// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 streams through github.com/hajimehoshi/go-mp3.
//
// The decoder always yields two channels; mono files come out with both
// channels equal. Wrap the source in audio.NewMonoMixer for one channel.
package mp3
