// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams through
// github.com/jfreymuth/oggvorbis. Samples come out as float32 in [-1, 1]
// with the stream's own channel count.
package vorbis
