/* SPDX-License-Identifier: GPL-3.0-or-later
 *
 * yt-term
 * Copyright (C) 2025 e1z0 <e1z0@icloud.com>
 *
 * This file is part of yt-term.
 *
 * yt-term is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * yt-term is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with yt-term.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package pipeline defines the message types passed between the four
// stages of the player (source -> demux -> encode/adapt -> terminal|audio
// device). Each stage owns one end of a channel of these types; there is
// no shared mutable state between stages, matching the teacher's
// channel-based decode-loop handoff in video.go/camera.go.
package pipeline

// SampleDescriptor is one entry of a track's sample table, fully resolved
// (byte offset + size already expanded from the compact stco/stsc/stsz
// run-length boxes).
type SampleDescriptor struct {
	Offset   uint64
	Size     uint32
	IsVideo  bool
	Keyframe bool
}

// SampleMap is every track's samples merged and ordered by file offset,
// the order mdat bytes actually arrive in.
type SampleMap struct {
	Samples []SampleDescriptor
}

// TimestampedBytes pairs an encoded access unit with its presentation
// timestamp in milliseconds, derived from an accumulated sample count
// rather than a rounded per-sample constant (see DESIGN.md Open Question
// #2).
type TimestampedBytes struct {
	Data        []byte
	TimestampMS int64
}

// VideoFrame is one decoded, scaled RGB24 frame ready for terminal
// encoding.
type VideoFrame struct {
	Width  int
	Height int
	// RGB packed, 3 bytes/pixel, no row padding.
	Pixels []byte
	TimestampMS int64
}

// AudioSample is one block of decoded PCM, already converted to
// interleaved float32 stereo at the sink's sample rate.
type AudioSample struct {
	Interleaved []float32
	TimestampMS int64
}

// VideoRawMessage is the sealed set of messages the demux stage emits on
// its video channel. Exactly one of the fields is meaningful per message;
// Go has no tagged unions, so the teacher's pattern of "one struct, one
// populated field, a Kind discriminant" is used instead of an interface
// hierarchy, matching how video.go threads frame/FPS/done signals through
// a single channel type.
type VideoRawKind int

const (
	VideoRawFrame VideoRawKind = iota
	VideoRawFramesPerSecond
	VideoRawDone
)

type VideoRawMessage struct {
	Kind            VideoRawKind
	Frame           *VideoFrame
	FramesPerSecond float64
}

// AudioRawMessage is the analogous sealed message type for the audio
// channel.
type AudioRawKind int

const (
	AudioRawSample AudioRawKind = iota
	AudioRawDone
)

type AudioRawMessage struct {
	Kind   AudioRawKind
	Sample *AudioSample
}

// VideoEncodedMessage carries kitty-protocol-encoded frame bytes (plus
// sentinel Done) from the encoder stage to the terminal adapter.
type VideoEncodedKind int

const (
	VideoEncodedFrame VideoEncodedKind = iota
	VideoEncodedDone
)

type VideoEncodedMessage struct {
	Kind  VideoEncodedKind
	Frame *TimestampedBytes
}
