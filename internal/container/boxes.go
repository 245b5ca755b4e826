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

// Package container incrementally parses the subset of ISO-BMFF (MP4) boxes
// this player needs: ftyp/moov (fully, before any sample data arrives) and
// mdat (as a raw byte run located by the sample table already parsed out of
// moov). It mirrors the box-tree walk of the original demuxer's
// get_moov_box/get_sample_map modules, reworked around a Feed/TryAdvance
// streaming reader so the parser can run directly against a piped
// ffmpeg/yt-dlp stdout stream instead of a seekable file. Once a box's body
// is fully buffered, its fields are decoded by github.com/tetsuo/mp4's
// Reader and typed iterators rather than hand-rolled cursor arithmetic.
package container

// StblBox holds the sample-table boxes of one track, resolved to the fields
// the rest of the player actually needs rather than kept as opaque bytes.
type StblBox struct {
	// Stsd
	Width, Height int    // avc1 sample entry, video tracks only
	SampleRate    int    // mp4a sample entry, audio tracks only (Hz)
	Channels      int    // mp4a sample entry, audio tracks only
	AVCConfig     []byte // avcC payload, video tracks only
	NALLengthSize int    // avcC[4] low two bits + 1, video tracks only; one of 1,2,3,4
	AudioConfig   []byte // esds/AudioSpecificConfig payload, audio tracks only

	// Stts: this player requires exactly one (sample_count, sample_delta)
	// entry (constant frame rate / constant sample duration); see
	// SPEC_FULL.md §9, resolution 1.
	SampleDelta uint32
	SampleCount uint32

	// Stss: keyframe sample numbers (1-based), nil for audio tracks or
	// video tracks where every sample is a sync sample.
	SyncSamples []uint32

	chunkOffsets  []uint64   // stco, absolute byte offsets
	sampleToChunk []chunkRun // stsc, expanded per docs below
	sampleSizes   []uint32   // stsz, per-sample (or repeated general size)
}

// chunkRun is one stsc entry: starting at StartingChunk (1-based), each
// chunk up to the next entry's StartingChunk holds SamplesPerChunk samples.
type chunkRun struct {
	StartingChunk   uint32
	SamplesPerChunk uint32
}

// Track is a resolved trak box: a media kind, its timescale and the sample
// table needed to build a SampleMap.
type Track struct {
	IsVideo   bool
	Timescale uint32 // mdhd timescale, ticks/second
	Stbl      StblBox
}

// Moov is the parsed movie box: overall timescale plus one Track per trak.
type Moov struct {
	Timescale uint32 // mvhd timescale
	Tracks    []Track
}

// FrameRate returns the track's constant frame rate in Hz, derived from
// its timescale and the single stts sample delta this player requires.
func (t *Track) FrameRate() float64 {
	if t.Stbl.SampleDelta == 0 {
		return 0
	}
	return float64(t.Timescale) / float64(t.Stbl.SampleDelta)
}

// VideoTrack and AudioTrack return the first track of each kind, or nil.
func (m *Moov) VideoTrack() *Track {
	for i := range m.Tracks {
		if m.Tracks[i].IsVideo {
			return &m.Tracks[i]
		}
	}
	return nil
}

func (m *Moov) AudioTrack() *Track {
	for i := range m.Tracks {
		if !m.Tracks[i].IsVideo {
			return &m.Tracks[i]
		}
	}
	return nil
}
