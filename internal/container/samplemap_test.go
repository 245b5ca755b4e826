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

package container

import "testing"

func TestExpandStsc(t *testing.T) {
	cases := []struct {
		name       string
		runs       []chunkRun
		chunkCount int
		want       []uint32
	}{
		{
			name:       "single run covers all chunks",
			runs:       []chunkRun{{StartingChunk: 1, SamplesPerChunk: 2}},
			chunkCount: 2,
			want:       []uint32{2, 2},
		},
		{
			name: "run boundary changes sample count",
			runs: []chunkRun{
				{StartingChunk: 1, SamplesPerChunk: 3},
				{StartingChunk: 3, SamplesPerChunk: 1},
			},
			chunkCount: 4,
			want:       []uint32{3, 3, 1, 1},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := expandStsc(tc.runs, tc.chunkCount)
			if err != nil {
				t.Fatalf("expandStsc: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("index %d: got %d, want %d", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestExpandTrackOrdersByOffset(t *testing.T) {
	tr := Track{
		IsVideo:   true,
		Timescale: 90000,
		Stbl: StblBox{
			SampleCount: 2,
			SampleDelta: 3000,
			chunkOffsets: []uint64{4096},
			sampleToChunk: []chunkRun{{StartingChunk: 1, SamplesPerChunk: 2}},
			sampleSizes: []uint32{1024, 512},
		},
	}

	got, err := expandTrack(&tr)
	if err != nil {
		t.Fatalf("expandTrack: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 samples, got %d", len(got))
	}
	if got[0].Offset != 4096 || got[0].Size != 1024 {
		t.Fatalf("sample 0: %+v", got[0])
	}
	if got[1].Offset != 4096+1024 || got[1].Size != 512 {
		t.Fatalf("sample 1: %+v", got[1])
	}
	if !got[0].Keyframe {
		t.Fatalf("video track with no stss should mark every sample a keyframe")
	}
}

func TestExpandTrackHonorsStss(t *testing.T) {
	tr := Track{
		IsVideo: true,
		Stbl: StblBox{
			chunkOffsets:  []uint64{0},
			sampleToChunk: []chunkRun{{StartingChunk: 1, SamplesPerChunk: 3}},
			sampleSizes:   []uint32{10, 10, 10},
			SyncSamples:   []uint32{1},
		},
	}

	got, err := expandTrack(&tr)
	if err != nil {
		t.Fatalf("expandTrack: %v", err)
	}
	if !got[0].Keyframe || got[1].Keyframe || got[2].Keyframe {
		t.Fatalf("expected only sample 1 to be a keyframe, got %+v", got)
	}
}

func TestBuildSampleMapMergesAndSortsTracks(t *testing.T) {
	moov := &Moov{
		Tracks: []Track{
			{
				IsVideo: false,
				Stbl: StblBox{
					chunkOffsets:  []uint64{8192},
					sampleToChunk: []chunkRun{{StartingChunk: 1, SamplesPerChunk: 2}},
					sampleSizes:   []uint32{256, 512},
				},
			},
			{
				IsVideo: true,
				Stbl: StblBox{
					chunkOffsets:  []uint64{4096},
					sampleToChunk: []chunkRun{{StartingChunk: 1, SamplesPerChunk: 1}},
					sampleSizes:   []uint32{1024},
				},
			},
		},
	}

	sm, err := BuildSampleMap(moov)
	if err != nil {
		t.Fatalf("BuildSampleMap: %v", err)
	}
	if len(sm.Samples) != 3 {
		t.Fatalf("want 3 samples, got %d", len(sm.Samples))
	}
	if !sm.Samples[0].IsVideo || sm.Samples[0].Size != 1024 {
		t.Fatalf("expected video sample (offset 4096) first, got %+v", sm.Samples[0])
	}
	if sm.Samples[1].IsVideo || sm.Samples[1].Size != 256 {
		t.Fatalf("expected audio sample (offset 8192) second, got %+v", sm.Samples[1])
	}
}

func TestBuildSampleMapEmptyForZeroTracks(t *testing.T) {
	sm, err := BuildSampleMap(&Moov{})
	if err != nil {
		t.Fatalf("BuildSampleMap: %v", err)
	}
	if len(sm.Samples) != 0 {
		t.Fatalf("want empty SampleMap for a moov with no tracks, got %d samples", len(sm.Samples))
	}
}
