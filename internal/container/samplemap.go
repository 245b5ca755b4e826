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

import (
	"fmt"
	"sort"

	"github.com/e1z0/yt-term/internal/pipeline"
	"github.com/e1z0/yt-term/internal/ytermerr"
)

// BuildSampleMap expands each track's stco/stsc/stsz run-length sample
// table into one SampleDescriptor per sample, each carrying its absolute
// byte offset in the stream, then merges all tracks and sorts by offset so
// the result is the order sample bytes actually arrive in mdat. This is
// the Go counterpart of get_sample_map.rs's parse_stco/parse_stsc/
// parse_stsz/format_sample_data pipeline, generalized to carry the
// resolved byte offset per sample instead of relying on purely sequential
// consumption.
func BuildSampleMap(m *Moov) (*pipeline.SampleMap, error) {
	var all []pipeline.SampleDescriptor

	// A moov with zero trak children (or tracks with empty sample tables)
	// yields an empty, valid SampleMap rather than an error; it is the
	// caller's job (container.Parser, demux.Run) to decide whether an
	// empty map is fatal for its purposes.
	for _, tr := range m.Tracks {
		descs, err := expandTrack(&tr)
		if err != nil {
			return nil, err
		}
		all = append(all, descs...)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Offset < all[j].Offset })
	return &pipeline.SampleMap{Samples: all}, nil
}

func expandTrack(tr *Track) ([]pipeline.SampleDescriptor, error) {
	stbl := tr.Stbl
	chunkSampleCounts, err := expandStsc(stbl.sampleToChunk, len(stbl.chunkOffsets))
	if err != nil {
		return nil, err
	}

	syncSet := make(map[uint32]bool, len(stbl.SyncSamples))
	for _, n := range stbl.SyncSamples {
		syncSet[n] = true
	}
	// A video track with no stss box at all has every sample as a sync
	// sample (no B/P-only dependency); an audio track has no concept of
	// keyframes and its Keyframe bit is unused by the caller.
	allSync := tr.IsVideo && len(stbl.SyncSamples) == 0

	var descs []pipeline.SampleDescriptor
	sizeIdx := 0
	sampleNumber := uint32(1)
	for chunkIdx, count := range chunkSampleCounts {
		if chunkIdx >= len(stbl.chunkOffsets) {
			return nil, ytermerr.Parse("container.expandTrack", fmt.Errorf("stsc references chunk %d beyond stco's %d offsets", chunkIdx, len(stbl.chunkOffsets)))
		}
		offset := stbl.chunkOffsets[chunkIdx]
		for i := uint32(0); i < count; i++ {
			if sizeIdx >= len(stbl.sampleSizes) {
				return nil, ytermerr.Parse("container.expandTrack", fmt.Errorf("stsz ran out of sample sizes at sample %d", sizeIdx))
			}
			size := stbl.sampleSizes[sizeIdx]
			descs = append(descs, pipeline.SampleDescriptor{
				Offset:   offset,
				Size:     size,
				IsVideo:  tr.IsVideo,
				Keyframe: allSync || syncSet[sampleNumber],
			})
			offset += uint64(size)
			sizeIdx++
			sampleNumber++
		}
	}
	return descs, nil
}

// expandStsc turns the compact (starting_chunk, samples_per_chunk) run
// list into one sample count per chunk index (0-based), the same
// expansion parse_stsc performs by scanning chunk_offsets against the next
// run's starting_chunk boundary.
func expandStsc(runs []chunkRun, chunkCount int) ([]uint32, error) {
	if len(runs) == 0 {
		if chunkCount == 0 {
			return nil, nil
		}
		return nil, ytermerr.Parse("container.expandStsc", fmt.Errorf("stsc has no entries but stco has %d chunks", chunkCount))
	}

	counts := make([]uint32, chunkCount)
	runIdx := 0
	for chunk := 1; chunk <= chunkCount; chunk++ {
		for runIdx+1 < len(runs) && uint32(chunk) >= runs[runIdx+1].StartingChunk {
			runIdx++
		}
		counts[chunk-1] = runs[runIdx].SamplesPerChunk
	}
	return counts, nil
}
