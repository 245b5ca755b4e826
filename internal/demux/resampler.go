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

package demux

import (
	"fmt"
	"math"

	astiav "github.com/asticode/go-astiav"

	"github.com/e1z0/yt-term/internal/ytermerr"
)

// TargetSampleRate and TargetChannels are what the audio playback adapter
// always receives, regardless of the source file's actual AAC
// configuration: the oto/v2 sink is
// opened once for the player's lifetime, so every track is resampled to
// match it rather than reopening the sink per file.
const (
	TargetSampleRate = 44100
	TargetChannels   = 2
)

// resampler wraps astiav's SoftwareResampleContext (the same swr the
// teacher's recording path used to convert decoded audio into its AAC
// encoder's expected layout) to instead convert into float32 interleaved
// stereo at TargetSampleRate.
type resampler struct {
	swr *astiav.SoftwareResampleContext
	dst *astiav.Frame
}

func newResampler() *resampler {
	return &resampler{}
}

func (r *resampler) close() {
	if r.dst != nil {
		r.dst.Free()
		r.dst = nil
	}
	if r.swr != nil {
		r.swr.Free()
		r.swr = nil
	}
}

func (r *resampler) convert(src *astiav.Frame) ([]float32, error) {
	if r.swr == nil {
		swr := astiav.AllocSoftwareResampleContext()
		if swr == nil {
			return nil, ytermerr.Decoder("demux.resampler", fmt.Errorf("AllocSoftwareResampleContext"))
		}
		dst := astiav.AllocFrame()
		dst.SetChannelLayout(astiav.NewChannelLayoutDefault(TargetChannels))
		dst.SetSampleFormat(astiav.SampleFormatFlt)
		dst.SetSampleRate(TargetSampleRate)
		r.swr = swr
		r.dst = dst
	}

	r.dst.SetNbSamples(src.NbSamples())
	if err := r.dst.AllocBuffer(0); err != nil {
		return nil, ytermerr.Decoder("demux.resampler", fmt.Errorf("AllocBuffer: %w", err))
	}
	if err := r.swr.ConvertFrame(src, r.dst); err != nil {
		return nil, ytermerr.Decoder("demux.resampler", fmt.Errorf("ConvertFrame: %w", err))
	}

	raw, err := r.dst.Data().Bytes(0)
	if err != nil {
		return nil, ytermerr.Decoder("demux.resampler", fmt.Errorf("Data: %w", err))
	}
	n := r.dst.NbSamples() * TargetChannels
	need := n * 4
	if need > len(raw) {
		need = len(raw) - (len(raw) % 4)
	}
	out := make([]float32, need/4)
	for i := range out {
		out[i] = float32FromLEBytes(raw[i*4 : i*4+4])
	}
	r.dst.Unref()
	return out, nil
}

func float32FromLEBytes(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}
