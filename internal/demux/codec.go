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

// Package demux turns the raw (offset, size, is_video) sample stream the
// container package locates inside mdat into decoded VideoFrame/AudioSample
// pipeline messages. It decodes with the same astiav (go-astiav) libav
// bindings and SendPacket/ReceiveFrame loop the teacher's video.go camera
// decode path uses, the one structural difference being that there is no
// astiav.FormatContext here: this player supplies its own demultiplexed
// access units, so codec parameters are built by hand from the avcC/esds
// boxes the container parser already extracted, the same way the original
// demuxer's raw-FFI codec_context module constructs AVCodecParameters
// before calling avcodec_parameters_to_context.
package demux

import (
	"fmt"

	astiav "github.com/asticode/go-astiav"

	"github.com/e1z0/yt-term/internal/container"
	"github.com/e1z0/yt-term/internal/logging"
	"github.com/e1z0/yt-term/internal/ytermerr"
)

// openVideoDecoder builds an H.264 decoder context directly from a parsed
// avcC box: width/height and the AVCC extradata are enough for avcodec to
// derive SPS/PPS without ever having seen a demuxer-owned stream.
func openVideoDecoder(stbl *container.StblBox) (*astiav.CodecContext, error) {
	dec := astiav.FindDecoder(astiav.CodecIDH264)
	if dec == nil {
		return nil, ytermerr.Decoder("demux.openVideoDecoder", fmt.Errorf("no H.264 decoder registered"))
	}

	params := astiav.AllocCodecParameters()
	defer params.Free()
	params.SetMediaType(astiav.MediaTypeVideo)
	params.SetCodecID(astiav.CodecIDH264)
	params.SetWidth(stbl.Width)
	params.SetHeight(stbl.Height)
	if err := params.SetExtraData(stbl.AVCConfig); err != nil {
		return nil, ytermerr.Decoder("demux.openVideoDecoder", fmt.Errorf("SetExtraData: %w", err))
	}

	ctx := astiav.AllocCodecContext(dec)
	if ctx == nil {
		return nil, ytermerr.Decoder("demux.openVideoDecoder", fmt.Errorf("AllocCodecContext"))
	}
	if err := params.ToCodecContext(ctx); err != nil {
		ctx.Free()
		return nil, ytermerr.Decoder("demux.openVideoDecoder", fmt.Errorf("ToCodecContext: %w", err))
	}

	opts := astiav.NewDictionary()
	defer opts.Free()
	_ = opts.Set("err_detect", "careful", 0)
	logging.Debug("demux: opening video decoder with options: %s", joinDict(opts))

	if err := ctx.Open(dec, opts); err != nil {
		ctx.Free()
		return nil, ytermerr.Decoder("demux.openVideoDecoder", fmt.Errorf("Open: %w", err))
	}
	return ctx, nil
}

// openAudioDecoder builds an AAC decoder context from the esds/
// AudioSpecificConfig box, with the sample rate/channel count already
// resolved by the mp4a sample entry parser.
func openAudioDecoder(stbl *container.StblBox) (*astiav.CodecContext, error) {
	dec := astiav.FindDecoder(astiav.CodecIDAac)
	if dec == nil {
		return nil, ytermerr.Decoder("demux.openAudioDecoder", fmt.Errorf("no AAC decoder registered"))
	}

	params := astiav.AllocCodecParameters()
	defer params.Free()
	params.SetMediaType(astiav.MediaTypeAudio)
	params.SetCodecID(astiav.CodecIDAac)
	params.SetSampleRate(stbl.SampleRate)
	params.SetChannelLayout(astiav.NewChannelLayoutDefault(stbl.Channels))
	if len(stbl.AudioConfig) > 0 {
		if err := params.SetExtraData(stbl.AudioConfig); err != nil {
			return nil, ytermerr.Decoder("demux.openAudioDecoder", fmt.Errorf("SetExtraData: %w", err))
		}
	}

	ctx := astiav.AllocCodecContext(dec)
	if ctx == nil {
		return nil, ytermerr.Decoder("demux.openAudioDecoder", fmt.Errorf("AllocCodecContext"))
	}
	if err := params.ToCodecContext(ctx); err != nil {
		ctx.Free()
		return nil, ytermerr.Decoder("demux.openAudioDecoder", fmt.Errorf("ToCodecContext: %w", err))
	}

	if err := ctx.Open(dec, nil); err != nil {
		ctx.Free()
		return nil, ytermerr.Decoder("demux.openAudioDecoder", fmt.Errorf("Open: %w", err))
	}
	return ctx, nil
}
