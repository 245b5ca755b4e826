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
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"

	astiav "github.com/asticode/go-astiav"

	"github.com/e1z0/yt-term/internal/container"
	"github.com/e1z0/yt-term/internal/logging"
	"github.com/e1z0/yt-term/internal/pipeline"
	"github.com/e1z0/yt-term/internal/ytermerr"
)

// Run parses src's box tree, opens software H.264/AAC decoders built
// directly from the avcC/esds boxes it finds, then walks the sample map
// sequentially, decoding each access unit and publishing results on
// videoCh/audioCh until src is exhausted or cancelled is set. It mirrors
// the teacher's decodeLoop/openAndDecode pair: one long-lived goroutine,
// SendPacket/ReceiveFrame per access unit, channel handoff of decoded
// output, and a cooperative cancellation flag checked between samples
// rather than any blocking cancel primitive.
func Run(src io.Reader, cancelled *atomic.Bool, videoCh chan<- pipeline.VideoRawMessage, audioCh chan<- pipeline.AudioRawMessage) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	defer close(videoCh)
	defer close(audioCh)

	parser := container.NewParser()
	buf := make([]byte, 64*1024)

	for parser.Moov == nil {
		if cancelled.Load() {
			return ytermerr.Cancelled("demux.Run")
		}
		n, err := src.Read(buf)
		if n > 0 {
			parser.Feed(buf[:n])
		}
		if err != nil && n == 0 {
			if errors.Is(err, io.EOF) {
				return ytermerr.Parse("demux.Run", fmt.Errorf("stream ended before a moov box was found"))
			}
			return ytermerr.IO("demux.Run", err)
		}
		for {
			ev, perr := parser.TryAdvance()
			if perr != nil {
				return perr
			}
			if ev == container.EventMoovReady {
				break
			}
			if ev == container.EventMdatStart {
				return ytermerr.Unsupported("demux.Run", fmt.Errorf("mdat encountered before moov; moov must precede mdat"))
			}
			if ev == container.EventNeedMore {
				break
			}
		}
	}

	moov := parser.Moov
	videoTrack := moov.VideoTrack()
	audioTrack := moov.AudioTrack()
	if videoTrack == nil {
		return ytermerr.Unsupported("demux.Run", fmt.Errorf("no video track"))
	}

	videoCtx, err := openVideoDecoder(&videoTrack.Stbl)
	if err != nil {
		return err
	}
	defer videoCtx.Free()

	var audioCtx *astiav.CodecContext
	if audioTrack != nil {
		audioCtx, err = openAudioDecoder(&audioTrack.Stbl)
		if err != nil {
			logging.Warn("demux: audio decoder unavailable, continuing video-only: %v", err)
			audioCtx = nil
		} else {
			defer audioCtx.Free()
		}
	}

	// drain the mdat bytes already buffered past the moov box before
	// continuing to read from src.
	mdatReader := io.MultiReader(newBytesReader(parser.Leftover()), src)

	fps := videoTrack.FrameRate()
	videoCh <- pipeline.VideoRawMessage{Kind: pipeline.VideoRawFramesPerSecond, FramesPerSecond: fps}

	var scaler rgbScaler
	defer scaler.close()
	resamp := newResampler()
	defer resamp.close()

	vFrame := astiav.AllocFrame()
	defer vFrame.Free()
	aFrame := astiav.AllocFrame()
	defer aFrame.Free()
	pkt := astiav.AllocPacket()
	defer pkt.Free()

	var videoSampleCount, audioSampleCount int64

	nalLengthSize := videoTrack.Stbl.NALLengthSize
	if nalLengthSize == 0 {
		nalLengthSize = 4
	}

	// Some libavcodec builds don't re-derive SPS/PPS out of
	// AVCodecParameters.extradata once the context is already open, so the
	// parameter sets are also prepended to the first access unit handed to
	// the decoder, the same belt-and-suspenders the original demuxer's
	// codec_context module relied on before SendPacket ever ran.
	paramSets, err := avccParameterSets(videoTrack.Stbl.AVCConfig)
	if err != nil {
		logging.Warn("demux: could not extract avcC parameter sets, relying on extradata alone: %v", err)
		paramSets = nil
	}

	return runSampleLoop(
		mdatReader, cancelled, videoCh, audioCh,
		videoCtx, audioCtx, &scaler, resamp, vFrame, aFrame, pkt,
		&videoSampleCount, &audioSampleCount,
		parser.SampleMap, nalLengthSize, fps, paramSets,
	)
}

func runSampleLoop(
	r io.Reader,
	cancelled *atomic.Bool,
	videoCh chan<- pipeline.VideoRawMessage,
	audioCh chan<- pipeline.AudioRawMessage,
	videoCtx, audioCtx *astiav.CodecContext,
	scaler *rgbScaler,
	resamp *resampler,
	vFrame, aFrame *astiav.Frame,
	pkt *astiav.Packet,
	videoSampleCount, audioSampleCount *int64,
	sm *pipeline.SampleMap,
	nalLengthSize int,
	fps float64,
	paramSets []byte,
) error {
	primedParamSets := false
	for _, s := range sm.Samples {
		if cancelled.Load() {
			return ytermerr.Cancelled("demux.runSampleLoop")
		}

		au := make([]byte, s.Size)
		if _, err := io.ReadFull(r, au); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return ytermerr.IO("demux.runSampleLoop", err)
		}

		if s.IsVideo {
			annexB, err := avccToAnnexB(au, nalLengthSize)
			if err != nil {
				logging.Warn("demux: dropping unparsable access unit: %v", err)
				continue
			}
			if len(annexB) == 0 {
				// An access unit with no non-empty NAL units carries
				// nothing for the decoder; skip it rather than sending an
				// empty packet.
				continue
			}
			if !primedParamSets && len(paramSets) > 0 {
				annexB = append(append([]byte{}, paramSets...), annexB...)
				primedParamSets = true
			}
			if err := decodeVideo(videoCtx, scaler, pkt, vFrame, annexB, *videoSampleCount, fps, videoCh); err != nil {
				logging.Warn("demux: video decode error: %v", err)
			}
			*videoSampleCount++
		} else if audioCtx != nil {
			if err := decodeAudio(audioCtx, resamp, pkt, aFrame, au, audioSampleCount, audioCh); err != nil {
				logging.Warn("demux: audio decode error: %v", err)
			}
		}
	}

	videoCh <- pipeline.VideoRawMessage{Kind: pipeline.VideoRawDone}
	audioCh <- pipeline.AudioRawMessage{Kind: pipeline.AudioRawDone}
	return nil
}

func decodeVideo(ctx *astiav.CodecContext, scaler *rgbScaler, pkt *astiav.Packet, frame *astiav.Frame, annexB []byte, sampleIndex int64, fps float64, out chan<- pipeline.VideoRawMessage) error {
	if err := pkt.FromData(annexB); err != nil {
		return fmt.Errorf("Packet.FromData: %w", err)
	}
	defer pkt.Unref()

	if err := ctx.SendPacket(pkt); err != nil && !errors.Is(err, astiav.ErrEagain) {
		return fmt.Errorf("SendPacket: %w", err)
	}
	for {
		err := ctx.ReceiveFrame(frame)
		if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("ReceiveFrame: %w", err)
		}

		w, h, pixels, serr := scaler.toRGB24(frame)
		frame.Unref()
		if serr != nil {
			return serr
		}

		// ctx.Framerate() is never populated: this decoder is opened from a
		// hand-built avcC AVCodecParameters set (openVideoDecoder), not a
		// demuxer-owned AVStream, so libav has no framerate to report.
		// Derive the timestamp from the container's own stts-sample-delta
		// frame rate instead.
		tsMS := int64(0)
		if fps > 0 {
			tsMS = int64(float64(sampleIndex) * 1000 / fps)
		}
		out <- pipeline.VideoRawMessage{
			Kind: pipeline.VideoRawFrame,
			Frame: &pipeline.VideoFrame{
				Width: w, Height: h, Pixels: pixels, TimestampMS: tsMS,
			},
		}
	}
}

func decodeAudio(ctx *astiav.CodecContext, resamp *resampler, pkt *astiav.Packet, frame *astiav.Frame, au []byte, sampleCount *int64, out chan<- pipeline.AudioRawMessage) error {
	if err := pkt.FromData(au); err != nil {
		return fmt.Errorf("Packet.FromData: %w", err)
	}
	defer pkt.Unref()

	if err := ctx.SendPacket(pkt); err != nil && !errors.Is(err, astiav.ErrEagain) {
		return fmt.Errorf("SendPacket: %w", err)
	}
	for {
		err := ctx.ReceiveFrame(frame)
		if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("ReceiveFrame: %w", err)
		}

		interleaved, cerr := resamp.convert(frame)
		nbSamples := frame.NbSamples()
		frame.Unref()
		if cerr != nil {
			return cerr
		}

		// Derive the timestamp from the accumulated output sample count
		// rather than a rounded per-block millisecond constant, so long
		// playbacks never drift relative to the video clock (see
		// DESIGN.md Open Question #2).
		tsMS := *sampleCount * 1000 / TargetSampleRate
		*sampleCount += int64(nbSamples)

		out <- pipeline.AudioRawMessage{
			Kind:   pipeline.AudioRawSample,
			Sample: &pipeline.AudioSample{Interleaved: interleaved, TimestampMS: tsMS},
		}
	}
}
