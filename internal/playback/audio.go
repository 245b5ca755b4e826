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

package playback

import (
	"io"
	"math"
	"sync"

	"github.com/hajimehoshi/oto/v2"

	"github.com/e1z0/yt-term/internal/demux"
	"github.com/e1z0/yt-term/internal/logging"
	"github.com/e1z0/yt-term/internal/pipeline"
	"github.com/e1z0/yt-term/internal/ytermerr"
)

// AudioSink owns the process-wide oto/v2 context, the same singleton
// pattern the teacher's InitGlobalAudio used, generalized from 8kHz mono
// S16 to 44.1kHz stereo float32 (the format every track is resampled to
// in internal/demux, so the sink never has to branch on source format).
type AudioSink struct {
	mu  sync.Mutex
	ctx *oto.Context
}

var (
	globalAudio   *AudioSink
	globalAudioMu sync.Mutex
)

// GlobalAudioSink lazily creates the process-wide oto context.
func GlobalAudioSink() (*AudioSink, error) {
	globalAudioMu.Lock()
	defer globalAudioMu.Unlock()
	if globalAudio != nil {
		return globalAudio, nil
	}

	ctx, ready, err := oto.NewContext(demux.TargetSampleRate, demux.TargetChannels, oto.FormatFloat32LE)
	if err != nil {
		return nil, ytermerr.Device("playback.GlobalAudioSink", err)
	}
	go func() {
		<-ready
		logging.Debug("audio: oto context ready")
	}()

	globalAudio = &AudioSink{ctx: ctx}
	return globalAudio, nil
}

// AudioAdapter paces AudioRawMessage values against the wall clock and
// streams the PCM through an oto/v2 player via an io.Pipe, mirroring the
// teacher's io.Pipe-fed oto.Player wiring in video.go's audio path.
type AudioAdapter struct {
	sink   *AudioSink
	player oto.Player
	pw     *io.PipeWriter
}

func NewAudioAdapter(sink *AudioSink) (*AudioAdapter, error) {
	pr, pw := io.Pipe()
	p := sink.ctx.NewPlayer(pr)
	if p == nil {
		_ = pw.Close()
		return nil, ytermerr.Device("playback.NewAudioAdapter", errNewPlayerFailed)
	}
	p.Play()
	return &AudioAdapter{sink: sink, player: p, pw: pw}, nil
}

func (a *AudioAdapter) Close() error {
	_ = a.pw.Close()
	return a.player.Close()
}

// Run drains ch, pacing each sample against its own presentation
// timestamp (the shared clock in adapter.go) and then writing its
// interleaved float32 PCM to the player; the blocking pipe write into
// oto/v2 adds backpressure from the audio device on top of that.
func (a *AudioAdapter) Run(ch <-chan pipeline.AudioRawMessage) error {
	return Run(ch,
		func(msg pipeline.AudioRawMessage) int64 {
			if msg.Sample == nil {
				return 0
			}
			return msg.Sample.TimestampMS
		},
		func(msg pipeline.AudioRawMessage) error {
			if msg.Kind != pipeline.AudioRawSample || msg.Sample == nil {
				return nil
			}
			buf := floatsToLEBytes(msg.Sample.Interleaved)
			if _, err := a.pw.Write(buf); err != nil {
				return ytermerr.Device("playback.AudioAdapter.Run", err)
			}
			return nil
		})
}

func floatsToLEBytes(fs []float32) []byte {
	out := make([]byte, len(fs)*4)
	for i, f := range fs {
		bits := math.Float32bits(f)
		out[i*4+0] = byte(bits)
		out[i*4+1] = byte(bits >> 8)
		out[i*4+2] = byte(bits >> 16)
		out[i*4+3] = byte(bits >> 24)
	}
	return out
}

var errNewPlayerFailed = &playerError{"oto NewPlayer returned nil"}

type playerError struct{ s string }

func (e *playerError) Error() string { return e.s }
