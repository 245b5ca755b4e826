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

// Package source turns a URL or a local file into a byte stream of the
// fragmented-free MP4 this player's container parser expects: 640x360
// H.264 video, 44.1kHz stereo AAC audio, moov before mdat. It reproduces
// the original player's yt-dlp piped into ffmpeg child-process chain,
// expressed with os/exec's StdoutPipe plumbing instead of std::process.
package source

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/e1z0/yt-term/internal/ytermerr"
)

// Options configures the yt-dlp/ffmpeg binaries and target geometry.
type Options struct {
	YtDlpPath  string // defaults to "yt-dlp"
	FfmpegPath string // defaults to "ffmpeg"
	Width      int    // defaults to 640
	Height     int    // defaults to 360
}

func (o Options) withDefaults() Options {
	if o.YtDlpPath == "" {
		o.YtDlpPath = "yt-dlp"
	}
	if o.FfmpegPath == "" {
		o.FfmpegPath = "ffmpeg"
	}
	if o.Width == 0 {
		o.Width = 640
	}
	if o.Height == 0 {
		o.Height = 360
	}
	return o
}

// Stream is a running source pipeline: read MP4 bytes from Reader, then
// Close to terminate both child processes.
type Stream struct {
	Reader io.ReadCloser

	ytdlp  *exec.Cmd
	ffmpeg *exec.Cmd
}

func (s *Stream) Close() error {
	var firstErr error
	if s.Reader != nil {
		firstErr = s.Reader.Close()
	}
	if s.ytdlp != nil && s.ytdlp.Process != nil {
		_ = s.ytdlp.Process.Kill()
		_ = s.ytdlp.Wait()
	}
	if s.ffmpeg != nil && s.ffmpeg.Process != nil {
		_ = s.ffmpeg.Process.Kill()
		_ = s.ffmpeg.Wait()
	}
	return firstErr
}

// OpenURL spawns "yt-dlp -o - <url>" and pipes its stdout into ffmpeg,
// which re-encodes/remuxes to this player's required MP4 profile and
// writes the result to its own stdout.
func OpenURL(ctx context.Context, url string, opts Options) (*Stream, error) {
	opts = opts.withDefaults()

	ytdlp := exec.CommandContext(ctx, opts.YtDlpPath, "-o", "-", "--quiet", "--no-warnings", url)
	ytOut, err := ytdlp.StdoutPipe()
	if err != nil {
		return nil, ytermerr.IO("source.OpenURL", fmt.Errorf("yt-dlp StdoutPipe: %w", err))
	}

	ffmpeg := buildFfmpegCmd(ctx, opts, ytOut, "pipe:0")
	ffOut, err := ffmpeg.StdoutPipe()
	if err != nil {
		return nil, ytermerr.IO("source.OpenURL", fmt.Errorf("ffmpeg StdoutPipe: %w", err))
	}

	if err := ytdlp.Start(); err != nil {
		return nil, ytermerr.IO("source.OpenURL", fmt.Errorf("starting yt-dlp: %w", err))
	}
	if err := ffmpeg.Start(); err != nil {
		_ = ytdlp.Process.Kill()
		return nil, ytermerr.IO("source.OpenURL", fmt.Errorf("starting ffmpeg: %w", err))
	}

	return &Stream{Reader: ffOut, ytdlp: ytdlp, ffmpeg: ffmpeg}, nil
}

// OpenFile transcodes a local file through ffmpeg alone, for local
// testing and for files passed with `ytterm play --file`.
func OpenFile(ctx context.Context, path string, opts Options) (*Stream, error) {
	opts = opts.withDefaults()
	ffmpeg := buildFfmpegCmd(ctx, opts, nil, path)
	ffOut, err := ffmpeg.StdoutPipe()
	if err != nil {
		return nil, ytermerr.IO("source.OpenFile", fmt.Errorf("ffmpeg StdoutPipe: %w", err))
	}
	if err := ffmpeg.Start(); err != nil {
		return nil, ytermerr.IO("source.OpenFile", fmt.Errorf("starting ffmpeg: %w", err))
	}
	return &Stream{Reader: ffOut, ffmpeg: ffmpeg}, nil
}

func buildFfmpegCmd(ctx context.Context, opts Options, stdin io.Reader, input string) *exec.Cmd {
	args := []string{
		"-loglevel", "error",
		"-i", input,
		"-vf", fmt.Sprintf("scale=%d:%d", opts.Width, opts.Height),
		"-c:v", "libx264",
		"-profile:v", "baseline",
		"-pix_fmt", "yuv420p",
		"-g", "9999999", // one keyframe: avoids stss ambiguity this player doesn't need to resolve mid-stream
		"-c:a", "aac",
		"-ar", "44100",
		"-ac", "2",
		// faststart buffers the moov box in memory and writes it ahead of
		// mdat even on a non-seekable pipe output, which this player's
		// container parser requires (it never seeks back for a trailing moov).
		"-movflags", "faststart",
		"-f", "mp4",
		"pipe:1",
	}
	cmd := exec.CommandContext(ctx, opts.FfmpegPath, args...)
	cmd.Stdin = stdin
	return cmd
}
