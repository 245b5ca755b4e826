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
	"fmt"
	"io"

	"github.com/e1z0/yt-term/internal/pipeline"
	"github.com/e1z0/yt-term/internal/ytermerr"
)

// VideoAdapter writes kitty-protocol-encoded frames to a terminal, homing
// the cursor before each frame the way the original TerminalAdapter's
// display_frame wrote "\x1B[H" before every frame to overwrite the
// previous one in place rather than scrolling.
type VideoAdapter struct {
	w io.Writer
}

func NewVideoAdapter(w io.Writer) *VideoAdapter {
	return &VideoAdapter{w: w}
}

// Run paces already kitty-encoded frames against their own presentation
// timestamps (the shared clock in adapter.go) and writes each one, homing
// the cursor first. The encoding itself happens one stage upstream, in
// kittyenc.Run, matching the pipeline's four-stage design: this adapter
// only paces and writes.
func (v *VideoAdapter) Run(ch <-chan pipeline.VideoEncodedMessage) error {
	frames := make(chan *pipeline.TimestampedBytes)
	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(frames,
			func(f *pipeline.TimestampedBytes) int64 { return f.TimestampMS },
			func(f *pipeline.TimestampedBytes) error {
				if _, err := fmt.Fprint(v.w, "\x1b[H"); err != nil {
					return ytermerr.Device("playback.VideoAdapter.Run", err)
				}
				_, err := v.w.Write(f.Data)
				return err
			})
	}()

	for msg := range ch {
		switch msg.Kind {
		case pipeline.VideoEncodedFrame:
			frames <- msg.Frame
		case pipeline.VideoEncodedDone:
			close(frames)
			return <-errCh
		}
	}
	close(frames)
	return <-errCh
}
