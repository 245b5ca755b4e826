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

// Package kittyenc wraps decoded RGB24 frames in the kitty terminal
// graphics protocol escape envelope: ESC _ G <control data> ; <base64
// payload> ESC \. It is a straight port of the original player's
// encoder.encode_frame/encode_control_data/encode_rgb trio into the
// teacher's style of small, allocation-light helper types.
package kittyenc

import (
	"encoding/base64"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/e1z0/yt-term/internal/pipeline"
)

const (
	prefix = "\x1b_G"
	suffix = "\x1b\\"
)

// Encoder holds one frame's pixel geometry plus the terminal's cell grid
// and pixel geometry it is placed within, and derives the kitty control
// block's display_cols/display_rows and X/Y offset once up front so
// Encode itself is just string assembly.
type Encoder struct {
	Width, Height      int // source frame pixel dimensions
	TermPxWidth        int // terminal width in pixels
	TermPxHeight       int // terminal height in pixels
	TermCols, TermRows int // terminal width/height in character cells

	// ForcedYOffsetPx, if non-nil, fixes the vertical placement instead of
	// centering it — used when a caller reserves a band of rows at the top
	// of the terminal for a UI (e.g. a status line) above the video.
	ForcedYOffsetPx *int

	displayCols, displayRows int
	xOffsetPx, yOffsetPx     int
}

// New computes an Encoder's display geometry: the largest (display_cols,
// display_rows) cell box that preserves the frame's aspect ratio and fits
// within the terminal's rows, falling back to fitting within its columns
// when the row-filling size would overflow them, then centers the result.
func New(width, height, termPxWidth, termPxHeight, termCols, termRows int) *Encoder {
	e := &Encoder{
		Width: width, Height: height,
		TermPxWidth: termPxWidth, TermPxHeight: termPxHeight,
		TermCols: termCols, TermRows: termRows,
	}
	e.layout()
	return e
}

func (e *Encoder) layout() {
	if e.TermCols <= 0 || e.TermRows <= 0 || e.TermPxWidth <= 0 || e.TermPxHeight <= 0 || e.Width <= 0 || e.Height <= 0 {
		e.displayCols, e.displayRows = e.TermCols, e.TermRows
		return
	}

	cellW := float64(e.TermPxWidth) / float64(e.TermCols)
	cellH := float64(e.TermPxHeight) / float64(e.TermRows)
	aspect := float64(e.Width) / float64(e.Height)

	rows := e.TermRows
	scaledH := float64(rows) * cellH
	scaledW := scaledH * aspect
	if scaledW > float64(e.TermPxWidth) {
		scaledW = float64(e.TermPxWidth)
		scaledH = scaledW / aspect
		rows = maxInt(1, int(math.Round(scaledH/cellH)))
	}
	cols := maxInt(1, int(math.Round(scaledW/cellW)))
	rows = maxInt(1, rows)

	e.displayCols, e.displayRows = cols, rows
	e.xOffsetPx = maxInt(0, int((float64(e.TermCols)*cellW-scaledW)/2))
	if e.ForcedYOffsetPx != nil {
		e.yOffsetPx = *e.ForcedYOffsetPx
	} else {
		e.yOffsetPx = maxInt(0, int((float64(e.TermRows)*cellH-scaledH)/2))
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Encode wraps one RGB24 frame's pixel bytes in a kitty graphics protocol
// transmit-and-display command, base64-encoding the payload.
func (e *Encoder) Encode(rgb []byte) []byte {
	control := e.controlData()
	payload := base64.StdEncoding.EncodeToString(rgb)

	var b strings.Builder
	b.Grow(len(prefix) + len(control) + 1 + len(payload) + len(suffix))
	b.WriteString(prefix)
	b.WriteString(control)
	b.WriteByte(';')
	b.WriteString(payload)
	b.WriteString(suffix)
	return []byte(b.String())
}

// controlData builds the comma-separated key=value control block: f=24
// (24-bit RGB, no alpha), s/v (source pixel width/height), c/r
// (display cell width/height after aspect-preserving scaling), t=d
// (payload is direct/immediate data, not a file path), a=T
// (transmit-and-display), X/Y (pixel offset to center the scaled image in
// the terminal cell grid).
func (e *Encoder) controlData() string {
	yOffsetPx := e.yOffsetPx
	if e.ForcedYOffsetPx != nil {
		yOffsetPx = *e.ForcedYOffsetPx
	}
	fields := map[string]string{
		"f": "24",
		"s": fmt.Sprintf("%d", e.Width),
		"v": fmt.Sprintf("%d", e.Height),
		"c": fmt.Sprintf("%d", e.displayCols),
		"r": fmt.Sprintf("%d", e.displayRows),
		"t": "d",
		"a": "T",
		"X": fmt.Sprintf("%d", e.xOffsetPx),
		"Y": fmt.Sprintf("%d", yOffsetPx),
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+fields[k])
	}
	return strings.Join(parts, ",")
}

// Run is the pipeline's video-encoder stage: it consumes decoded
// VideoRawMessage values and emits kitty-encoded VideoEncodedMessage
// values, owning the single Encoder instance its frames share (frame
// geometry never changes mid-stream for this player's single-profile
// input). This is its own concurrent stage in the pipeline, matching the
// component boundary the design calls "Video Encoder": a thread separate
// from both the decode driver and the terminal adapter that paces it.
func Run(in <-chan pipeline.VideoRawMessage, out chan<- pipeline.VideoEncodedMessage, termPxWidth, termPxHeight, termCols, termRows int) {
	defer close(out)
	var enc *Encoder
	for msg := range in {
		switch msg.Kind {
		case pipeline.VideoRawFrame:
			f := msg.Frame
			if enc == nil || enc.Width != f.Width || enc.Height != f.Height {
				enc = New(f.Width, f.Height, termPxWidth, termPxHeight, termCols, termRows)
			}
			out <- pipeline.VideoEncodedMessage{
				Kind: pipeline.VideoEncodedFrame,
				Frame: &pipeline.TimestampedBytes{
					Data:        enc.Encode(f.Pixels),
					TimestampMS: f.TimestampMS,
				},
			}
		case pipeline.VideoRawFramesPerSecond:
			// Informational only; the adapter paces frames against their
			// own timestamps rather than a fixed fps-derived interval.
		case pipeline.VideoRawDone:
			out <- pipeline.VideoEncodedMessage{Kind: pipeline.VideoEncodedDone}
			return
		}
	}
}
