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

package kittyenc

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestControlDataFields(t *testing.T) {
	e := New(640, 360, 1280, 720, 128, 40)
	cd := e.controlData()

	for _, want := range []string{"f=24", "s=640", "v=360", "t=d", "a=T"} {
		if !strings.Contains(cd, want) {
			t.Fatalf("control data %q missing %q", cd, want)
		}
	}
}

func TestControlDataCentersAndScalesFrame(t *testing.T) {
	// A 640x360 (16:9) frame in a 1280x720, 128x40-cell terminal: rows fill
	// the terminal (40 rows * 18px/row = 720px tall), width scales to the
	// same aspect ratio (1280px), exactly filling the terminal with no
	// offset either way.
	e := New(640, 360, 1280, 720, 128, 40)
	cd := e.controlData()
	if !strings.Contains(cd, "X=0") {
		t.Fatalf("control data %q missing expected X offset", cd)
	}
	if !strings.Contains(cd, "Y=0") {
		t.Fatalf("control data %q missing expected Y offset", cd)
	}
	if !strings.Contains(cd, "c=128") || !strings.Contains(cd, "r=40") {
		t.Fatalf("control data %q should fill the full cell grid, got", cd)
	}
}

func TestControlDataClampsToColumnsWhenRowFillOverflowsWidth(t *testing.T) {
	// A narrow, tall terminal: filling all rows at the frame's aspect ratio
	// would overflow the available columns, so width clamps to the
	// terminal's pixel width and height (and row count) shrink to match.
	e := New(640, 360, 400, 1000, 40, 100) // 10px/cell both axes
	cd := e.controlData()
	if !strings.Contains(cd, "c=40") {
		t.Fatalf("control data %q should clamp display cols to the terminal width, got", cd)
	}
	if strings.Contains(cd, "r=100") {
		t.Fatalf("control data %q should not fill all rows once clamped by width", cd)
	}
}

func TestControlDataNoNegativeOffsetWhenFrameFillsTerminal(t *testing.T) {
	e := New(1920, 1080, 1280, 720, 128, 40)
	cd := e.controlData()
	if !strings.Contains(cd, "X=0") || !strings.Contains(cd, "Y=0") {
		t.Fatalf("control data %q should clamp offsets to zero, got", cd)
	}
}

func TestEncodeEnvelope(t *testing.T) {
	e := New(2, 1, 2, 1, 1, 1)
	pixels := []byte{255, 0, 0, 0, 255, 0} // 2x1 red/green frame
	got := e.Encode(pixels)

	s := string(got)
	if !strings.HasPrefix(s, prefix) {
		t.Fatalf("missing kitty prefix, got %q", s[:min(len(s), 10)])
	}
	if !strings.HasSuffix(s, suffix) {
		t.Fatalf("missing kitty suffix, got %q", s[max(0, len(s)-10):])
	}
	for _, want := range []string{"f=24", "s=2", "v=1", "X=0", "Y=0", "c=1", "r=1"} {
		if !strings.Contains(s, want) {
			t.Fatalf("envelope %q missing %q", s, want)
		}
	}

	wantPayload := base64.StdEncoding.EncodeToString(pixels)
	if !strings.Contains(s, wantPayload) {
		t.Fatalf("payload %q not found in %q", wantPayload, s)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
