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

// Package screen provides a scoped alternate-screen guard: entering
// switches the terminal to the alternate buffer and hides the cursor,
// leaving always restores the primary buffer, matching the original
// player's ScreenGuard resource (enter on construction, restore on drop).
package screen

import (
	"fmt"
	"io"
)

const (
	enterAltScreen = "\x1b[?1049h\x1b[2J\x1b[H\x1b[?25l"
	leaveAltScreen = "\x1b[?25h\x1b[?1049l\x1b[2J\x1b[H"
)

// Guard owns the terminal's alternate-screen state for as long as it is
// open. Callers should defer Close immediately after Enter succeeds so a
// panicking pipeline stage still restores the user's shell.
type Guard struct {
	w      io.Writer
	closed bool
}

// Enter switches w to the alternate screen buffer, clears it, homes the
// cursor and hides it.
func Enter(w io.Writer) (*Guard, error) {
	if _, err := fmt.Fprint(w, enterAltScreen); err != nil {
		return nil, err
	}
	return &Guard{w: w}, nil
}

// Close restores the primary screen buffer and cursor visibility, then
// clears the screen and homes the cursor. Safe to call more than once.
func (g *Guard) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	_, err := fmt.Fprint(g.w, leaveAltScreen)
	return err
}
