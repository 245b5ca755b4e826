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

// Package termsize queries the controlling terminal's pixel geometry via
// TIOCGWINSZ, the same ioctl the original player's get_terminal_size used
// through libc, here issued through golang.org/x/sys/unix instead of cgo.
package termsize

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/e1z0/yt-term/internal/ytermerr"
)

// Size is a terminal's character-cell and pixel geometry.
type Size struct {
	Cols, Rows  int
	PixelWidth  int
	PixelHeight int
}

// Query reads stdout's window size. Kitty graphics placement needs the
// pixel dimensions (PixelWidth/PixelHeight) in addition to the
// character-cell dimensions; a terminal or multiplexer that reports zero
// for either is treated as a fatal initialization error rather than
// silently substituted with a guessed default; size-dependent centering
// math elsewhere in the player would otherwise misplace every frame.
func Query() (Size, error) {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return Size{}, ytermerr.Device("termsize.Query", fmt.Errorf("TIOCGWINSZ: %w", err))
	}
	s := Size{
		Cols:        int(ws.Col),
		Rows:        int(ws.Row),
		PixelWidth:  int(ws.Xpixel),
		PixelHeight: int(ws.Ypixel),
	}
	if s.Cols == 0 || s.Rows == 0 || s.PixelWidth == 0 || s.PixelHeight == 0 {
		return Size{}, ytermerr.Device("termsize.Query", fmt.Errorf("terminal reported incomplete geometry: %+v", s))
	}
	return s, nil
}
