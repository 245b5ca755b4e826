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

package container

import (
	"encoding/binary"
	"fmt"

	"github.com/e1z0/yt-term/internal/ytermerr"
)

// cursor is a tiny bounds-checked big-endian reader, kept only for the
// top-level size+fourCC peek in parser.go's Feed/TryAdvance loop: that
// peek runs before a complete box is buffered, so it is the one place in
// this package with nothing for github.com/tetsuo/mp4's Reader to parse
// yet. Everything past that point (moov's full box tree) is decoded by
// the library instead; see moov.go.
type cursor struct {
	op   string
	data []byte
	pos  int
}

func newCursor(op string, data []byte) *cursor {
	return &cursor{op: op, data: data}
}

func (c *cursor) remaining() int { return len(c.data) - c.pos }

func (c *cursor) need(n int) error {
	if c.remaining() < n {
		return ytermerr.Parse(c.op, fmt.Errorf("need %d bytes, have %d", n, c.remaining()))
	}
	return nil
}

func (c *cursor) u32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *cursor) fourCC() (string, error) {
	if err := c.need(4); err != nil {
		return "", err
	}
	s := string(c.data[c.pos : c.pos+4])
	c.pos += 4
	return s, nil
}
