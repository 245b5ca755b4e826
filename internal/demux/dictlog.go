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
	"sort"
	"strings"

	astiav "github.com/asticode/go-astiav"
)

// dictPairs walks an astiav.Dictionary and returns its key=value pairs
// sorted for deterministic debug logging, the same iteration pattern the
// teacher used to log ffmpeg decoder options before opening a stream.
func dictPairs(d *astiav.Dictionary) []string {
	if d == nil {
		return nil
	}
	var pairs []string
	var prev *astiav.DictionaryEntry
	flags := astiav.NewDictionaryFlags(astiav.DictionaryFlagIgnoreSuffix)
	for {
		e := d.Get("", prev, flags)
		if e == nil {
			break
		}
		pairs = append(pairs, e.Key()+"="+e.Value())
		prev = e
	}
	sort.Strings(pairs)
	return pairs
}

// joinDict renders a dictionary's pairs as a single log line.
func joinDict(d *astiav.Dictionary) string {
	return strings.Join(dictPairs(d), " ")
}
