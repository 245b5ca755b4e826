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

// Package playback paces decoded/encoded output against the wall clock and
// hands it to a terminal or audio sink. Go has no default interface
// methods, so the shared "start a reference clock on the first item, sleep
// until this item's timestamp has elapsed, emit immediately if it's
// already late" logic the original Adapter trait's run() method provided
// is a plain generic function here instead of a capability set every
// adapter type would otherwise have to re-implement.
package playback

import "time"

// clock implements the reference-epoch pacing algorithm shared by every
// adapter: t0 is the wall-clock instant the first item was dequeued, and
// every later item waits only as long as its own timestamp demands.
type clock struct {
	t0  time.Time
	set bool
}

// wait blocks until tsMS milliseconds have elapsed since the clock's
// epoch, latching the epoch to now on the first call. An item whose
// timestamp has already passed (a late item) returns immediately rather
// than blocking or being dropped — the adapter itself never drops items;
// backpressure further upstream is what keeps it from falling behind.
func (c *clock) wait(tsMS int64) {
	now := time.Now()
	if !c.set {
		c.t0 = now
		c.set = true
	}
	elapsed := now.Sub(c.t0)
	target := time.Duration(tsMS) * time.Millisecond
	if target > elapsed {
		time.Sleep(target - elapsed)
	}
}

// Run pulls items off ch in order, pacing each one against the shared
// wall clock using its own presentation timestamp (via getTS) before
// handing it to process.
func Run[T any](ch <-chan T, getTS func(T) int64, process func(T) error) error {
	var c clock
	for item := range ch {
		c.wait(getTS(item))
		if err := process(item); err != nil {
			return err
		}
	}
	return nil
}
