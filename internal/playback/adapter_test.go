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
	"testing"
	"time"
)

func tsIdentity(v int) int64 { return int64(v) }

func TestRunProcessesEveryItemInOrder(t *testing.T) {
	ch := make(chan int)
	go func() {
		defer close(ch)
		for i := 0; i < 5; i++ {
			ch <- i
		}
	}()

	var got []int
	err := Run(ch, tsIdentity, func(v int) error {
		got = append(got, v)
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("want 5 items processed, got %d: %v", len(got), got)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("out of order: %v", got)
		}
	}
}

func TestRunPacesAgainstTimestamps(t *testing.T) {
	ch := make(chan int, 3)
	ch <- 0
	ch <- 100
	ch <- 200
	close(ch)

	start := time.Now()
	var offsets []time.Duration
	err := Run(ch, tsIdentity, func(v int) error {
		offsets = append(offsets, time.Since(start))
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(offsets) != 3 {
		t.Fatalf("want 3 items processed, got %d", len(offsets))
	}
	// Each item should land within a few ms of its own timestamp, not at a
	// fixed tick interval unrelated to it (the "adapter pacing" scenario).
	want := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}
	for i, w := range want {
		if d := offsets[i] - w; d < -20*time.Millisecond || d > 40*time.Millisecond {
			t.Fatalf("item %d emitted at %v, want near %v", i, offsets[i], w)
		}
	}
}

func TestRunPropagatesProcessError(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 1
	close(ch)

	boom := fmtError("boom")
	err := Run(ch, tsIdentity, func(v int) error { return boom })
	if err != boom {
		t.Fatalf("got %v, want %v", err, boom)
	}
}

type fmtError string

func (e fmtError) Error() string { return string(e) }
