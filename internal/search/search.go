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

// Package search shells out to yt-dlp's flat-playlist JSON search (the
// same "ytsearchN:<query>" invocation the original tui/search.rs used)
// and decodes the result into a small typed slice the TUI renders as a
// results list.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/e1z0/yt-term/internal/ytermerr"
)

// Result is one search hit.
type Result struct {
	ID       string
	Title    string
	Channel  string
	Duration float64 // seconds, 0 if unknown
	URL      string
}

type ytDlpPlaylist struct {
	Entries []ytDlpEntry `json:"entries"`
}

type ytDlpEntry struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Channel  *string  `json:"channel"`
	Duration *float64 `json:"duration"`
	URL      string   `json:"url"`
}

// Search runs `yt-dlp --flat-playlist -J ytsearch<max>:<query>` and
// decodes its JSON output. ytDlpPath may be empty to use "yt-dlp" from
// PATH.
func Search(ctx context.Context, ytDlpPath, query string, max int) ([]Result, error) {
	if ytDlpPath == "" {
		ytDlpPath = "yt-dlp"
	}
	if max <= 0 {
		max = 20
	}

	searchTerm := fmt.Sprintf("ytsearch%d:%s", max, query)
	cmd := exec.CommandContext(ctx, ytDlpPath, "--flat-playlist", "-J", searchTerm)
	out, err := cmd.Output()
	if err != nil {
		return nil, ytermerr.IO("search.Search", fmt.Errorf("yt-dlp search failed: %w", err))
	}

	var playlist ytDlpPlaylist
	if err := json.Unmarshal(out, &playlist); err != nil {
		return nil, ytermerr.Parse("search.Search", fmt.Errorf("decoding yt-dlp JSON: %w", err))
	}

	results := make([]Result, 0, len(playlist.Entries))
	for _, e := range playlist.Entries {
		r := Result{ID: e.ID, Title: e.Title, URL: e.URL}
		if e.Channel != nil {
			r.Channel = *e.Channel
		}
		if e.Duration != nil {
			r.Duration = *e.Duration
		}
		results = append(results, r)
	}
	return results, nil
}
