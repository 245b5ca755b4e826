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

package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/e1z0/yt-term/internal/search"
)

func fakeResults() []search.Result {
	return []search.Result{
		{ID: "a", Title: "first", Channel: "chan a", URL: "a"},
		{ID: "b", Title: "second", Channel: "chan b", URL: "b"},
		{ID: "c", Title: "third", Channel: "chan c", URL: "c"},
	}
}

func TestSearchThenResultsTransition(t *testing.T) {
	m := New(func(ctx context.Context, query string, max int) ([]search.Result, error) {
		return fakeResults(), nil
	}, nil)

	m.input.SetValue("cats")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if cmd == nil {
		t.Fatalf("expected a search command")
	}
	msg := cmd()
	updated, _ = m.Update(msg)
	m = updated.(Model)

	if m.mode != ModeResults {
		t.Fatalf("expected ModeResults, got %v", m.mode)
	}
	if len(m.results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(m.results))
	}
}

func TestSelectNextWraps(t *testing.T) {
	m := New(nil, nil)
	m.results = fakeResults()
	m.selected = 2
	m.selectNext()
	if m.selected != 0 {
		t.Fatalf("expected wraparound to 0, got %d", m.selected)
	}
}

func TestSelectPreviousWraps(t *testing.T) {
	m := New(nil, nil)
	m.results = fakeResults()
	m.selected = 0
	m.selectPrevious()
	if m.selected != 2 {
		t.Fatalf("expected wraparound to 2, got %d", m.selected)
	}
}

func TestEnterOnResultsTriggersPlay(t *testing.T) {
	var played *search.Result
	m := New(nil, func(r search.Result) {
		played = &r
	})
	m.mode = ModeResults
	m.results = fakeResults()
	m.selected = 1

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if m.mode != ModePlaying {
		t.Fatalf("expected ModePlaying, got %v", m.mode)
	}
	if played == nil || played.ID != "b" {
		t.Fatalf("expected play callback with result b, got %+v", played)
	}
	if cmd == nil {
		t.Fatalf("expected tea.Quit command")
	}
}

func TestSlashReturnsToSearch(t *testing.T) {
	m := New(nil, nil)
	m.mode = ModeResults
	m.results = fakeResults()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m = updated.(Model)
	if m.mode != ModeSearch {
		t.Fatalf("expected ModeSearch, got %v", m.mode)
	}
}
