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

// Package tui implements the search/results/playing state machine with
// charmbracelet/bubbletea, bubbles and lipgloss — the Go-ecosystem
// counterpart of the original crossterm+ratatui search screen. Mode
// names and the App fields they carry are ported directly from
// tui/app.rs; rendering is Elm-architecture (Update/View), bubbletea's
// idiom rather than ratatui's immediate-mode draw calls.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/e1z0/yt-term/internal/search"
)

// Mode mirrors the original AppMode enum.
type Mode int

const (
	ModeSearch Mode = iota
	ModeResults
	ModePlaying
)

// SearchFunc performs a query and returns results; injected so the model
// stays testable without shelling out to yt-dlp.
type SearchFunc func(ctx context.Context, query string, max int) ([]search.Result, error)

// PlayFunc is invoked when the user picks a result to play; the model
// transitions to ModePlaying, calls it, and then quits the program
// (tea.Quit) itself, since actual playback owns the terminal via
// internal/screen and internal/playback, which bubbletea must not be
// drawing over.
type PlayFunc func(r search.Result)

type Model struct {
	mode     Mode
	input    textinput.Model
	results  []search.Result
	selected int
	err      error
	quitting bool

	doSearch SearchFunc
	doPlay   PlayFunc

	Selection *search.Result
}

func New(doSearch SearchFunc, doPlay PlayFunc) Model {
	ti := textinput.New()
	ti.Placeholder = "search youtube..."
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60

	return Model{
		mode:     ModeSearch,
		input:    ti,
		doSearch: doSearch,
		doPlay:   doPlay,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

type searchResultMsg struct {
	results []search.Result
	err     error
}

func (m Model) runSearch(query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		results, err := m.doSearch(ctx, query, 20)
		return searchResultMsg{results: results, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case searchResultMsg:
		m.results = msg.results
		m.err = msg.err
		m.selected = 0
		m.mode = ModeResults
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	}

	switch m.mode {
	case ModeSearch:
		switch msg.String() {
		case "enter":
			q := m.input.Value()
			if q == "" {
				return m, nil
			}
			return m, m.runSearch(q)
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	case ModeResults:
		switch msg.String() {
		case "up", "k":
			m.selectPrevious()
		case "down", "j":
			m.selectNext()
		case "enter":
			if r := m.selectedResult(); r != nil {
				sel := *r
				m.Selection = &sel
				m.mode = ModePlaying
				if m.doPlay != nil {
					m.doPlay(sel)
				}
				return m, tea.Quit
			}
		case "/":
			m.mode = ModeSearch
			m.input.SetValue("")
			m.input.Focus()
		}
	}
	return m, nil
}

func (m *Model) selectNext() {
	if len(m.results) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.results)
}

func (m *Model) selectPrevious() {
	if len(m.results) == 0 {
		return
	}
	if m.selected == 0 {
		m.selected = len(m.results) - 1
		return
	}
	m.selected--
}

func (m Model) selectedResult() *search.Result {
	if m.selected < 0 || m.selected >= len(m.results) {
		return nil
	}
	return &m.results[m.selected]
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)
