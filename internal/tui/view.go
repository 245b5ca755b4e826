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
	"fmt"
	"strings"
	"time"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	switch m.mode {
	case ModeSearch:
		b.WriteString(titleStyle.Render("yt-term"))
		b.WriteString("\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("enter to search, esc to quit"))

	case ModeResults:
		b.WriteString(titleStyle.Render(fmt.Sprintf("results (%d)", len(m.results))))
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString(dimStyle.Render("search failed: " + m.err.Error()))
			break
		}
		if len(m.results) == 0 {
			b.WriteString(dimStyle.Render("no results"))
			break
		}
		for i, r := range m.results {
			line := fmt.Sprintf("%s  %s  %s", r.Title, r.Channel, formatDuration(r.Duration))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("up/down to move, enter to play, / to search again, esc to quit"))

	case ModePlaying:
		if r := m.selectedResult(); r != nil {
			b.WriteString(titleStyle.Render("playing: " + r.Title))
		}
	}

	return b.String()
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "?:??"
	}
	d := time.Duration(seconds) * time.Second
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}
