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
	"bytes"
	"fmt"

	"github.com/e1z0/yt-term/internal/pipeline"
	"github.com/e1z0/yt-term/internal/ytermerr"
)

// Event is what TryAdvance reports after consuming as many complete
// top-level boxes as are currently buffered.
type Event int

const (
	// EventNeedMore means the buffer doesn't yet hold a complete box;
	// call Feed again before calling TryAdvance again.
	EventNeedMore Event = iota
	// EventMoovReady means Moov and SampleMap are now populated.
	EventMoovReady
	// EventMdatStart means the next byte handed to Feed is the first byte
	// of sample data; call Leftover to retrieve any bytes already
	// buffered past that point, then stop feeding this Parser and read
	// sample bytes directly off the source per the SampleMap.
	EventMdatStart
)

type parseState int

const (
	stateBoxHeader parseState = iota
	stateBoxBody
	stateDone
)

// Parser incrementally walks the top-level box sequence of an MP4 stream.
// It never seeks: every byte is consumed exactly once, in arrival order,
// matching the unseekable nature of a piped ffmpeg stdout stream.
type Parser struct {
	buf   bytes.Buffer
	state parseState

	pendingFourCC string
	pendingSize   int

	Moov       *Moov
	SampleMap  *pipeline.SampleMap
}

func NewParser() *Parser {
	return &Parser{}
}

// Feed appends newly-read bytes to the parser's internal buffer.
func (p *Parser) Feed(b []byte) {
	p.buf.Write(b)
}

// Leftover returns and clears any buffered bytes past an EventMdatStart;
// the caller must treat these as the start of the mdat payload.
func (p *Parser) Leftover() []byte {
	b := p.buf.Bytes()
	out := make([]byte, len(b))
	copy(out, b)
	p.buf.Reset()
	return out
}

// TryAdvance consumes as many complete boxes as are currently buffered,
// stopping at the first box it cannot fully process. Call in a loop:
// Feed more data whenever it returns EventNeedMore.
func (p *Parser) TryAdvance() (Event, error) {
	for {
		switch p.state {
		case stateDone:
			return EventNeedMore, nil
		case stateBoxHeader:
			if p.buf.Len() < 8 {
				return EventNeedMore, nil
			}
			header := p.buf.Next(8)
			c := newCursor("container.Parser", header)
			size, err := c.u32()
			if err != nil {
				return EventNeedMore, err
			}
			fourCC, err := c.fourCC()
			if err != nil {
				return EventNeedMore, err
			}
			if size < 8 {
				return EventNeedMore, ytermerr.Parse("container.Parser", fmt.Errorf("box %q has implausible size %d", fourCC, size))
			}
			if fourCC == "mdat" {
				p.state = stateDone
				return EventMdatStart, nil
			}
			p.pendingFourCC = fourCC
			p.pendingSize = int(size) - 8
			p.state = stateBoxBody
		case stateBoxBody:
			if p.buf.Len() < p.pendingSize {
				return EventNeedMore, nil
			}
			body := make([]byte, p.pendingSize)
			copy(body, p.buf.Next(p.pendingSize))
			p.state = stateBoxHeader

			switch p.pendingFourCC {
			case "ftyp":
				// brand/compatible-brands, unused.
			case "moov":
				moov, err := parseMoov(body)
				if err != nil {
					return EventNeedMore, err
				}
				if moov.VideoTrack() == nil {
					return EventNeedMore, ytermerr.Unsupported("container.Parser", fmt.Errorf("no video track in moov"))
				}
				sampleMap, err := BuildSampleMap(moov)
				if err != nil {
					return EventNeedMore, err
				}
				p.Moov = moov
				p.SampleMap = sampleMap
				return EventMoovReady, nil
			default:
				return EventNeedMore, ytermerr.Parse("container.Parser", fmt.Errorf("unknown_tag: unrecognized top-level box %q", p.pendingFourCC))
			}
		}
	}
}
