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

	mp4 "github.com/tetsuo/mp4"

	"github.com/e1z0/yt-term/internal/ytermerr"
)

// typeAvc3 covers the rarer avc3-coded variant of the AVC sample entry
// (in-band parameter sets); the pack's box type table only lists avc1.
var typeAvc3 = mp4.BoxType{'a', 'v', 'c', '3'}

// asBox prepends a synthetic size+fourCC header to body so it can be fed
// to mp4.Reader as a standalone box. Used for the handful of full boxes
// (mvhd, mdhd, stts, stsc, stsz, stco/co64, stss) this package parses from
// a bare body slice rather than while walking a parent Reader.
func asBox(fourCC string, body []byte) []byte {
	buf := make([]byte, 8+len(body))
	binary.BigEndian.PutUint32(buf[0:4], uint32(8+len(body)))
	copy(buf[4:8], fourCC)
	copy(buf[8:], body)
	return buf
}

// parseMoov walks a moov box body the way get_moov_box.rs does: one pass
// per nesting level, dispatching on each child box's fourCC, erroring on
// any required child that never showed up. The box-tree walk and every
// leaf box's field layout are decoded by github.com/tetsuo/mp4's Reader
// and typed iterators rather than hand-rolled cursor arithmetic; only the
// Feed/TryAdvance streaming shell in parser.go remains bespoke, since that
// part has no buffered box to hand the library until a full box arrives.
func parseMoov(body []byte) (*Moov, error) {
	var timescale uint32
	var tracks []Track
	foundMvhd := false

	mr := mp4.NewReader(body)
	for mr.Next() {
		switch mr.Type() {
		case mp4.TypeMvhd:
			ts, err := parseMvhd(mr.RawBox()[8:])
			if err != nil {
				return nil, err
			}
			timescale = ts
			foundMvhd = true
		case mp4.TypeTrak:
			tr, err := parseTrak(mr.Data())
			if err != nil {
				return nil, err
			}
			tracks = append(tracks, *tr)
		default:
			// udta, iods and similar boxes are ignored.
		}
	}
	if !foundMvhd {
		return nil, ytermerr.Parse("container.parseMoov", fmt.Errorf("no mvhd box found"))
	}
	return &Moov{Timescale: timescale, Tracks: tracks}, nil
}

// parseMvhd takes the mvhd box's content including its version+flags
// header (the same slice convention cursor-based callers used), re-wraps
// it as a standalone box, and lets Reader.ReadMvhd do the version-0/
// version-1 field-width switch.
func parseMvhd(body []byte) (uint32, error) {
	mr := mp4.NewReader(asBox("mvhd", body))
	if !mr.Next() {
		return 0, ytermerr.Parse("container.parseMvhd", fmt.Errorf("malformed mvhd box"))
	}
	ts, _, _ := mr.ReadMvhd()
	return ts, nil
}

func parseTrak(body []byte) (*Track, error) {
	var mdhdTimescale uint32
	var isVideo bool
	var stbl StblBox
	foundMdia := false

	mr := mp4.NewReader(body)
	for mr.Next() {
		switch mr.Type() {
		case mp4.TypeTkhd:
			// width/height live here too, but avc1 stsd already carries
			// the decode resolution we need; tkhd is otherwise unused.
		case mp4.TypeMdia:
			ts, video, sb, err := parseMdia(mr.Data())
			if err != nil {
				return nil, err
			}
			mdhdTimescale = ts
			isVideo = video
			stbl = sb
			foundMdia = true
		}
	}
	if !foundMdia {
		return nil, ytermerr.Parse("container.parseTrak", fmt.Errorf("no mdia box found"))
	}
	return &Track{IsVideo: isVideo, Timescale: mdhdTimescale, Stbl: stbl}, nil
}

func parseMdia(body []byte) (timescale uint32, isVideo bool, stbl StblBox, err error) {
	foundMdhd := false
	foundMinf := false

	mr := mp4.NewReader(body)
	for mr.Next() {
		switch mr.Type() {
		case mp4.TypeMdhd:
			ts, e := parseMdhd(mr.RawBox()[8:])
			if e != nil {
				err = e
				return
			}
			timescale = ts
			foundMdhd = true
		case mp4.TypeHdlr:
			// handler type is redundant with minf's vmhd/smhd presence.
		case mp4.TypeMinf:
			video, sb, e := parseMinf(mr.Data())
			if e != nil {
				err = e
				return
			}
			isVideo = video
			stbl = sb
			foundMinf = true
		default:
			err = ytermerr.Parse("container.parseMdia", fmt.Errorf("unexpected mdia sub-box %q", mr.Type()))
			return
		}
	}
	if !foundMdhd {
		err = ytermerr.Parse("container.parseMdia", fmt.Errorf("no mdhd box found"))
		return
	}
	if !foundMinf {
		err = ytermerr.Parse("container.parseMdia", fmt.Errorf("no minf box found"))
		return
	}
	return
}

func parseMdhd(body []byte) (uint32, error) {
	mr := mp4.NewReader(asBox("mdhd", body))
	if !mr.Next() {
		return 0, ytermerr.Parse("container.parseMdhd", fmt.Errorf("malformed mdhd box"))
	}
	ts, _, _ := mr.ReadMdhd()
	return ts, nil
}

func parseMinf(body []byte) (isVideo bool, stbl StblBox, err error) {
	haveHeader := false
	foundStbl := false

	mr := mp4.NewReader(body)
	for mr.Next() {
		switch mr.Type() {
		case mp4.TypeVmhd:
			isVideo = true
			haveHeader = true
		case mp4.TypeSmhd:
			isVideo = false
			haveHeader = true
		case mp4.TypeDinf:
			// data reference info, unused: samples are always read from
			// the same stream this parser is fed.
		case mp4.TypeStbl:
			sb, e := parseStbl(mr.Data())
			if e != nil {
				err = e
				return
			}
			stbl = sb
			foundStbl = true
		default:
			err = ytermerr.Parse("container.parseMinf", fmt.Errorf("unexpected minf sub-box %q", mr.Type()))
			return
		}
	}
	if !haveHeader {
		err = ytermerr.Parse("container.parseMinf", fmt.Errorf("no vmhd/smhd header found"))
		return
	}
	if !foundStbl {
		err = ytermerr.Parse("container.parseMinf", fmt.Errorf("no stbl box found"))
		return
	}
	return
}

func parseStbl(body []byte) (StblBox, error) {
	var stbl StblBox
	var haveStts, haveStsc, haveStsz, haveStco bool

	mr := mp4.NewReader(body)
	for mr.Next() {
		switch mr.Type() {
		case mp4.TypeStsd:
			w, h, sr, ch, avcc, nalLenSize, audioCfg, e := parseStsd(mr.RawBox())
			if e != nil {
				return stbl, e
			}
			stbl.Width, stbl.Height = w, h
			stbl.SampleRate, stbl.Channels = sr, ch
			stbl.AVCConfig = avcc
			stbl.NALLengthSize = nalLenSize
			stbl.AudioConfig = audioCfg
		case mp4.TypeStts:
			count, delta, e := parseStts(mr.RawBox()[8:])
			if e != nil {
				return stbl, e
			}
			stbl.SampleCount, stbl.SampleDelta = count, delta
			haveStts = true
		case mp4.TypeCtts:
			// composition-time offsets: this player treats decode order
			// as presentation order, so ctts is skipped without being
			// read.
		case mp4.TypeStsc:
			runs, e := parseStsc(mr.RawBox()[8:])
			if e != nil {
				return stbl, e
			}
			stbl.sampleToChunk = runs
			haveStsc = true
		case mp4.TypeStsz:
			sizes, e := parseStsz(mr.RawBox()[8:])
			if e != nil {
				return stbl, e
			}
			stbl.sampleSizes = sizes
			haveStsz = true
		case mp4.TypeStco, mp4.TypeCo64:
			offsets, e := parseStco(mr.Type().String(), mr.RawBox()[8:])
			if e != nil {
				return stbl, e
			}
			stbl.chunkOffsets = offsets
			haveStco = true
		case mp4.TypeStss:
			nums, e := parseStss(mr.RawBox()[8:])
			if e != nil {
				return stbl, e
			}
			stbl.SyncSamples = nums
		default:
			return stbl, ytermerr.Parse("container.parseStbl", fmt.Errorf("unexpected stbl sub-box %q", mr.Type()))
		}
	}
	if !haveStts || !haveStsc || !haveStsz || !haveStco {
		return stbl, ytermerr.Parse("container.parseStbl", fmt.Errorf("incomplete sample table"))
	}
	return stbl, nil
}

// parseStsd extracts only the avc1/mp4a sample entry fields this player
// actually consumes. rawBox is the entire stsd box including its own
// size+fourCC+version+flags header, so it can be driven through its own
// mp4.Reader and entered the way the library's stsd/dref doc comment
// describes: Enter, Skip(4) past entry_count, then Next into the first
// sample entry.
func parseStsd(rawBox []byte) (width, height, sampleRate, channels int, avcc []byte, nalLengthSize int, audioCfg []byte, err error) {
	mr := mp4.NewReader(rawBox)
	if !mr.Next() || mr.Type() != mp4.TypeStsd {
		err = ytermerr.Parse("container.parseStsd", fmt.Errorf("malformed stsd box"))
		return
	}
	if mr.EntryCount() == 0 {
		err = ytermerr.Parse("container.parseStsd", fmt.Errorf("no sample description entries"))
		return
	}

	mr.Enter()
	mr.Skip(4) // entry_count
	if !mr.Next() {
		err = ytermerr.Parse("container.parseStsd", fmt.Errorf("stsd has no sample entry"))
		return
	}

	switch mr.Type() {
	case mp4.TypeAvc1, typeAvc3:
		width, height, avcc, nalLengthSize, err = parseAvc1(mr.Data())
	case mp4.TypeMp4a:
		sampleRate, channels, audioCfg, err = parseMp4a(mr.Data())
	default:
		err = ytermerr.Unsupported("container.parseStsd", fmt.Errorf("unsupported sample entry format %q", mr.Type()))
	}
	mr.Exit()
	return
}

func parseAvc1(body []byte) (width, height int, avcc []byte, nalLengthSize int, err error) {
	if len(body) < 78 {
		err = ytermerr.Parse("container.parseAvc1", fmt.Errorf("avc1 sample entry too short: %d bytes", len(body)))
		return
	}
	v := mp4.ReadVisualSampleEntry(body)
	width, height = int(v.Width), int(v.Height)

	mr := mp4.NewReader(body[v.ChildOffset:])
	for mr.Next() {
		if mr.Type() == mp4.TypeAvcC {
			avcc = mr.Data()
			break
		}
	}
	if avcc == nil {
		err = ytermerr.Parse("container.parseAvc1", fmt.Errorf("avc1 sample entry missing avcC"))
		return
	}
	if len(avcc) < 5 {
		err = ytermerr.Parse("container.parseAvc1", fmt.Errorf("avcC too short: %d bytes", len(avcc)))
		return
	}
	// avcC[4]'s low two bits plus one give the NAL length field size this
	// track's samples use (1, 2, 3 or 4 bytes); the rest of the byte is
	// reserved bits set to 1.
	nalLengthSize = int(avcc[4]&0x03) + 1
	return
}

func parseMp4a(body []byte) (sampleRate, channels int, audioCfg []byte, err error) {
	if len(body) < 28 {
		err = ytermerr.Parse("container.parseMp4a", fmt.Errorf("mp4a sample entry too short: %d bytes", len(body)))
		return
	}
	a := mp4.ReadAudioSampleEntry(body)
	channels = int(a.ChannelCount)
	sampleRate = int(a.SampleRate >> 16) // 16.16 fixed point

	mr := mp4.NewReader(body[a.ChildOffset:])
	for mr.Next() {
		if mr.Type() == mp4.TypeEsds {
			audioCfg = mr.Data()
			break
		}
	}
	return
}

func parseStts(body []byte) (sampleCount, sampleDelta uint32, err error) {
	mr := mp4.NewReader(asBox("stts", body))
	if !mr.Next() {
		err = ytermerr.Parse("container.parseStts", fmt.Errorf("malformed stts box"))
		return
	}
	it := mp4.NewSttsIter(mr.Data())
	if it.Count() != 1 {
		err = ytermerr.Unsupported("container.parseStts", fmt.Errorf("variable frame/sample duration (stts entry_count=%d) is not supported", it.Count()))
		return
	}
	e, _ := it.Next()
	return e.Count, e.Duration, nil
}

func parseStsc(body []byte) ([]chunkRun, error) {
	mr := mp4.NewReader(asBox("stsc", body))
	if !mr.Next() {
		return nil, ytermerr.Parse("container.parseStsc", fmt.Errorf("malformed stsc box"))
	}
	it := mp4.NewStscIter(mr.Data())
	runs := make([]chunkRun, 0, it.Count())
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		runs = append(runs, chunkRun{StartingChunk: e.FirstChunk, SamplesPerChunk: e.SamplesPerChunk})
	}
	return runs, nil
}

func parseStsz(body []byte) ([]uint32, error) {
	mr := mp4.NewReader(asBox("stsz", body))
	if !mr.Next() {
		return nil, ytermerr.Parse("container.parseStsz", fmt.Errorf("malformed stsz box"))
	}
	it := mp4.NewStszIter(mr.Data())
	sizes := make([]uint32, 0, it.Count())
	for {
		sz, ok := it.Next()
		if !ok {
			break
		}
		sizes = append(sizes, sz)
	}
	return sizes, nil
}

func parseStco(fourCC string, body []byte) ([]uint64, error) {
	mr := mp4.NewReader(asBox(fourCC, body))
	if !mr.Next() {
		return nil, ytermerr.Parse("container.parseStco", fmt.Errorf("malformed %s box", fourCC))
	}
	var offsets []uint64
	if fourCC == "co64" {
		it := mp4.NewCo64Iter(mr.Data())
		offsets = make([]uint64, 0, it.Count())
		for {
			v, ok := it.Next()
			if !ok {
				break
			}
			offsets = append(offsets, v)
		}
		return offsets, nil
	}
	it := mp4.NewUint32Iter(mr.Data())
	offsets = make([]uint64, 0, it.Count())
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		offsets = append(offsets, uint64(v))
	}
	return offsets, nil
}

func parseStss(body []byte) ([]uint32, error) {
	mr := mp4.NewReader(asBox("stss", body))
	if !mr.Next() {
		return nil, ytermerr.Parse("container.parseStss", fmt.Errorf("malformed stss box"))
	}
	it := mp4.NewUint32Iter(mr.Data())
	nums := make([]uint32, 0, it.Count())
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		nums = append(nums, v)
	}
	return nums, nil
}
