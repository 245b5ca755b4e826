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

import "testing"

func be32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func TestParseStco(t *testing.T) {
	body := append([]byte{0, 0, 0, 0}, be32(2)...)
	body = append(body, be32(4096)...)
	body = append(body, be32(8192)...)

	offsets, err := parseStco("stco", body)
	if err != nil {
		t.Fatalf("parseStco: %v", err)
	}
	if len(offsets) != 2 || offsets[0] != 4096 || offsets[1] != 8192 {
		t.Fatalf("got %v", offsets)
	}
}

func TestParseStsc(t *testing.T) {
	body := append([]byte{0, 0, 0, 0}, be32(1)...)
	body = append(body, be32(1)...) // starting_chunk
	body = append(body, be32(2)...) // samples_per_chunk
	body = append(body, be32(1)...) // sample_description_index

	runs, err := parseStsc(body)
	if err != nil {
		t.Fatalf("parseStsc: %v", err)
	}
	if len(runs) != 1 || runs[0].StartingChunk != 1 || runs[0].SamplesPerChunk != 2 {
		t.Fatalf("got %+v", runs)
	}
}

func TestParseStszGeneralSize(t *testing.T) {
	body := append([]byte{0, 0, 0, 0}, be32(1024)...)
	body = append(body, be32(2)...)

	sizes, err := parseStsz(body)
	if err != nil {
		t.Fatalf("parseStsz: %v", err)
	}
	if len(sizes) != 2 || sizes[0] != 1024 || sizes[1] != 1024 {
		t.Fatalf("got %v", sizes)
	}
}

func TestParseStszIndividualSizes(t *testing.T) {
	body := append([]byte{0, 0, 0, 0}, be32(0)...)
	body = append(body, be32(2)...)
	body = append(body, be32(512)...)
	body = append(body, be32(1024)...)

	sizes, err := parseStsz(body)
	if err != nil {
		t.Fatalf("parseStsz: %v", err)
	}
	if len(sizes) != 2 || sizes[0] != 512 || sizes[1] != 1024 {
		t.Fatalf("got %v", sizes)
	}
}

func TestParseSttsRejectsVariableDuration(t *testing.T) {
	body := append([]byte{0, 0, 0, 0}, be32(2)...)
	body = append(body, be32(10)...)
	body = append(body, be32(3000)...)
	body = append(body, be32(5)...)
	body = append(body, be32(1500)...)

	_, _, err := parseStts(body)
	if err == nil {
		t.Fatalf("expected an error for a multi-entry stts box")
	}
}

func TestParseSttsSingleEntry(t *testing.T) {
	body := append([]byte{0, 0, 0, 0}, be32(1)...)
	body = append(body, be32(300)...)
	body = append(body, be32(3000)...)

	count, delta, err := parseStts(body)
	if err != nil {
		t.Fatalf("parseStts: %v", err)
	}
	if count != 300 || delta != 3000 {
		t.Fatalf("got count=%d delta=%d", count, delta)
	}
}

func TestParseStss(t *testing.T) {
	body := append([]byte{0, 0, 0, 0}, be32(2)...)
	body = append(body, be32(1)...)
	body = append(body, be32(31)...)

	nums, err := parseStss(body)
	if err != nil {
		t.Fatalf("parseStss: %v", err)
	}
	if len(nums) != 2 || nums[0] != 1 || nums[1] != 31 {
		t.Fatalf("got %v", nums)
	}
}

func TestParseAvc1DerivesNalLengthSize(t *testing.T) {
	for lengthSizeMinusOne, want := range map[byte]int{0: 1, 1: 2, 2: 3, 3: 4} {
		body := make([]byte, 0, 128)
		body = append(body, make([]byte, 6)...)  // reserved
		body = append(body, 0, 1)                // data_reference_index
		body = append(body, make([]byte, 16)...) // pre_defined + reserved
		body = append(body, be32(640)[2:]...)    // width (u16)
		body = append(body, be32(360)[2:]...)    // height (u16)
		body = append(body, make([]byte, 50)...) // remaining fixed fields

		avcc := []byte{
			1,                // configurationVersion
			0x42, 0x00, 0x1e, // profile/compat/level
			0xfc | lengthSizeMinusOne, // reserved bits set | lengthSizeMinusOne
			0xe0,                      // numOfSPS = 0
			0,                         // numOfPPS = 0
		}
		avcCBox := append(be32(uint32(8+len(avcc))), []byte("avcC")...)
		avcCBox = append(avcCBox, avcc...)
		body = append(body, avcCBox...)

		_, _, _, nalLengthSize, err := parseAvc1(body)
		if err != nil {
			t.Fatalf("lengthSizeMinusOne=%d: parseAvc1: %v", lengthSizeMinusOne, err)
		}
		if nalLengthSize != want {
			t.Fatalf("lengthSizeMinusOne=%d: got nalLengthSize=%d, want %d", lengthSizeMinusOne, nalLengthSize, want)
		}
	}
}

func TestParseMvhdVersion0(t *testing.T) {
	body := make([]byte, 0, 32)
	body = append(body, 0, 0, 0, 0) // version+flags
	body = append(body, 0, 0, 0, 0, 0, 0, 0, 0) // creation+modification (32-bit each)
	body = append(body, be32(90000)...)

	ts, err := parseMvhd(body)
	if err != nil {
		t.Fatalf("parseMvhd: %v", err)
	}
	if ts != 90000 {
		t.Fatalf("got timescale %d", ts)
	}
}
