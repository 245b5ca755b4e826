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
	"bytes"
	"testing"
)

func lenPrefixed(size int, nals ...[]byte) []byte {
	var out []byte
	for _, n := range nals {
		l := len(n)
		prefix := make([]byte, size)
		for i := size - 1; i >= 0; i-- {
			prefix[i] = byte(l)
			l >>= 8
		}
		out = append(out, prefix...)
		out = append(out, n...)
	}
	return out
}

func TestAvccToAnnexBSingleNAL(t *testing.T) {
	nal := []byte{0x65, 0xaa, 0xbb}
	au := lenPrefixed(4, nal)

	got, err := avccToAnnexB(au, 4)
	if err != nil {
		t.Fatalf("avccToAnnexB: %v", err)
	}
	want := append(append([]byte{}, annexBStartCode...), nal...)
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestAvccToAnnexBTwoNALs(t *testing.T) {
	nal1 := []byte{0x67, 0x01, 0x02}
	nal2 := []byte{0x68, 0x03}
	au := lenPrefixed(4, nal1, nal2)

	got, err := avccToAnnexB(au, 4)
	if err != nil {
		t.Fatalf("avccToAnnexB: %v", err)
	}
	var want []byte
	want = append(want, annexBStartCode...)
	want = append(want, nal1...)
	want = append(want, annexBStartCode...)
	want = append(want, nal2...)
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestAvccToAnnexBAllLengthSizes(t *testing.T) {
	nal := []byte{0x65, 0xaa, 0xbb, 0xcc}
	for _, size := range []int{1, 2, 3, 4} {
		au := lenPrefixed(size, nal)
		got, err := avccToAnnexB(au, size)
		if err != nil {
			t.Fatalf("lengthSize=%d: avccToAnnexB: %v", size, err)
		}
		want := append(append([]byte{}, annexBStartCode...), nal...)
		if !bytes.Equal(got, want) {
			t.Fatalf("lengthSize=%d: got %x, want %x", size, got, want)
		}
	}
}

func TestAvccToAnnexBSkipsEmptyNAL(t *testing.T) {
	nal := []byte{0x65, 0xaa}
	au := lenPrefixed(4, []byte{}, nal)

	got, err := avccToAnnexB(au, 4)
	if err != nil {
		t.Fatalf("avccToAnnexB: %v", err)
	}
	want := append(append([]byte{}, annexBStartCode...), nal...)
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x (empty NAL should be skipped, not emitted)", got, want)
	}
}

func TestAvccToAnnexBTruncated(t *testing.T) {
	if _, err := avccToAnnexB([]byte{0x00, 0x00, 0x00}, 4); err == nil {
		t.Fatalf("expected error for truncated length prefix")
	}
}

func TestAvccToAnnexBOverrunLength(t *testing.T) {
	au := []byte{0x00, 0x00, 0x00, 0x10, 0x01, 0x02} // claims 16 bytes, has 2
	if _, err := avccToAnnexB(au, 4); err == nil {
		t.Fatalf("expected error for NAL length overrunning the access unit")
	}
}

func TestAvccToAnnexBInvalidLengthSize(t *testing.T) {
	if _, err := avccToAnnexB([]byte{0x01, 0x02}, 5); err == nil {
		t.Fatalf("expected error for out-of-range NAL length size")
	}
}

func TestAvccParameterSets(t *testing.T) {
	sps := []byte{0x67, 0x42, 0x00}
	pps := []byte{0x68, 0xce}

	avcc := []byte{
		1,                // configurationVersion
		0x42, 0x00, 0x1e, // profile/compat/level
		0xff, // lengthSizeMinusOne (3) | reserved
		0xe1, // reserved (111) | numOfSPS (1)
	}
	avcc = append(avcc, byte(len(sps)>>8), byte(len(sps)))
	avcc = append(avcc, sps...)
	avcc = append(avcc, 1) // numOfPPS
	avcc = append(avcc, byte(len(pps)>>8), byte(len(pps)))
	avcc = append(avcc, pps...)

	got, err := avccParameterSets(avcc)
	if err != nil {
		t.Fatalf("avccParameterSets: %v", err)
	}
	var want []byte
	want = append(want, annexBStartCode...)
	want = append(want, sps...)
	want = append(want, annexBStartCode...)
	want = append(want, pps...)
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}
