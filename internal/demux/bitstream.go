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
	"encoding/binary"
	"fmt"

	"github.com/e1z0/yt-term/internal/ytermerr"
)

var annexBStartCode = []byte{0x00, 0x00, 0x00, 0x01}

// avccToAnnexB rewrites one AVCC access unit (a sequence of
// lengthSize-byte-length-prefixed NAL units, lengthSize taken from the
// track's avcC box and always one of 1, 2, 3 or 4) into Annex-B form (each
// NAL prefixed with the 00 00 00 01 start code), the form libavcodec's
// h264 decoder expects when fed packet-by-packet with no out-of-band
// extradata describing NALU length size. A NAL that reads as zero-length
// is skipped rather than emitted as an empty start-code-only entry.
func avccToAnnexB(au []byte, lengthSize int) ([]byte, error) {
	if lengthSize < 1 || lengthSize > 4 {
		return nil, ytermerr.Parse("demux.avccToAnnexB", fmt.Errorf("invalid NAL length size %d", lengthSize))
	}
	out := make([]byte, 0, len(au)+16)
	pos := 0
	for pos < len(au) {
		if len(au)-pos < lengthSize {
			return nil, ytermerr.Parse("demux.avccToAnnexB", fmt.Errorf("truncated NAL length at offset %d", pos))
		}
		nalLen := readUintBE(au[pos : pos+lengthSize])
		pos += lengthSize
		if pos+nalLen > len(au) {
			return nil, ytermerr.Parse("demux.avccToAnnexB", fmt.Errorf("NAL length %d overruns access unit at offset %d", nalLen, pos))
		}
		if nalLen == 0 {
			continue
		}
		out = append(out, annexBStartCode...)
		out = append(out, au[pos:pos+nalLen]...)
		pos += nalLen
	}
	return out, nil
}

// readUintBE reads a big-endian unsigned integer of 1-4 bytes, the general
// form binary.BigEndian only provides fixed-width helpers for.
func readUintBE(b []byte) int {
	n := 0
	for _, v := range b {
		n = n<<8 | int(v)
	}
	return n
}

// avccParameterSets splits an avcC box's SPS/PPS arrays into Annex-B
// start-code-prefixed NAL units, used once to prime the decoder alongside
// the first access unit (some builds of libavcodec don't re-read SPS/PPS
// out of AVCodecParameters.extradata once already open).
func avccParameterSets(avcc []byte) ([]byte, error) {
	if len(avcc) < 6 {
		return nil, ytermerr.Parse("demux.avccParameterSets", fmt.Errorf("avcC too short: %d bytes", len(avcc)))
	}
	out := make([]byte, 0, len(avcc))
	pos := 6 // configurationVersion, AVCProfileIndication, profile_compat, AVCLevelIndication, lengthSizeMinusOne|reserved, numOfSPS|reserved
	numSPS := int(avcc[5] & 0x1f)
	pos, err := appendParamSets(avcc, pos, numSPS, &out)
	if err != nil {
		return nil, err
	}
	if pos >= len(avcc) {
		return out, nil
	}
	numPPS := int(avcc[pos])
	pos++
	_, err = appendParamSets(avcc, pos, numPPS, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func appendParamSets(avcc []byte, pos, count int, out *[]byte) (int, error) {
	for i := 0; i < count; i++ {
		if pos+2 > len(avcc) {
			return pos, ytermerr.Parse("demux.appendParamSets", fmt.Errorf("truncated parameter set length"))
		}
		l := int(binary.BigEndian.Uint16(avcc[pos : pos+2]))
		pos += 2
		if pos+l > len(avcc) {
			return pos, ytermerr.Parse("demux.appendParamSets", fmt.Errorf("parameter set overruns avcC"))
		}
		*out = append(*out, annexBStartCode...)
		*out = append(*out, avcc[pos:pos+l]...)
		pos += l
	}
	return pos, nil
}
