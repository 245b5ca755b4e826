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
	"fmt"

	astiav "github.com/asticode/go-astiav"

	"github.com/e1z0/yt-term/internal/ytermerr"
)

// rgbScaler is the RGB24 counterpart of the teacher's bgraScaler: every
// decoded frame is run through libav's software scaler so Go code never
// has to touch planar YUV directly. The kitty graphics protocol wants
// packed 24-bit RGB, not the BGRA the teacher's Qt widget painter needed,
// so the target format changes but the conversion machinery does not.
type rgbScaler struct {
	ssc        *astiav.SoftwareScaleContext
	dst        *astiav.Frame
	srcW, srcH int
	srcPix     astiav.PixelFormat
}

func (s *rgbScaler) close() {
	if s.dst != nil {
		s.dst.Free()
		s.dst = nil
	}
	if s.ssc != nil {
		s.ssc.Free()
		s.ssc = nil
	}
}

func (s *rgbScaler) ensure(src *astiav.Frame) error {
	sw, sh := src.Width(), src.Height()
	sp := src.PixelFormat()

	if s.ssc != nil && sw == s.srcW && sh == s.srcH && sp == s.srcPix {
		return nil
	}
	s.close()

	flags := astiav.NewSoftwareScaleContextFlags()
	ssc, err := astiav.CreateSoftwareScaleContext(sw, sh, sp, sw, sh, astiav.PixelFormatRgb24, flags)
	if err != nil {
		return ytermerr.Decoder("demux.rgbScaler", fmt.Errorf("CreateSoftwareScaleContext(%dx%d %v -> rgb24): %w", sw, sh, sp, err))
	}

	dst := astiav.AllocFrame()
	dst.SetWidth(sw)
	dst.SetHeight(sh)
	dst.SetPixelFormat(astiav.PixelFormatRgb24)
	if err := dst.AllocBuffer(1); err != nil {
		dst.Free()
		ssc.Free()
		return ytermerr.Decoder("demux.rgbScaler", fmt.Errorf("AllocBuffer: %w", err))
	}

	s.ssc = ssc
	s.dst = dst
	s.srcW, s.srcH, s.srcPix = sw, sh, sp
	return nil
}

// toRGB24 converts a decoded frame into a tightly packed RGB24 slice.
func (s *rgbScaler) toRGB24(src *astiav.Frame) (w, h int, pixels []byte, err error) {
	if err = s.ensure(src); err != nil {
		return
	}
	if err = s.ssc.ScaleFrame(src, s.dst); err != nil {
		err = ytermerr.Decoder("demux.rgbScaler", fmt.Errorf("ScaleFrame: %w", err))
		return
	}
	n, err2 := s.dst.ImageBufferSize(1)
	if err2 != nil {
		err = ytermerr.Decoder("demux.rgbScaler", fmt.Errorf("ImageBufferSize: %w", err2))
		return
	}
	out := make([]byte, n)
	if _, err2 := s.dst.ImageCopyToBuffer(out, 1); err2 != nil {
		err = ytermerr.Decoder("demux.rgbScaler", fmt.Errorf("ImageCopyToBuffer: %w", err2))
		return
	}
	return s.srcW, s.srcH, out, nil
}
