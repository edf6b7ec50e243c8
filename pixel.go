// github.com/imazen/zenpnm - read and write PNM and BMP images
// Copyright (C) 2026  Imazen
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package zenpnm

import "fmt"

// PixelLayout describes the channel count, channel order and sample width
// of a packed pixel buffer.
//
// Multi-byte integer samples (Gray16) are stored big-endian, unchanged
// from the PNM wire format.  Float samples (GrayF32, RgbF32) are stored
// little-endian.
type PixelLayout int

// The supported pixel layouts.
const (
	Gray8   PixelLayout = iota // 1 channel, 8-bit grayscale
	Gray16                     // 1 channel, 16-bit grayscale (big-endian)
	Rgb8                       // 3 channels, 8-bit RGB
	Rgba8                      // 4 channels, 8-bit RGBA
	Bgr8                       // 3 channels, 8-bit BGR
	Bgra8                      // 4 channels, 8-bit BGRA
	GrayF32                    // 1 channel, 32-bit float grayscale (little-endian)
	RgbF32                     // 3 channels, 32-bit float RGB (little-endian)
)

// BytesPerPixel returns the number of bytes one pixel occupies in a
// packed buffer with this layout.
func (l PixelLayout) BytesPerPixel() int {
	switch l {
	case Gray8:
		return 1
	case Gray16:
		return 2
	case Rgb8, Bgr8:
		return 3
	case Rgba8, Bgra8:
		return 4
	case GrayF32:
		return 4
	case RgbF32:
		return 12
	default:
		return 0
	}
}

// Channels returns the number of colour channels in this layout.
func (l PixelLayout) Channels() int {
	switch l {
	case Gray8, Gray16, GrayF32:
		return 1
	case Rgb8, Bgr8, RgbF32:
		return 3
	case Rgba8, Bgra8:
		return 4
	default:
		return 0
	}
}

func (l PixelLayout) String() string {
	switch l {
	case Gray8:
		return "Gray8"
	case Gray16:
		return "Gray16"
	case Rgb8:
		return "Rgb8"
	case Rgba8:
		return "Rgba8"
	case Bgr8:
		return "Bgr8"
	case Bgra8:
		return "Bgra8"
	case GrayF32:
		return "GrayF32"
	case RgbF32:
		return "RgbF32"
	default:
		return fmt.Sprintf("PixelLayout(%d)", int(l))
	}
}
