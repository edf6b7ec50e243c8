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

import (
	"context"
	"fmt"
)

// EncodePGM serializes pixels as binary PGM (P5).  Gray8 input is
// written natively; RGB/RGBA/BGR/BGRA input is converted to luma using
// the integer-rounded ITU-R BT.601 weights.
func EncodePGM(ctx context.Context, pixels []byte, width, height uint32, layout PixelLayout) ([]byte, error) {
	n, err := checkEncodeInput(pixels, width, height, layout)
	if err != nil {
		return nil, err
	}
	header := fmt.Sprintf("P5\n%d %d\n255\n", width, height)
	numPixels := int(width) * int(height)
	out := make([]byte, 0, len(header)+numPixels)
	out = append(out, header...)

	step := encodeStep(width, numPixels)
	switch layout {
	case Gray8:
		out = append(out, pixels[:n]...)
	case Rgb8, Bgr8, Rgba8, Bgra8:
		bpp := layout.BytesPerPixel()
		ri, bi := 0, 2
		if layout == Bgr8 || layout == Bgra8 {
			ri, bi = 2, 0
		}
		for i := 0; i < numPixels; i++ {
			if i%step == 0 {
				if err := checkCancel(ctx); err != nil {
					return nil, err
				}
			}
			off := i * bpp
			r := uint32(pixels[off+ri])
			g := uint32(pixels[off+1])
			b := uint32(pixels[off+bi])
			out = append(out, byte((r*299+g*587+b*114+500)/1000))
		}
	default:
		return nil, unsupported("cannot encode %s as PGM", layout)
	}
	return out, nil
}

// EncodePPM serializes pixels as binary PPM (P6).  Rgb8 input is written
// natively; BGR/RGBA/BGRA input is channel-reordered (dropping alpha)
// and Gray8 input is broadcast to three identical channels.
func EncodePPM(ctx context.Context, pixels []byte, width, height uint32, layout PixelLayout) ([]byte, error) {
	n, err := checkEncodeInput(pixels, width, height, layout)
	if err != nil {
		return nil, err
	}
	header := fmt.Sprintf("P6\n%d %d\n255\n", width, height)
	numPixels := int(width) * int(height)
	out := make([]byte, 0, len(header)+numPixels*3)
	out = append(out, header...)

	step := encodeStep(width, numPixels)
	switch layout {
	case Rgb8:
		out = append(out, pixels[:n]...)
	case Bgr8, Rgba8, Bgra8:
		bpp := layout.BytesPerPixel()
		ri, bi := 0, 2
		if layout == Bgr8 || layout == Bgra8 {
			ri, bi = 2, 0
		}
		for i := 0; i < numPixels; i++ {
			if i%step == 0 {
				if err := checkCancel(ctx); err != nil {
					return nil, err
				}
			}
			off := i * bpp
			out = append(out, pixels[off+ri], pixels[off+1], pixels[off+bi])
		}
	case Gray8:
		for i, g := range pixels[:numPixels] {
			if i%step == 0 {
				if err := checkCancel(ctx); err != nil {
					return nil, err
				}
			}
			out = append(out, g, g, g)
		}
	default:
		return nil, unsupported("cannot encode %s as PPM", layout)
	}
	return out, nil
}

// EncodePAM serializes pixels as PAM (P7).  Gray8, Gray16, Rgb8 and
// Rgba8 are written as a direct byte copy below the key/value header;
// other layouts must be converted by the caller first.
func EncodePAM(ctx context.Context, pixels []byte, width, height uint32, layout PixelLayout) ([]byte, error) {
	n, err := checkEncodeInput(pixels, width, height, layout)
	if err != nil {
		return nil, err
	}

	var depth, maxval int
	var tupltype string
	switch layout {
	case Gray8:
		depth, tupltype, maxval = 1, "GRAYSCALE", 255
	case Gray16:
		depth, tupltype, maxval = 1, "GRAYSCALE", 65535
	case Rgb8:
		depth, tupltype, maxval = 3, "RGB", 255
	case Rgba8:
		depth, tupltype, maxval = 4, "RGB_ALPHA", 255
	default:
		return nil, unsupported("cannot encode %s as PAM directly; convert to RGB or RGBA first", layout)
	}
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}

	header := fmt.Sprintf("P7\nWIDTH %d\nHEIGHT %d\nDEPTH %d\nMAXVAL %d\nTUPLTYPE %s\nENDHDR\n",
		width, height, depth, maxval, tupltype)
	out := make([]byte, 0, len(header)+n)
	out = append(out, header...)
	out = append(out, pixels[:n]...)
	return out, nil
}

// EncodePFM serializes float pixels as PFM.  The header always declares
// scale -1.0 (little-endian storage, unit scale) and rows are written
// bottom to top as PFM readers expect.
func EncodePFM(ctx context.Context, pixels []byte, width, height uint32, layout PixelLayout) ([]byte, error) {
	n, err := checkEncodeInput(pixels, width, height, layout)
	if err != nil {
		return nil, err
	}

	var magic string
	switch layout {
	case GrayF32:
		magic = "Pf"
	case RgbF32:
		magic = "PF"
	default:
		expected := RgbF32
		if layout.Channels() == 1 {
			expected = GrayF32
		}
		return nil, &LayoutError{Expected: expected, Actual: layout}
	}

	header := fmt.Sprintf("%s\n%d %d\n-1.0\n", magic, width, height)
	h := int(height)
	rowBytes := n / h
	out := make([]byte, 0, len(header)+n)
	out = append(out, header...)
	for row := h - 1; row >= 0; row-- {
		if row%16 == 0 {
			if err := checkCancel(ctx); err != nil {
				return nil, err
			}
		}
		start := row * rowBytes
		out = append(out, pixels[start:start+rowBytes]...)
	}
	return out, nil
}

// checkEncodeInput validates that the pixel buffer covers
// width*height*BytesPerPixel(layout) bytes and returns that size.
func checkEncodeInput(pixels []byte, width, height uint32, layout PixelLayout) (int, error) {
	if width == 0 || height == 0 {
		return 0, &InvalidDataError{Reason: "width and height must be non-zero"}
	}
	expected, err := pixelBufferSize(width, height, layout)
	if err != nil {
		return 0, err
	}
	if len(pixels) < expected {
		return 0, &BufferTooSmallError{Needed: expected, Actual: len(pixels)}
	}
	return expected, nil
}

// encodeStep returns the cancellation polling interval in pixels,
// equivalent to 16 rows.
func encodeStep(width uint32, numPixels int) int {
	step := uint64(width) * 16
	if step > uint64(numPixels) {
		step = uint64(numPixels)
	}
	if step == 0 {
		step = 1
	}
	return int(step)
}
