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
	"math"
)

// EncodeBMP serializes pixels as an uncompressed 24-bit BMP (bottom-up,
// BGR, rows padded to a 4-byte boundary).  Alpha channels in the input
// are dropped; Gray8 input is broadcast to three channels.
func EncodeBMP(ctx context.Context, pixels []byte, width, height uint32, layout PixelLayout) ([]byte, error) {
	return encodeBMP(ctx, pixels, width, height, layout, false)
}

// EncodeBMPAlpha serializes pixels as an uncompressed 32-bit BMP
// (bottom-up, BGRA).  Input without an alpha channel gets opaque alpha.
func EncodeBMPAlpha(ctx context.Context, pixels []byte, width, height uint32, layout PixelLayout) ([]byte, error) {
	return encodeBMP(ctx, pixels, width, height, layout, true)
}

func encodeBMP(ctx context.Context, pixels []byte, width, height uint32, layout PixelLayout, alpha bool) ([]byte, error) {
	switch layout {
	case Rgb8, Bgr8, Rgba8, Bgra8, Gray8:
	default:
		return nil, unsupported("cannot encode %s as BMP", layout)
	}
	if _, err := checkEncodeInput(pixels, width, height, layout); err != nil {
		return nil, err
	}

	outBPP := 3
	if alpha {
		outBPP = 4
	}
	stride, err := bmpRowStride(width, height, outBPP)
	if err != nil {
		return nil, err
	}
	pixelDataSize, ok := mulChecked(stride, uint64(height))
	fileSize := bmpHeaderLen + pixelDataSize
	if !ok || fileSize > math.MaxUint32 || fileSize > math.MaxInt {
		return nil, &DimensionError{Width: width, Height: height}
	}

	out := make([]byte, fileSize)
	writeBMPHeader(out, width, height, outBPP, uint32(pixelDataSize), uint32(fileSize))

	w, h := int(width), int(height)
	inBPP := layout.BytesPerPixel()
	ri, bi := 0, 2
	if layout == Bgr8 || layout == Bgra8 {
		ri, bi = 2, 0
	}

	// pixel rows, bottom-up
	rowStride := int(stride)
	for row := h - 1; row >= 0; row-- {
		if row%16 == 0 {
			if err := checkCancel(ctx); err != nil {
				return nil, err
			}
		}
		o := bmpHeaderLen + (h-1-row)*rowStride
		rowStart := row * w * inBPP
		for col := 0; col < w; col++ {
			off := rowStart + col*inBPP
			var r, g, b, a byte
			if layout == Gray8 {
				r, g, b, a = pixels[off], pixels[off], pixels[off], 0xFF
			} else {
				r, g, b = pixels[off+ri], pixels[off+1], pixels[off+bi]
				if inBPP == 4 {
					a = pixels[off+3]
				} else {
					a = 0xFF
				}
			}
			out[o] = b
			out[o+1] = g
			out[o+2] = r
			if alpha {
				out[o+3] = a
			}
			o += outBPP
		}
		// the remainder of a padded 24-bit row is already zero
	}
	return out, nil
}

// writeBMPHeader fills in the 14-byte file header and the 40-byte
// BITMAPINFOHEADER.
func writeBMPHeader(out []byte, width, height uint32, bpp int, pixelDataSize, fileSize uint32) {
	out[0] = 'B'
	out[1] = 'M'
	putUint32le(out, 2, fileSize)
	// bytes 6-9 are reserved, left zero
	putUint32le(out, 10, bmpHeaderLen) // pixel data offset

	putUint32le(out, 14, 40) // DIB header size
	putUint32le(out, 18, width)
	putUint32le(out, 22, height) // positive height: bottom-up
	putUint16le(out, 26, 1)      // colour planes
	putUint16le(out, 28, uint16(bpp*8))
	putUint32le(out, 30, 0) // compression: none
	putUint32le(out, 34, pixelDataSize)
	putUint32le(out, 38, 2835) // horizontal resolution, 72 DPI
	putUint32le(out, 42, 2835) // vertical resolution
	putUint32le(out, 46, 0)    // colours used
	putUint32le(out, 50, 0)    // important colours
}

func putUint16le(data []byte, offset int, value uint16) {
	data[offset] = byte(value)
	data[offset+1] = byte(value >> 8)
}

func putUint32le(data []byte, offset int, value uint32) {
	data[offset] = byte(value)
	data[offset+1] = byte(value >> 8)
	data[offset+2] = byte(value >> 16)
	data[offset+3] = byte(value >> 24)
}
