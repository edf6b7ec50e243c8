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
	"math"
)

// bmpHeaderLen is the combined length of the BMP file header (14 bytes)
// and the BITMAPINFOHEADER DIB header (40 bytes).
const bmpHeaderLen = 54

// bmpHeader describes an uncompressed BMP image.
type bmpHeader struct {
	width  uint32
	height uint32

	// topDown is set when the height field was negative, meaning rows
	// are stored top-down instead of the BMP default bottom-up.
	topDown bool

	layout     PixelLayout
	dataOffset int
}

// parseBMPHeader validates the 54-byte file + DIB header.  Only
// uncompressed 24- and 32-bit images are supported.
func parseBMPHeader(data []byte) (*bmpHeader, error) {
	if len(data) < bmpHeaderLen {
		return nil, ErrUnexpectedEOF
	}
	if data[0] != 'B' || data[1] != 'M' {
		return nil, ErrUnrecognizedFormat
	}

	widthRaw := int32(getUint32le(data, 18))
	heightRaw := int32(getUint32le(data, 22))
	if widthRaw <= 0 {
		return nil, invalidHeader(18,
			fmt.Sprintf("width must be positive, got %d", widthRaw))
	}
	if heightRaw == 0 {
		return nil, invalidHeader(22, "height cannot be zero")
	}
	height := uint32(heightRaw)
	if heightRaw < 0 {
		height = uint32(-int64(heightRaw))
	}

	bitsPerPixel := getUint16le(data, 28)
	var layout PixelLayout
	switch bitsPerPixel {
	case 24:
		layout = Rgb8
	case 32:
		layout = Rgba8
	default:
		return nil, unsupported("%d-bit BMP (only 24 and 32 bit)", bitsPerPixel)
	}

	if compression := getUint32le(data, 30); compression != 0 {
		return nil, unsupported("BMP compression type %d", compression)
	}

	dataOffset := getUint32le(data, 10)
	if dataOffset < bmpHeaderLen || uint64(dataOffset) > uint64(len(data)) {
		return nil, ErrUnexpectedEOF
	}

	return &bmpHeader{
		width:      uint32(widthRaw),
		height:     height,
		topDown:    heightRaw < 0,
		layout:     layout,
		dataOffset: int(dataOffset),
	}, nil
}

// DecodeBMP decodes an uncompressed 24- or 32-bit BMP image with no
// resource limits.  The result is always an owned buffer: BMP pixel
// data needs reordering and is never returned zero-copy.
func DecodeBMP(ctx context.Context, data []byte) (*Image, error) {
	return DecodeBMPWithLimits(ctx, data, nil)
}

// DecodeBMPWithLimits is like [DecodeBMP], but rejects images exceeding
// the given resource ceilings before allocating pixel memory.
func DecodeBMPWithLimits(ctx context.Context, data []byte, limits *Limits) (*Image, error) {
	hdr, err := parseBMPHeader(data)
	if err != nil {
		return nil, err
	}
	if err := limits.checkDimensions(hdr.width, hdr.height); err != nil {
		return nil, err
	}
	outSize, err := pixelBufferSize(hdr.width, hdr.height, hdr.layout)
	if err != nil {
		return nil, err
	}
	if err := limits.checkMemory(uint64(outSize)); err != nil {
		return nil, err
	}
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}

	bpp := hdr.layout.BytesPerPixel()
	stride, err := bmpRowStride(hdr.width, hdr.height, bpp)
	if err != nil {
		return nil, err
	}
	needed, ok := mulChecked(stride, uint64(hdr.height))
	if !ok || needed > math.MaxInt {
		return nil, &DimensionError{Width: hdr.width, Height: hdr.height}
	}
	raw := data[hdr.dataOffset:]
	if uint64(len(raw)) < needed {
		return nil, ErrUnexpectedEOF
	}

	w, h := int(hdr.width), int(hdr.height)
	rowStride := int(stride)
	out := make([]byte, outSize)
	o := 0
	for row := 0; row < h; row++ {
		if row%16 == 0 {
			if err := checkCancel(ctx); err != nil {
				return nil, err
			}
		}
		srcRow := row
		if !hdr.topDown {
			srcRow = h - 1 - row
		}
		rowStart := srcRow * rowStride
		// samples are stored BGR(A); reorder to RGB(A)
		for col := 0; col < w; col++ {
			off := rowStart + col*bpp
			out[o] = raw[off+2]
			out[o+1] = raw[off+1]
			out[o+2] = raw[off]
			if bpp == 4 {
				out[o+3] = raw[off+3]
			}
			o += bpp
		}
	}
	return ownedImage(out, hdr.width, hdr.height, hdr.layout, FormatBMP), nil
}

// bmpRowStride returns the stored size of one pixel row: 24-bit rows are
// padded to a 4-byte boundary, 32-bit rows are naturally aligned.
func bmpRowStride(width, height uint32, bpp int) (uint64, error) {
	if bpp == 4 {
		return uint64(width) * 4, nil
	}
	stride := uint64(width)*3 + 3
	stride &^= 3
	if stride > math.MaxInt {
		return 0, &DimensionError{Width: width, Height: height}
	}
	return stride, nil
}

func getUint16le(data []byte, offset int) uint16 {
	return uint16(data[offset]) | uint16(data[offset+1])<<8
}

func getUint32le(data []byte, offset int) uint32 {
	return uint32(data[offset]) | uint32(data[offset+1])<<8 |
		uint32(data[offset+2])<<16 | uint32(data[offset+3])<<24
}
