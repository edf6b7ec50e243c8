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

// Package zenpnm reads and writes simple uncompressed raster containers:
// the binary PNM family (PGM, PPM, PAM, PFM) and uncompressed 24/32-bit
// Windows BMP.
//
// The package operates on byte slices which are fully resident in
// memory; it performs no I/O of its own.  Input is treated as untrusted:
// all size arithmetic is overflow-checked, claimed dimensions are
// validated against caller-supplied [Limits] before any pixel-sized
// allocation, and no input can cause a panic or an out-of-bounds access.
//
// # Decoding
//
// Use [Decode] to decode a PNM-family image.  The format is detected
// from the two-byte magic ("P5", "P6", "P7", "Pf" or "PF"):
//
//	img, err := zenpnm.Decode(ctx, data)
//	if err != nil {
//	    // handle error
//	}
//	// img.Width, img.Height, img.Layout, img.Pixels()
//
// BMP is never auto-detected; decode it explicitly with [DecodeBMP].
//
// Decoding a PNM image whose samples are already in canonical form
// (8-bit, maxval 255) returns a zero-copy view into the input buffer;
// call [Image.Own] if the image must outlive the input.  Use
// [ProbeHeader] or [ProbeBMP] for cheap metadata queries.
//
// # Encoding
//
// Each format has an encoder taking packed pixel bytes and a
// [PixelLayout]:
//
//	out, err := zenpnm.EncodePPM(ctx, img.Pixels(), img.Width, img.Height, img.Layout)
//
// Encoders convert layouts the target format cannot represent (for
// example, RGB input to a PGM encoder is converted to luma).
//
// # Cancellation
//
// Long-running pixel loops poll the context roughly every 16 rows.  A
// cancelled decode or encode returns ctx.Err() and discards any
// partially built buffer.
package zenpnm

import (
	"context"
	"fmt"
	"math"
	"math/bits"
)

// Format identifies one of the supported container formats.
type Format int

// The supported container formats.
const (
	FormatPGM Format = iota // P5, binary grayscale
	FormatPPM               // P6, binary RGB
	FormatPAM               // P7, arbitrary channels
	FormatPFM               // Pf/PF, 32-bit float
	FormatBMP               // Windows bitmap
)

func (f Format) String() string {
	switch f {
	case FormatPGM:
		return "PGM"
	case FormatPPM:
		return "PPM"
	case FormatPAM:
		return "PAM"
	case FormatPFM:
		return "PFM"
	case FormatBMP:
		return "BMP"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Decode decodes a PNM-family image (P5, P6, P7, Pf, PF) with no
// resource limits.  BMP input is rejected with [ErrUnrecognizedFormat];
// use [DecodeBMP] instead.
func Decode(ctx context.Context, data []byte) (*Image, error) {
	return DecodeWithLimits(ctx, data, nil)
}

// DecodeWithLimits is like [Decode], but rejects images exceeding the
// given resource ceilings before allocating pixel memory.
func DecodeWithLimits(ctx context.Context, data []byte, limits *Limits) (*Image, error) {
	return decodePNM(ctx, data, limits)
}

// Encode serializes packed pixel bytes into the given container format.
// It dispatches to the per-format encoders; BMP output is 32-bit when
// the input layout carries alpha and 24-bit otherwise.
func Encode(ctx context.Context, pixels []byte, width, height uint32, layout PixelLayout, format Format) ([]byte, error) {
	switch format {
	case FormatPGM:
		return EncodePGM(ctx, pixels, width, height, layout)
	case FormatPPM:
		return EncodePPM(ctx, pixels, width, height, layout)
	case FormatPAM:
		return EncodePAM(ctx, pixels, width, height, layout)
	case FormatPFM:
		return EncodePFM(ctx, pixels, width, height, layout)
	case FormatBMP:
		if layout == Rgba8 || layout == Bgra8 {
			return EncodeBMPAlpha(ctx, pixels, width, height, layout)
		}
		return EncodeBMP(ctx, pixels, width, height, layout)
	default:
		return nil, unsupported("unknown target format %v", format)
	}
}

// checkCancel polls the context; it is called from pixel loops roughly
// every 16 rows.
func checkCancel(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func mulChecked(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

// pixelBufferSize computes width*height*BytesPerPixel(layout) or fails
// if the result overflows or cannot be represented as an int.
func pixelBufferSize(width, height uint32, layout PixelLayout) (int, error) {
	n, ok := mulChecked(uint64(width), uint64(height))
	if ok {
		n, ok = mulChecked(n, uint64(layout.BytesPerPixel()))
	}
	if !ok || n > math.MaxInt {
		return 0, &DimensionError{Width: width, Height: height}
	}
	return int(n), nil
}
