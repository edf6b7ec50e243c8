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

import "bytes"

// Image is the result of a decode call.
//
// The pixel buffer either aliases the input data given to the decode
// call (a "borrowed" image, valid only as long as that input is) or is
// an independently allocated buffer.  Use [Image.Own] before letting an
// image outlive the input it was decoded from.
type Image struct {
	pixels   []byte
	borrowed bool

	Width  uint32
	Height uint32
	Layout PixelLayout
	Format Format
}

// Pixels returns the packed pixel data.  Its length is exactly
// Width * Height * Layout.BytesPerPixel().  The returned slice must be
// treated as read-only while Borrowed reports true.
func (img *Image) Pixels() []byte {
	return img.pixels
}

// Borrowed reports whether the pixel data aliases the decode input.
func (img *Image) Borrowed() bool {
	return img.borrowed
}

// Own replaces a borrowed pixel buffer with an independent copy.  It is
// a no-op for images that already own their pixels.
func (img *Image) Own() {
	if img.borrowed {
		img.pixels = bytes.Clone(img.pixels)
		img.borrowed = false
	}
}

func borrowedImage(data []byte, width, height uint32, layout PixelLayout, format Format) *Image {
	return &Image{
		pixels:   data,
		borrowed: true,
		Width:    width,
		Height:   height,
		Layout:   layout,
		Format:   format,
	}
}

func ownedImage(data []byte, width, height uint32, layout PixelLayout, format Format) *Image {
	return &Image{
		pixels: data,
		Width:  width,
		Height: height,
		Layout: layout,
		Format: format,
	}
}

// ProbeBytes is the number of leading bytes which is normally sufficient
// to parse any supported header.  PNM headers are variable-length but
// small in practice; a BMP header is exactly 54 bytes.
const ProbeBytes = 256

// ImageInfo is lightweight image metadata, parsed from header bytes
// without touching the pixel data.
type ImageInfo struct {
	Width  uint32
	Height uint32
	Format Format

	// NativeLayout is the pixel layout a full decode of this image
	// would produce.
	NativeLayout PixelLayout
}

// ProbeHeader parses the header of a PNM-family image (P5, P6, P7, Pf,
// PF) without materializing any pixel data.  BMP images are not
// auto-detected; use [ProbeBMP].
func ProbeHeader(data []byte) (*ImageInfo, error) {
	hdr, err := parsePNMHeader(data)
	if err != nil {
		return nil, err
	}
	return &ImageInfo{
		Width:        hdr.width,
		Height:       hdr.height,
		Format:       hdr.format,
		NativeLayout: hdr.layout,
	}, nil
}

// ProbeBMP parses a BMP header without materializing any pixel data.
func ProbeBMP(data []byte) (*ImageInfo, error) {
	hdr, err := parseBMPHeader(data)
	if err != nil {
		return nil, err
	}
	return &ImageInfo{
		Width:        hdr.width,
		Height:       hdr.height,
		Format:       FormatBMP,
		NativeLayout: hdr.layout,
	}, nil
}
