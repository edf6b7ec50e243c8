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
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// pnmHeader is the canonical description of a PNM-family image, produced
// by the per-format header parsers and consumed within a single decode
// call.
type pnmHeader struct {
	format Format
	width  uint32
	height uint32

	// maxval is the maximum sample value (1 to 65535); zero for PFM.
	maxval uint32

	// depth is the number of samples per pixel.
	depth int

	layout PixelLayout

	// pfmScale is the PFM scale field; negative means little-endian
	// sample storage, the absolute value is applied to every sample.
	pfmScale float32

	// dataOffset is the byte offset where pixel data begins.
	dataOffset int
}

// parsePNMHeader detects the PNM sub-format from the magic bytes and
// parses the matching header grammar.
func parsePNMHeader(data []byte) (*pnmHeader, error) {
	if len(data) < 3 {
		return nil, ErrUnexpectedEOF
	}
	switch {
	case data[0] == 'P' && data[1] == '5':
		return parseRawHeader(data, FormatPGM)
	case data[0] == 'P' && data[1] == '6':
		return parseRawHeader(data, FormatPPM)
	case data[0] == 'P' && data[1] == '7':
		return parsePAMHeader(data)
	case data[0] == 'P' && (data[1] == 'f' || data[1] == 'F'):
		return parsePFMHeader(data)
	default:
		return nil, ErrUnrecognizedFormat
	}
}

// parseRawHeader parses the P5/P6 grammar: magic, then whitespace- or
// comment-separated width, height and maxval, then exactly one
// whitespace byte before the raw samples.
func parseRawHeader(data []byte, format Format) (*pnmHeader, error) {
	pos, err := skipSpaceAndComments(data, 2)
	if err != nil {
		return nil, err
	}
	width, pos, err := parseASCIIUint(data, pos)
	if err != nil {
		return nil, err
	}
	pos, err = skipSpaceAndComments(data, pos)
	if err != nil {
		return nil, err
	}
	height, pos, err := parseASCIIUint(data, pos)
	if err != nil {
		return nil, err
	}
	pos, err = skipSpaceAndComments(data, pos)
	if err != nil {
		return nil, err
	}
	maxval, pos, err := parseASCIIUint(data, pos)
	if err != nil {
		return nil, err
	}

	if width == 0 || height == 0 {
		return nil, invalidHeader(2, "width and height must be non-zero")
	}
	if maxval == 0 || maxval > 65535 {
		return nil, invalidHeader(pos,
			fmt.Sprintf("maxval must be between 1 and 65535, got %d", maxval))
	}
	if pos >= len(data) {
		return nil, ErrUnexpectedEOF
	}

	hdr := &pnmHeader{
		format:     format,
		width:      width,
		height:     height,
		maxval:     maxval,
		dataOffset: pos + 1, // single whitespace byte after maxval
	}
	if format == FormatPGM {
		hdr.depth = 1
		if maxval <= 255 {
			hdr.layout = Gray8
		} else {
			hdr.layout = Gray16
		}
	} else {
		hdr.depth = 3
		hdr.layout = Rgb8
	}
	return hdr, nil
}

// parsePAMHeader parses the P7 grammar: "KEY value" lines terminated by
// an ENDHDR line.  WIDTH, HEIGHT, DEPTH and MAXVAL are mandatory;
// TUPLTYPE is accepted but the layout is derived from DEPTH and MAXVAL
// alone.
func parsePAMHeader(data []byte) (*pnmHeader, error) {
	pos, err := skipSpaceAndComments(data, 2)
	if err != nil {
		return nil, err
	}

	var width, height, depth, maxval uint32
	var haveWidth, haveHeight, haveDepth, haveMaxval bool

	for {
		lineEnd := len(data)
		if i := bytes.IndexByte(data[pos:], '\n'); i >= 0 {
			lineEnd = pos + i
		}
		line := strings.TrimSpace(string(data[pos:lineEnd]))

		if line == "ENDHDR" {
			pos = lineEnd + 1
			break
		}

		switch {
		case strings.HasPrefix(line, "WIDTH "):
			width, err = parsePAMValue(line, "WIDTH ", pos)
			haveWidth = true
		case strings.HasPrefix(line, "HEIGHT "):
			height, err = parsePAMValue(line, "HEIGHT ", pos)
			haveHeight = true
		case strings.HasPrefix(line, "DEPTH "):
			depth, err = parsePAMValue(line, "DEPTH ", pos)
			haveDepth = true
		case strings.HasPrefix(line, "MAXVAL "):
			maxval, err = parsePAMValue(line, "MAXVAL ", pos)
			haveMaxval = true
		case strings.HasPrefix(line, "TUPLTYPE "):
			// informational only, the layout follows DEPTH and MAXVAL
		case strings.HasPrefix(line, "#"):
			// comment
		}
		if err != nil {
			return nil, err
		}

		if lineEnd < len(data) {
			pos = lineEnd + 1
		} else {
			pos = len(data)
		}
		if pos >= len(data) {
			return nil, invalidHeader(pos, "missing ENDHDR")
		}
	}

	switch {
	case !haveWidth:
		return nil, invalidHeader(pos, "missing WIDTH")
	case !haveHeight:
		return nil, invalidHeader(pos, "missing HEIGHT")
	case !haveDepth:
		return nil, invalidHeader(pos, "missing DEPTH")
	case !haveMaxval:
		return nil, invalidHeader(pos, "missing MAXVAL")
	}
	if width == 0 || height == 0 {
		return nil, invalidHeader(2, "width and height must be non-zero")
	}
	if maxval == 0 || maxval > 65535 {
		return nil, invalidHeader(2,
			fmt.Sprintf("maxval must be between 1 and 65535, got %d", maxval))
	}

	var layout PixelLayout
	switch depth {
	case 1:
		if maxval <= 255 {
			layout = Gray8
		} else {
			layout = Gray16
		}
	case 3:
		layout = Rgb8
	case 4:
		layout = Rgba8
	default:
		return nil, unsupported("PAM DEPTH %d (only 1, 3 and 4 are supported)", depth)
	}

	return &pnmHeader{
		format:     FormatPAM,
		width:      width,
		height:     height,
		maxval:     maxval,
		depth:      int(depth),
		layout:     layout,
		dataOffset: pos,
	}, nil
}

func parsePAMValue(line, key string, pos int) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(line[len(key):]), 10, 32)
	if err != nil {
		return 0, invalidHeader(pos, "bad "+strings.TrimSpace(key)+" value")
	}
	return uint32(v), nil
}

// parsePFMHeader parses the PFM grammar: "Pf" (grayscale) or "PF"
// (colour), then width, height and a scale line.  A negative scale means
// the samples are stored little-endian; its absolute value is a factor
// applied to every sample.
func parsePFMHeader(data []byte) (*pnmHeader, error) {
	isColor := data[1] == 'F'

	pos, err := skipSpaceAndComments(data, 2)
	if err != nil {
		return nil, err
	}
	width, pos, err := parseASCIIUint(data, pos)
	if err != nil {
		return nil, err
	}
	pos, err = skipSpaceAndComments(data, pos)
	if err != nil {
		return nil, err
	}
	height, pos, err := parseASCIIUint(data, pos)
	if err != nil {
		return nil, err
	}
	pos, err = skipSpaceAndComments(data, pos)
	if err != nil {
		return nil, err
	}

	lineEnd := len(data)
	if i := bytes.IndexByte(data[pos:], '\n'); i >= 0 {
		lineEnd = pos + i
	}
	scaleStr := strings.TrimSpace(string(data[pos:lineEnd]))
	scale, err := strconv.ParseFloat(scaleStr, 32)
	if err != nil {
		return nil, invalidHeader(pos, "bad scale "+strconv.Quote(scaleStr))
	}

	if width == 0 || height == 0 {
		return nil, invalidHeader(2, "width and height must be non-zero")
	}

	hdr := &pnmHeader{
		format:     FormatPFM,
		width:      width,
		height:     height,
		pfmScale:   float32(scale),
		dataOffset: lineEnd + 1,
	}
	if isColor {
		hdr.depth = 3
		hdr.layout = RgbF32
	} else {
		hdr.depth = 1
		hdr.layout = GrayF32
	}
	return hdr, nil
}

// skipSpaceAndComments advances pos past whitespace and '#' comment
// lines, failing if the end of the input is reached.
func skipSpaceAndComments(data []byte, pos int) (int, error) {
	for {
		if pos >= len(data) {
			return 0, ErrUnexpectedEOF
		}
		switch data[pos] {
		case ' ', '\t', '\n', '\r':
			pos++
		case '#':
			for pos < len(data) && data[pos] != '\n' {
				pos++
			}
			if pos < len(data) {
				pos++
			}
		default:
			return pos, nil
		}
	}
}

// parseASCIIUint reads a decimal number at pos.  At most 10 digits are
// accepted, and values beyond the uint32 range are rejected rather than
// wrapped.
func parseASCIIUint(data []byte, pos int) (uint32, int, error) {
	end := pos
	maxEnd := min(pos+11, len(data))
	for end < maxEnd && data[end] >= '0' && data[end] <= '9' {
		end++
	}
	if end == pos {
		return 0, 0, invalidHeader(pos, "expected a number")
	}
	v, err := strconv.ParseUint(string(data[pos:end]), 10, 32)
	if err != nil {
		return 0, 0, invalidHeader(pos, "number too large: "+string(data[pos:end]))
	}
	return uint32(v), end, nil
}

// decodePNM is the PNM-family decode pipeline: header parse, limit
// checks, then transcode into the canonical packed representation.
func decodePNM(ctx context.Context, data []byte, limits *Limits) (*Image, error) {
	hdr, err := parsePNMHeader(data)
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

	if hdr.dataOffset > len(data) {
		return nil, ErrUnexpectedEOF
	}
	raw := data[hdr.dataOffset:]

	if hdr.format == FormatPFM {
		pixels, err := transcodeFloat(ctx, raw, hdr, outSize)
		if err != nil {
			return nil, err
		}
		return ownedImage(pixels, hdr.width, hdr.height, hdr.layout, hdr.format), nil
	}
	return transcodeInteger(ctx, raw, hdr, outSize)
}

// transcodeInteger converts raw P5/P6/P7 samples into the canonical
// packed form.  Samples already in canonical form (maxval 255) are
// returned as a zero-copy view of the input.
func transcodeInteger(ctx context.Context, raw []byte, hdr *pnmHeader, outSize int) (*Image, error) {
	sampleSize := 1
	if hdr.maxval > 255 {
		sampleSize = 2
	}
	srcSize, ok := mulChecked(uint64(hdr.width), uint64(hdr.height))
	if ok {
		srcSize, ok = mulChecked(srcSize, uint64(hdr.depth*sampleSize))
	}
	if !ok || srcSize > math.MaxInt {
		return nil, &DimensionError{Width: hdr.width, Height: hdr.height}
	}
	if uint64(len(raw)) < srcSize {
		return nil, ErrUnexpectedEOF
	}
	src := raw[:srcSize]

	// The on-disk bytes of an 8-bit maxval-255 image equal the canonical
	// representation bit for bit.  This is the only zero-copy path.
	if hdr.maxval == 255 {
		return borrowedImage(src, hdr.width, hdr.height, hdr.layout, hdr.format), nil
	}

	step := checkStep(hdr, len(src))

	if hdr.maxval < 255 {
		scale := 255 / float32(hdr.maxval)
		out := make([]byte, len(src))
		for i, s := range src {
			if i%step == 0 {
				if err := checkCancel(ctx); err != nil {
					return nil, err
				}
			}
			out[i] = rescaleSample(uint32(s), scale)
		}
		return ownedImage(out, hdr.width, hdr.height, hdr.layout, hdr.format), nil
	}

	// 16-bit samples.  Gray16 keeps the full precision, copied verbatim;
	// multi-channel layouts are downscaled to 8 bits per channel.
	if hdr.layout == Gray16 {
		out := bytes.Clone(src)
		return ownedImage(out, hdr.width, hdr.height, hdr.layout, hdr.format), nil
	}

	scale := 255 / float32(hdr.maxval)
	out := make([]byte, outSize)
	for i := range out {
		if i%step == 0 {
			if err := checkCancel(ctx); err != nil {
				return nil, err
			}
		}
		v := uint32(src[2*i])<<8 | uint32(src[2*i+1])
		out[i] = rescaleSample(v, scale)
	}
	return ownedImage(out, hdr.width, hdr.height, hdr.layout, hdr.format), nil
}

// transcodeFloat converts PFM samples, which are stored bottom-to-top in
// the endianness declared by the scale sign, into top-down little-endian
// floats with the scale factor applied.
func transcodeFloat(ctx context.Context, raw []byte, hdr *pnmHeader, outSize int) ([]byte, error) {
	if len(raw) < outSize {
		return nil, ErrUnexpectedEOF
	}
	littleEndian := hdr.pfmScale < 0
	scale := hdr.pfmScale
	if scale < 0 {
		scale = -scale
	}

	h := int(hdr.height)
	rowSamples := outSize / h / 4
	rowBytes := rowSamples * 4
	out := make([]byte, outSize)

	o := 0
	for row := h - 1; row >= 0; row-- {
		if row%16 == 0 {
			if err := checkCancel(ctx); err != nil {
				return nil, err
			}
		}
		rowStart := row * rowBytes
		for i := 0; i < rowSamples; i++ {
			off := rowStart + i*4
			var bits uint32
			if littleEndian {
				bits = getUint32le(raw, off)
			} else {
				bits = getUint32be(raw, off)
			}
			v := math.Float32frombits(bits) * scale
			putUint32le(out, o, math.Float32bits(v))
			o += 4
		}
	}
	return out, nil
}

// rescaleSample maps a sample against its maxval onto the 0-255 range,
// rounding ties away from zero.
func rescaleSample(s uint32, scale float32) byte {
	v := float32(s)*scale + 0.5
	if v > 255 {
		return 255
	}
	return byte(v)
}

// checkStep returns the cancellation polling interval in samples,
// equivalent to 16 rows.
func checkStep(hdr *pnmHeader, n int) int {
	step := uint64(hdr.width) * uint64(hdr.depth) * 16
	if step > uint64(n) {
		step = uint64(n)
	}
	return int(step)
}

func getUint32be(data []byte, offset int) uint32 {
	return uint32(data[offset])<<24 | uint32(data[offset+1])<<16 |
		uint32(data[offset+2])<<8 | uint32(data[offset+3])
}
