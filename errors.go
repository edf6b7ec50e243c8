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
	"errors"
	"fmt"
)

// Errors which can be shared between call sites.  More specific failures
// are reported through the typed error structs below, so that callers can
// tell malformed input, unsupported variants, resource-limit rejections
// and cancellation apart.  Cancellation itself is reported by returning
// the context's error unchanged.
var (
	// ErrUnrecognizedFormat means the input does not start with a known
	// magic byte sequence.
	ErrUnrecognizedFormat = errors.New("zenpnm: unrecognized format magic bytes")

	// ErrUnexpectedEOF means the input ended before the structure it
	// claims to contain was complete.
	ErrUnexpectedEOF = errors.New("zenpnm: unexpected end of input")
)

// InvalidHeaderError indicates that a header field is syntactically or
// numerically invalid.
type InvalidHeaderError struct {
	Offset int
	Reason string
}

func invalidHeader(offset int, reason string) error {
	return &InvalidHeaderError{Offset: offset, Reason: reason}
}

func (e *InvalidHeaderError) Error() string {
	return fmt.Sprintf("zenpnm: invalid header (byte %d): %s", e.Offset, e.Reason)
}

// UnsupportedError indicates a well-formed input which uses a format
// variant this package does not implement.
type UnsupportedError struct {
	Reason string
}

func unsupported(format string, a ...any) error {
	return &UnsupportedError{Reason: fmt.Sprintf(format, a...)}
}

func (e *UnsupportedError) Error() string {
	return "zenpnm: unsupported variant: " + e.Reason
}

// InvalidDataError indicates pixel data which cannot be interpreted or
// encoded as supplied.
type InvalidDataError struct {
	Reason string
}

func (e *InvalidDataError) Error() string {
	return "zenpnm: invalid pixel data: " + e.Reason
}

// DimensionError indicates that the claimed image dimensions are too
// large to represent: some size computation would overflow.
type DimensionError struct {
	Width  uint32
	Height uint32
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("zenpnm: dimensions too large: %dx%d", e.Width, e.Height)
}

// LayoutError indicates that pixel data was supplied in a layout the
// operation cannot accept.
type LayoutError struct {
	Expected PixelLayout
	Actual   PixelLayout
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("zenpnm: pixel layout mismatch: expected %s, got %s",
		e.Expected, e.Actual)
}

// BufferTooSmallError indicates that a caller-supplied pixel buffer is
// shorter than width*height*BytesPerPixel(layout).
type BufferTooSmallError struct {
	Needed int
	Actual int
}

func (e *BufferTooSmallError) Error() string {
	return fmt.Sprintf("zenpnm: buffer too small: need %d bytes, got %d",
		e.Needed, e.Actual)
}

// LimitError indicates that an image was rejected because it exceeds a
// caller-supplied resource ceiling.  This is a quota rejection, not a
// statement about the validity of the input.
type LimitError struct {
	Reason string
}

func (e *LimitError) Error() string {
	return "zenpnm: resource limit exceeded: " + e.Reason
}
