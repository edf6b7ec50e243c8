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

// Limits holds caller-supplied resource ceilings for a single decode
// call.  A zero field means that ceiling is not enforced; a nil *Limits
// disables all checks.  Dimensions are checked directly after the header
// has been parsed, the memory ceiling is checked against the exact
// output buffer size before that buffer is allocated.  Limits are never
// modified by this package.
type Limits struct {
	MaxWidth       uint64
	MaxHeight      uint64
	MaxPixels      uint64
	MaxMemoryBytes uint64
}

func (l *Limits) checkDimensions(width, height uint32) error {
	if l == nil {
		return nil
	}
	if l.MaxWidth != 0 && uint64(width) > l.MaxWidth {
		return &LimitError{Reason: fmt.Sprintf("width %d exceeds maximum %d",
			width, l.MaxWidth)}
	}
	if l.MaxHeight != 0 && uint64(height) > l.MaxHeight {
		return &LimitError{Reason: fmt.Sprintf("height %d exceeds maximum %d",
			height, l.MaxHeight)}
	}
	// width and height are both below 2^32, so the product fits in a uint64
	if l.MaxPixels != 0 && uint64(width)*uint64(height) > l.MaxPixels {
		return &LimitError{Reason: fmt.Sprintf("pixel count %d exceeds maximum %d",
			uint64(width)*uint64(height), l.MaxPixels)}
	}
	return nil
}

func (l *Limits) checkMemory(numBytes uint64) error {
	if l == nil || l.MaxMemoryBytes == 0 {
		return nil
	}
	if numBytes > l.MaxMemoryBytes {
		return &LimitError{Reason: fmt.Sprintf("decoded size %d bytes exceeds maximum %d",
			numBytes, l.MaxMemoryBytes)}
	}
	return nil
}
