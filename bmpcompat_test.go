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
	"image"
	"testing"

	"golang.org/x/image/bmp"
)

// TestBMPCompat24 checks that 24-bit output is readable by the
// golang.org/x/image/bmp decoder and yields the same pixel values.
func TestBMPCompat24(t *testing.T) {
	ctx := context.Background()
	const w, h = 3, 2
	pixels := []byte{
		255, 0, 0, 0, 255, 0, 0, 0, 255,
		10, 20, 30, 40, 50, 60, 70, 80, 90,
	}
	encoded, err := EncodeBMP(ctx, pixels, w, h, Rgb8)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := bmp.DecodeConfig(bytes.NewReader(encoded))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != w || cfg.Height != h {
		t.Fatalf("config reports %dx%d, want %dx%d", cfg.Width, cfg.Height, w, h)
	}

	m, err := bmp.Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatal(err)
	}
	rgba, ok := m.(*image.RGBA)
	if !ok {
		t.Fatalf("decoded as %T, want *image.RGBA", m)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := (y*w + x) * 3
			c := rgba.RGBAAt(x, y)
			if c.R != pixels[src] || c.G != pixels[src+1] || c.B != pixels[src+2] || c.A != 0xFF {
				t.Errorf("pixel (%d,%d): got %v, want {%d %d %d 255}",
					x, y, c, pixels[src], pixels[src+1], pixels[src+2])
			}
		}
	}
}

// TestBMPCompat32 does the same for 32-bit output, which x/image/bmp
// decodes as NRGBA.
func TestBMPCompat32(t *testing.T) {
	ctx := context.Background()
	const w, h = 2, 2
	pixels := []byte{
		255, 0, 0, 255, 0, 255, 0, 128,
		0, 0, 255, 64, 128, 128, 128, 0,
	}
	encoded, err := EncodeBMPAlpha(ctx, pixels, w, h, Rgba8)
	if err != nil {
		t.Fatal(err)
	}

	m, err := bmp.Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatal(err)
	}
	nrgba, ok := m.(*image.NRGBA)
	if !ok {
		t.Fatalf("decoded as %T, want *image.NRGBA", m)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := (y*w + x) * 4
			c := nrgba.NRGBAAt(x, y)
			if c.R != pixels[src] || c.G != pixels[src+1] || c.B != pixels[src+2] || c.A != pixels[src+3] {
				t.Errorf("pixel (%d,%d): got %v, want {%d %d %d %d}",
					x, y, c, pixels[src], pixels[src+1], pixels[src+2], pixels[src+3])
			}
		}
	}
}
