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
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func checkerboard(w, h, bpp int) []byte {
	pixels := make([]byte, w*h*bpp)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * bpp
			for c := 0; c < bpp; c++ {
				if (x+y)%2 == 0 {
					pixels[off+c] = 200 + byte(c)*20
				} else {
					pixels[off+c] = 10 + byte(c)*30
				}
			}
		}
	}
	return pixels
}

func noisePattern(n int) []byte {
	pixels := make([]byte, n)
	state := uint32(0xDEADBEEF)
	for i := range pixels {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		pixels[i] = byte(state)
	}
	return pixels
}

func TestRoundTrips(t *testing.T) {
	ctx := context.Background()
	type codec struct {
		encode func(context.Context, []byte, uint32, uint32, PixelLayout) ([]byte, error)
		decode func(context.Context, []byte) (*Image, error)
	}
	pnm := func(enc func(context.Context, []byte, uint32, uint32, PixelLayout) ([]byte, error)) codec {
		return codec{enc, Decode}
	}
	bmp := codec{EncodeBMP, DecodeBMP}
	bmpAlpha := codec{EncodeBMPAlpha, DecodeBMP}

	cases := []struct {
		name   string
		c      codec
		w, h   uint32
		layout PixelLayout
		pixels []byte
	}{
		{"ppm rgb8", pnm(EncodePPM), 2, 2, Rgb8,
			[]byte{255, 0, 0, 0, 255, 0, 0, 0, 255, 128, 128, 128}},
		{"ppm checkerboard", pnm(EncodePPM), 8, 6, Rgb8, checkerboard(8, 6, 3)},
		{"pgm gray8", pnm(EncodePGM), 3, 2, Gray8, []byte{0, 64, 128, 192, 255, 100}},
		{"pgm noise", pnm(EncodePGM), 16, 12, Gray8, noisePattern(16 * 12)},
		{"pam gray8", pnm(EncodePAM), 3, 2, Gray8, []byte{0, 64, 128, 192, 255, 42}},
		{"pam gray16", pnm(EncodePAM), 2, 1, Gray16, []byte{0x01, 0x02, 0xFF, 0xFE}},
		{"pam rgb8", pnm(EncodePAM), 4, 4, Rgb8, checkerboard(4, 4, 3)},
		{"pam rgba8", pnm(EncodePAM), 5, 7, Rgba8, noisePattern(5 * 7 * 4)},
		{"bmp rgb8", bmp, 3, 2, Rgb8, checkerboard(3, 2, 3)},
		{"bmp rgb8 noise", bmp, 5, 3, Rgb8, noisePattern(5 * 3 * 3)},
		{"bmp rgba8", bmpAlpha, 2, 2, Rgba8,
			[]byte{255, 0, 0, 255, 0, 255, 0, 128, 0, 0, 255, 0, 128, 128, 128, 255}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			encoded, err := c.c.encode(ctx, c.pixels, c.w, c.h, c.layout)
			if err != nil {
				t.Fatal(err)
			}
			img, err := c.c.decode(ctx, encoded)
			if err != nil {
				t.Fatal(err)
			}
			if img.Width != c.w || img.Height != c.h || img.Layout != c.layout {
				t.Fatalf("got %dx%d %s, want %dx%d %s",
					img.Width, img.Height, img.Layout, c.w, c.h, c.layout)
			}
			if d := cmp.Diff(c.pixels, img.Pixels()); d != "" {
				t.Errorf("pixels differ (-want +got):\n%s", d)
			}
		})
	}
}

func TestPFMRoundTrip(t *testing.T) {
	ctx := context.Background()
	floats := []float32{0, 1, -1, 0.5, 1e-3, 1234.5, -0.125, 3.25, 100, 1e6, -1e-6, 42}
	pixels := make([]byte, len(floats)*4)
	for i, f := range floats {
		putUint32le(pixels, i*4, math.Float32bits(f))
	}

	for _, c := range []struct {
		name   string
		w, h   uint32
		layout PixelLayout
	}{
		{"gray", 4, 3, GrayF32},
		{"rgb", 2, 2, RgbF32},
	} {
		t.Run(c.name, func(t *testing.T) {
			encoded, err := EncodePFM(ctx, pixels, c.w, c.h, c.layout)
			if err != nil {
				t.Fatal(err)
			}
			img, err := Decode(ctx, encoded)
			if err != nil {
				t.Fatal(err)
			}
			if img.Layout != c.layout {
				t.Fatalf("got layout %s, want %s", img.Layout, c.layout)
			}
			got := img.Pixels()
			for i, f := range floats {
				g := math.Float32frombits(getUint32le(got, i*4))
				if diff := float64(g) - float64(f); diff > 1e-6 || diff < -1e-6 {
					t.Errorf("sample %d: got %g, want %g", i, g, f)
				}
			}
		})
	}
}

func TestLimitsRejectBeforeDecode(t *testing.T) {
	ctx := context.Background()

	// 2x2 encodings in every supported container
	ppm, _ := EncodePPM(ctx, make([]byte, 12), 2, 2, Rgb8)
	pgm, _ := EncodePGM(ctx, make([]byte, 4), 2, 2, Gray8)
	pam, _ := EncodePAM(ctx, make([]byte, 16), 2, 2, Rgba8)
	pfm, _ := EncodePFM(ctx, make([]byte, 16), 2, 2, GrayF32)
	bmp, _ := EncodeBMP(ctx, make([]byte, 12), 2, 2, Rgb8)

	limitSets := []struct {
		name   string
		limits *Limits
	}{
		{"max width", &Limits{MaxWidth: 1}},
		{"max height", &Limits{MaxHeight: 1}},
		{"max pixels", &Limits{MaxPixels: 1}},
		{"max memory", &Limits{MaxMemoryBytes: 1}},
	}
	inputs := []struct {
		name   string
		data   []byte
		decode func(context.Context, []byte, *Limits) (*Image, error)
	}{
		{"ppm", ppm, DecodeWithLimits},
		{"pgm", pgm, DecodeWithLimits},
		{"pam", pam, DecodeWithLimits},
		{"pfm", pfm, DecodeWithLimits},
		{"bmp", bmp, DecodeBMPWithLimits},
	}
	for _, ls := range limitSets {
		for _, in := range inputs {
			t.Run(ls.name+"/"+in.name, func(t *testing.T) {
				_, err := in.decode(ctx, in.data, ls.limits)
				var le *LimitError
				if !errors.As(err, &le) {
					t.Fatalf("got %v, want LimitError", err)
				}
			})
		}
	}

	// generous limits pass
	big := &Limits{MaxWidth: 100, MaxHeight: 100, MaxPixels: 10000, MaxMemoryBytes: 1 << 20}
	if _, err := DecodeWithLimits(ctx, ppm, big); err != nil {
		t.Errorf("decode under generous limits failed: %v", err)
	}
	if _, err := DecodeBMPWithLimits(ctx, bmp, big); err != nil {
		t.Errorf("bmp decode under generous limits failed: %v", err)
	}
}

func TestHugeClaimedDimensions(t *testing.T) {
	ctx := context.Background()
	// headers claiming enormous images must fail fast, without trying
	// to allocate pixel memory
	cases := []struct {
		name string
		data []byte
		dec  func(context.Context, []byte) (*Image, error)
	}{
		{"pgm", []byte("P5\n4294967295 4294967295\n255\n\x00"), Decode},
		{"ppm 16bit", []byte("P6\n4294967295 4294967295\n65535\n\x00"), Decode},
		{"pam", []byte("P7\nWIDTH 4294967295\nHEIGHT 4294967295\nDEPTH 4\nMAXVAL 255\nENDHDR\n\x00"), Decode},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := c.dec(ctx, c.data)
			if err == nil {
				t.Fatal("expected error")
			}
			var de *DimensionError
			if !errors.As(err, &de) && !errors.Is(err, ErrUnexpectedEOF) {
				t.Errorf("got %v, want DimensionError or ErrUnexpectedEOF", err)
			}
		})
	}
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pixels := checkerboard(8, 8, 3)
	bg := context.Background()
	ppm, err := EncodePPM(bg, pixels, 8, 8, Rgb8)
	if err != nil {
		t.Fatal(err)
	}
	bmp, err := EncodeBMP(bg, pixels, 8, 8, Rgb8)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Decode(ctx, ppm); !errors.Is(err, context.Canceled) {
		t.Errorf("Decode: got %v, want context.Canceled", err)
	}
	if _, err := DecodeBMP(ctx, bmp); !errors.Is(err, context.Canceled) {
		t.Errorf("DecodeBMP: got %v, want context.Canceled", err)
	}
	if _, err := EncodePGM(ctx, pixels, 8, 8, Rgb8); !errors.Is(err, context.Canceled) {
		t.Errorf("EncodePGM: got %v, want context.Canceled", err)
	}
	if _, err := EncodeBMP(ctx, pixels, 8, 8, Rgb8); !errors.Is(err, context.Canceled) {
		t.Errorf("EncodeBMP: got %v, want context.Canceled", err)
	}
}

func FuzzRoundtrip(f *testing.F) {
	ctx := context.Background()
	seed, _ := EncodePPM(ctx, checkerboard(4, 3, 3), 4, 3, Rgb8)
	f.Add(seed)
	seed, _ = EncodePAM(ctx, noisePattern(8), 2, 1, Rgba8)
	f.Add(seed)
	seed, _ = EncodeBMP(ctx, noisePattern(6), 1, 2, Rgb8)
	f.Add(seed)

	f.Fuzz(func(t *testing.T, a []byte) {
		if img, err := Decode(ctx, a); err == nil {
			if want, got := int(img.Width)*int(img.Height)*img.Layout.BytesPerPixel(), len(img.Pixels()); want != got {
				t.Fatalf("pixel buffer has %d bytes, want %d", got, want)
			}
		}
		if img, err := DecodeBMP(ctx, a); err == nil {
			if img.Borrowed() {
				t.Fatal("BMP decode returned a borrowed buffer")
			}
			if want, got := int(img.Width)*int(img.Height)*img.Layout.BytesPerPixel(), len(img.Pixels()); want != got {
				t.Fatalf("pixel buffer has %d bytes, want %d", got, want)
			}
		}
	})
}
