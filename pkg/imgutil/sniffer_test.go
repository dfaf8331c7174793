package imgutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectHeader(t *testing.T) {
	cases := []struct {
		name   string
		header []byte
		want   Kind
	}{
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, KindPNG},
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0, 0, 0}, KindJPEG},
		{"dds", []byte("DDS |\x00\x00\x00"), KindDDS},
		{"tiff", []byte{0x49, 0x49, 0x2a, 0x00, 8, 0, 0, 0}, KindTIFF},
		{"tga", []byte{0, 0, 2, 0, 0, 0, 0, 0}, KindUnknown},
	}
	for _, tc := range cases {
		got, err := DetectHeader(tc.header)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}

	if _, err := DetectHeader([]byte{0xff}); err == nil {
		t.Fatalf("expected error for short header")
	}
}

func TestSniffFile(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "x.bin")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	kind, err := SniffFile(path)
	if err != nil {
		t.Fatalf("sniff: %v", err)
	}
	if kind != KindPNG {
		t.Fatalf("got %v", kind)
	}
}

func TestToNRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 8, 7))
	src.Set(5, 5, color.RGBA{R: 100, G: 50, B: 25, A: 255})

	got := ToNRGBA(src)
	if got.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Fatalf("bounds %v", got.Bounds())
	}
	if c := got.NRGBAAt(0, 0); c.R != 100 || c.G != 50 || c.B != 25 || c.A != 255 {
		t.Fatalf("pixel %+v", c)
	}

	n := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	if ToNRGBA(n) != n {
		t.Fatalf("expected passthrough for origin-based NRGBA")
	}
}
