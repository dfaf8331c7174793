package dds

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"io"
	"testing"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(1, w-1)),
				G: uint8(y * 255 / max(1, h-1)),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func TestRoundTripPreservesDimensions(t *testing.T) {
	sizes := [][2]int{{1, 1}, {3, 5}, {16, 16}, {37, 12}, {64, 1}}
	for _, f := range Formats {
		for _, sz := range sizes {
			var buf bytes.Buffer
			err := Encode(&buf, gradient(sz[0], sz[1]), Options{Format: f, Mipmaps: MipmapsGenerated})
			if err != nil {
				t.Fatalf("%v %v: encode: %v", f, sz, err)
			}

			tex, err := Decode(&buf)
			if err != nil {
				t.Fatalf("%v %v: decode: %v", f, sz, err)
			}
			if tex.Format != f {
				t.Fatalf("%v: decoded format %v", f, tex.Format)
			}
			if tex.MipCount != mipChainLength(sz[0], sz[1]) {
				t.Fatalf("%v %v: mip count %d", f, sz, tex.MipCount)
			}

			base, err := tex.Level(0)
			if err != nil {
				t.Fatalf("level 0: %v", err)
			}
			if base.Bounds().Dx() != sz[0] || base.Bounds().Dy() != sz[1] {
				t.Fatalf("%v: got %v, want %dx%d", f, base.Bounds(), sz[0], sz[1])
			}
		}
	}
}

func TestUncompressedIsLossless(t *testing.T) {
	src := gradient(7, 9)
	src.SetNRGBA(2, 3, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	for _, f := range []Format{R8G8B8A8Unorm, B8G8R8A8Unorm} {
		var buf bytes.Buffer
		if err := Encode(&buf, src, Options{Format: f}); err != nil {
			t.Fatalf("encode: %v", err)
		}
		tex, err := Decode(&buf)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		got, _ := tex.Level(0)
		if !bytes.Equal(got.Pix, src.Pix) {
			t.Fatalf("%v: pixels changed", f)
		}
	}
}

func TestBC1SolidColorAndPunchThrough(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < 16; i++ {
		img.SetNRGBA(i%4, i/4, color.NRGBA{R: 255, A: 255})
	}
	img.SetNRGBA(0, 0, color.NRGBA{})

	var buf bytes.Buffer
	if err := Encode(&buf, img, Options{Format: BC1RgbaUnorm}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	tex, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, _ := tex.Level(0)
	if a := got.NRGBAAt(0, 0).A; a != 0 {
		t.Fatalf("transparent texel decoded with alpha %d", a)
	}
	c := got.NRGBAAt(3, 3)
	if c.R != 255 || c.G != 0 || c.B != 0 || c.A != 255 {
		t.Fatalf("solid red decoded as %+v", c)
	}
}

func TestAlphaBlockExtremes(t *testing.T) {
	var vals [16]uint8
	for i := range vals {
		vals[i] = uint8(i * 17)
	}
	var enc [8]byte
	encodeAlpha(&vals, enc[:])
	var dec [16]uint8
	decodeAlpha(enc[:], &dec)
	if dec[0] != 0 || dec[15] != 255 {
		t.Fatalf("endpoints not exact: %d %d", dec[0], dec[15])
	}
	for i := range vals {
		d := int(dec[i]) - int(vals[i])
		if d < -20 || d > 20 {
			t.Fatalf("texel %d: got %d want ~%d", i, dec[i], vals[i])
		}
	}
}

func TestHeaderFields(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, gradient(8, 4), Options{Format: BC3RgbaUnorm, Mipmaps: MipmapsGenerated}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	raw := buf.Bytes()
	if string(raw[:4]) != "DDS " {
		t.Fatalf("bad magic %q", raw[:4])
	}
	if got := binary.LittleEndian.Uint32(raw[4+80:]); got != fourCC("DXT5") {
		t.Fatalf("fourcc %q", fourCCString(got))
	}

	info, err := Inspect(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if info.Width != 8 || info.Height != 4 || info.MipCount != 4 || info.Format != BC3RgbaUnorm {
		t.Fatalf("unexpected info %+v", info)
	}

	// 8x4 + 4x2 + 2x1 + 1x1, one 16-byte block each.
	if want := 4 + headerSize + 2*16 + 3*16; len(raw) != want {
		t.Fatalf("size %d, want %d", len(raw), want)
	}
}

func TestDecodeDX10(t *testing.T) {
	var buf bytes.Buffer
	hdr := newHeader(BC1RgbaUnorm, 4, 4, 1)
	hdr.PixelFormat.FourCC = fourCC("DX10")
	if err := writeHeader(&buf, hdr); err != nil {
		t.Fatalf("header: %v", err)
	}
	_ = binary.Write(&buf, binary.LittleEndian, headerDX10{DXGIFormat: 71, ResourceDimension: 3, ArraySize: 1})
	buf.Write(make([]byte, 8))

	tex, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tex.Format != BC1RgbaUnorm {
		t.Fatalf("format %v", tex.Format)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("\x89PNG\r\n\x1a\n........")))
	if !errors.Is(err, ErrNotDDS) {
		t.Fatalf("expected ErrNotDDS, got %v", err)
	}

	var buf bytes.Buffer
	_ = Encode(&buf, gradient(8, 8), Options{Format: BC1RgbaUnorm})
	truncated := buf.Bytes()[:buf.Len()-3]
	if _, err := Decode(bytes.NewReader(truncated)); err == nil {
		t.Fatalf("expected error for truncated payload")
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"bc1rgbaunorm":  BC1RgbaUnorm,
		"BC3RgbaUnorm":  BC3RgbaUnorm,
		"dxt5":          BC3RgbaUnorm,
		"R8G8B8A8UNORM": R8G8B8A8Unorm,
	} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("bc7"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestDecodeRejectsOversizedHeaderWithoutPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := writeHeader(&buf, newHeader(R8G8B8A8Unorm, maxDimension, maxDimension, 1)); err != nil {
		t.Fatalf("header: %v", err)
	}
	buf.Write(make([]byte, 20))

	_, err := Decode(&buf)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestDecodeLevelsIgnoresDamagedTail(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, gradient(16, 16), Options{Format: BC1RgbaUnorm, Mipmaps: MipmapsGenerated}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	truncated := buf.Bytes()[:buf.Len()-4]

	if _, err := Decode(bytes.NewReader(truncated)); err == nil {
		t.Fatalf("full decode should fail on a truncated mip chain")
	}

	tex, err := DecodeLevels(bytes.NewReader(truncated), 1)
	if err != nil {
		t.Fatalf("decode base: %v", err)
	}
	base, err := tex.Level(0)
	if err != nil {
		t.Fatalf("level 0: %v", err)
	}
	if base.Bounds().Dx() != 16 || base.Bounds().Dy() != 16 {
		t.Fatalf("bounds %v", base.Bounds())
	}
	if _, err := tex.Level(1); err == nil {
		t.Fatalf("level 1 should not have been read")
	}
}
