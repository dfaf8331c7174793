// Package dds reads and writes DirectDraw Surface texture containers with
// uncompressed RGBA8 or BC1-BC5 block-compressed payloads.
package dds

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"golang.org/x/image/draw"

	"ddsconv/pkg/imgutil"
)

// Options controls Encode.
type Options struct {
	Format  Format
	Quality Quality
	Mipmaps MipPolicy
}

// Texture is a decoded container. Surfaces stay in their stored encoding
// until Level expands them.
type Texture struct {
	Info
	levels [][]byte
}

// Encode writes img as a DDS container.
func Encode(w io.Writer, img image.Image, opts Options) error {
	if !validFormat(opts.Format) {
		return fmt.Errorf("%w: %v", ErrUnsupported, opts.Format)
	}
	base := imgutil.ToNRGBA(img)
	b := base.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return fmt.Errorf("%w: empty image", ErrUnsupported)
	}
	if b.Dx() > maxDimension || b.Dy() > maxDimension {
		return fmt.Errorf("%w: dimensions %dx%d", ErrUnsupported, b.Dx(), b.Dy())
	}

	levels := []*image.NRGBA{base}
	if opts.Mipmaps == MipmapsGenerated {
		levels = mipChain(base, scalerFor(opts.Quality))
	}

	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, newHeader(opts.Format, b.Dx(), b.Dy(), len(levels))); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, level := range levels {
		if _, err := bw.Write(encodeSurface(opts.Format, level)); err != nil {
			return fmt.Errorf("write level %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// Decode reads a DDS container and all of its mip surfaces. Only the first
// array slice of DX10 array textures is read.
func Decode(r io.Reader) (*Texture, error) {
	return DecodeLevels(r, 0)
}

// DecodeLevels reads at most n mip surfaces, all of them when n <= 0. Mips
// beyond n are never read, so a damaged tail does not affect level 0.
func DecodeLevels(r io.Reader, n int) (*Texture, error) {
	info, err := readInfo(r)
	if err != nil {
		return nil, err
	}
	count := info.MipCount
	if n > 0 {
		count = min(count, n)
	}
	tex := &Texture{Info: info, levels: make([][]byte, 0, count)}
	w, h := info.Width, info.Height
	for i := 0; i < count; i++ {
		buf, err := readSurface(r, info.Format.LevelSize(w, h))
		if err != nil {
			return nil, fmt.Errorf("read level %d: %w", i, err)
		}
		tex.levels = append(tex.levels, buf)
		w, h = max(1, w/2), max(1, h/2)
	}
	return tex, nil
}

// readSurface reads exactly size bytes. The buffer grows with the data
// actually read, so a header claiming a huge surface costs nothing until the
// payload backs it.
func readSurface(r io.Reader, size int) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.CopyN(&buf, r, int64(size))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: got %d of %d bytes", io.ErrUnexpectedEOF, n, size)
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

// Inspect reads only the header.
func Inspect(r io.Reader) (Info, error) {
	return readInfo(r)
}

// Level expands mip level i (0 is the full-resolution surface).
func (t *Texture) Level(i int) (*image.NRGBA, error) {
	if i < 0 || i >= len(t.levels) {
		return nil, fmt.Errorf("mip level %d out of range [0,%d)", i, len(t.levels))
	}
	w, h := max(1, t.Width>>i), max(1, t.Height>>i)
	return decodeSurface(t.Format, t.levels[i], w, h, t.Opaque), nil
}

// Levels expands every stored mip level.
func (t *Texture) Levels() ([]*image.NRGBA, error) {
	out := make([]*image.NRGBA, 0, len(t.levels))
	for i := range t.levels {
		img, err := t.Level(i)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

func validFormat(f Format) bool {
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}

func scalerFor(q Quality) draw.Scaler {
	switch q {
	case QualitySlow:
		return draw.CatmullRom
	case QualityNormal:
		return draw.BiLinear
	default:
		return draw.ApproxBiLinear
	}
}

// mipChain halves base down to 1x1, each level scaled from the previous.
func mipChain(base *image.NRGBA, scaler draw.Scaler) []*image.NRGBA {
	levels := []*image.NRGBA{base}
	cur := base
	for cur.Bounds().Dx() > 1 || cur.Bounds().Dy() > 1 {
		w := max(1, cur.Bounds().Dx()/2)
		h := max(1, cur.Bounds().Dy()/2)
		next := image.NewNRGBA(image.Rect(0, 0, w, h))
		scaler.Scale(next, next.Bounds(), cur, cur.Bounds(), draw.Src, nil)
		levels = append(levels, next)
		cur = next
	}
	return levels
}

func encodeSurface(f Format, img *image.NRGBA) []byte {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	out := make([]byte, f.LevelSize(w, h))

	if !f.Compressed() {
		for y := 0; y < h; y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+w*4]
			dst := out[y*w*4 : (y+1)*w*4]
			copy(dst, row)
			if f == B8G8R8A8Unorm {
				for x := 0; x < w*4; x += 4 {
					dst[x], dst[x+2] = dst[x+2], dst[x]
				}
			}
		}
		return out
	}

	bs := f.blockBytes()
	bw, bh := max(1, (w+3)/4), max(1, (h+3)/4)
	var px block
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			for i := 0; i < 16; i++ {
				// Edge texels are replicated into partial blocks.
				x := min(bx*4+i%4, w-1)
				y := min(by*4+i/4, h-1)
				o := y*img.Stride + x*4
				copy(px[i][:], img.Pix[o:o+4])
			}
			off := (by*bw + bx) * bs
			encodeBlock(f, &px, out[off:off+bs])
		}
	}
	return out
}

func decodeSurface(f Format, data []byte, w, h int, opaque bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	if !f.Compressed() {
		copy(img.Pix, data)
		for i := 0; i < len(img.Pix); i += 4 {
			if f == B8G8R8A8Unorm {
				img.Pix[i], img.Pix[i+2] = img.Pix[i+2], img.Pix[i]
			}
			if opaque {
				img.Pix[i+3] = 255
			}
		}
		return img
	}

	bs := f.blockBytes()
	bw, bh := max(1, (w+3)/4), max(1, (h+3)/4)
	var px block
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			off := (by*bw + bx) * bs
			decodeBlock(f, data[off:off+bs], &px)
			for i := 0; i < 16; i++ {
				x, y := bx*4+i%4, by*4+i/4
				if x >= w || y >= h {
					continue
				}
				o := y*img.Stride + x*4
				copy(img.Pix[o:o+4], px[i][:])
			}
		}
	}
	return img
}
