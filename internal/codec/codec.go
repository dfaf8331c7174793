// Package codec decodes and encodes the raster and container formats the
// converter understands.
package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"

	"ddsconv/internal/dds"
	"ddsconv/internal/format"
	"ddsconv/pkg/imgutil"
)

// ErrUnsupportedFormat is returned for content or targets the codec cannot
// handle.
var ErrUnsupportedFormat = errors.New("unsupported format")

const DefaultJPEGQuality = 90

type Options struct {
	JPEGQuality int
	AutoOrient  bool
	// Logger receives non-fatal decode warnings. Nil discards them.
	Logger *slog.Logger
}

// Codec is stateless apart from its options and safe for concurrent use.
type Codec struct {
	opts Options
}

func New(opts Options) *Codec {
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = DefaultJPEGQuality
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Codec{opts: opts}
}

// DecodeRaster reads a PNG, JPEG or TGA file. PNG and JPEG are recognised by
// content; TGA has no signature and is recognised by extension.
func (c *Codec) DecodeRaster(path string) (*image.NRGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	kind, err := imgutil.SniffReader(file)
	if err != nil && !isTGA(path) {
		return nil, fmt.Errorf("sniff %s: %w", path, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	var img image.Image
	switch {
	case kind == imgutil.KindPNG:
		img, err = png.Decode(bufio.NewReader(file))
	case kind == imgutil.KindJPEG:
		img, err = jpeg.Decode(bufio.NewReader(file))
	case kind == imgutil.KindUnknown && isTGA(path):
		img, err = tga.Decode(bufio.NewReader(file))
	default:
		return nil, fmt.Errorf("%w: %s content in %s", ErrUnsupportedFormat, kind, filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}

	out := imgutil.ToNRGBA(img)
	if kind == imgutil.KindJPEG && c.opts.AutoOrient {
		orientation, err := readOrientation(file)
		if err != nil {
			// pixels decoded fine; keep them as stored
			c.opts.Logger.Warn("exif orientation unreadable", "path", path, "error", err)
			orientation = 1
		}
		out = applyOrientation(out, orientation)
	}
	return out, nil
}

// EncodeRaster encodes img as PNG, JPEG/JPG or TGA.
func (c *Codec) EncodeRaster(img *image.NRGBA, f format.Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case format.PNG:
		err = png.Encode(&buf, img)
	case format.JPEG, format.JPG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.opts.JPEGQuality})
	case format.TGA:
		err = tga.Encode(&buf, img)
	default:
		return nil, fmt.Errorf("%w: raster target %s", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", f, err)
	}
	return buf.Bytes(), nil
}

// EncodeContainer writes img as a DDS texture.
func (c *Codec) EncodeContainer(img *image.NRGBA, f dds.Format, q dds.Quality, m dds.MipPolicy) ([]byte, error) {
	var buf bytes.Buffer
	if err := dds.Encode(&buf, img, dds.Options{Format: f, Quality: q, Mipmaps: m}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeContainer returns every mip level of a DDS file, level 0 first.
func (c *Codec) DecodeContainer(path string) ([]*image.NRGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	tex, err := dds.Decode(bufio.NewReader(file))
	if err != nil {
		return nil, err
	}
	return tex.Levels()
}

// DecodeContainerBase returns mip level 0 of a DDS file without reading the
// rest of the chain.
func (c *Codec) DecodeContainerBase(path string) (*image.NRGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	tex, err := dds.DecodeLevels(bufio.NewReader(file), 1)
	if err != nil {
		return nil, err
	}
	return tex.Level(0)
}

// Probe describes a file without decoding its pixels.
type Probe struct {
	Kind     string
	Width    int
	Height   int
	DDS      dds.Format
	MipCount int
}

// Describe reads just enough of path to report its type and dimensions.
func (c *Codec) Describe(path string) (Probe, error) {
	file, err := os.Open(path)
	if err != nil {
		return Probe{}, err
	}
	defer file.Close()

	kind, sniffErr := imgutil.SniffReader(file)
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return Probe{}, err
	}
	r := bufio.NewReader(file)

	switch {
	case sniffErr == nil && kind == imgutil.KindDDS:
		info, err := dds.Inspect(r)
		if err != nil {
			return Probe{}, err
		}
		return Probe{Kind: kind.String(), Width: info.Width, Height: info.Height, DDS: info.Format, MipCount: info.MipCount}, nil
	case sniffErr == nil && (kind == imgutil.KindPNG || kind == imgutil.KindJPEG):
		var cfg image.Config
		if kind == imgutil.KindPNG {
			cfg, err = png.DecodeConfig(r)
		} else {
			cfg, err = jpeg.DecodeConfig(r)
		}
		if err != nil {
			return Probe{}, fmt.Errorf("decode %s header: %w", kind, err)
		}
		return Probe{Kind: kind.String(), Width: cfg.Width, Height: cfg.Height, MipCount: 1}, nil
	case isTGA(path):
		cfg, err := tga.DecodeConfig(r)
		if err != nil {
			return Probe{}, fmt.Errorf("decode tga header: %w", err)
		}
		return Probe{Kind: "tga", Width: cfg.Width, Height: cfg.Height, MipCount: 1}, nil
	}
	if sniffErr != nil {
		return Probe{}, sniffErr
	}
	return Probe{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind)
}

func isTGA(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".tga")
}
