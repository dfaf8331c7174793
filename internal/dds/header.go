package dds

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	magic      = 0x20534444 // "DDS "
	headerSize = 124
	pfSize     = 32

	flagCaps        = 0x1
	flagHeight      = 0x2
	flagWidth       = 0x4
	flagPitch       = 0x8
	flagPixelFormat = 0x1000
	flagMipMapCount = 0x20000
	flagLinearSize  = 0x80000

	pfAlphaPixels = 0x1
	pfFourCC      = 0x4
	pfRGB         = 0x40

	capsComplex = 0x8
	capsTexture = 0x1000
	capsMipMap  = 0x400000

	maxDimension = 1 << 15
)

var (
	ErrNotDDS      = errors.New("not a DDS file")
	ErrUnsupported = errors.New("unsupported DDS format")
)

type pixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      uint32
	RGBBitCount uint32
	RMask       uint32
	GMask       uint32
	BMask       uint32
	AMask       uint32
}

type header struct {
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       pixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

type headerDX10 struct {
	DXGIFormat        uint32
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

func fourCC(s string) uint32 {
	return uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24
}

// Info describes a container without its pixel payload.
type Info struct {
	Width    int
	Height   int
	Format   Format
	MipCount int
	// Opaque is set for uncompressed layouts without an alpha mask.
	Opaque bool
}

func newHeader(f Format, w, h, mips int) header {
	hdr := header{
		Size:        headerSize,
		Flags:       flagCaps | flagHeight | flagWidth | flagPixelFormat,
		Height:      uint32(h),
		Width:       uint32(w),
		MipMapCount: uint32(mips),
		Caps:        capsTexture,
	}
	if f.Compressed() {
		hdr.Flags |= flagLinearSize
		hdr.PitchOrLinearSize = uint32(f.LevelSize(w, h))
	} else {
		hdr.Flags |= flagPitch
		hdr.PitchOrLinearSize = uint32(w * 4)
	}
	if mips > 1 {
		hdr.Flags |= flagMipMapCount
		hdr.Caps |= capsComplex | capsMipMap
	}

	pf := pixelFormat{Size: pfSize}
	switch f {
	case BC1RgbaUnorm:
		pf.Flags, pf.FourCC = pfFourCC, fourCC("DXT1")
	case BC2RgbaUnorm:
		pf.Flags, pf.FourCC = pfFourCC, fourCC("DXT3")
	case BC3RgbaUnorm:
		pf.Flags, pf.FourCC = pfFourCC, fourCC("DXT5")
	case BC4RUnorm:
		pf.Flags, pf.FourCC = pfFourCC, fourCC("ATI1")
	case BC5RgUnorm:
		pf.Flags, pf.FourCC = pfFourCC, fourCC("ATI2")
	case R8G8B8A8Unorm:
		pf.Flags = pfRGB | pfAlphaPixels
		pf.RGBBitCount = 32
		pf.RMask, pf.GMask, pf.BMask, pf.AMask = 0x000000ff, 0x0000ff00, 0x00ff0000, 0xff000000
	case B8G8R8A8Unorm:
		pf.Flags = pfRGB | pfAlphaPixels
		pf.RGBBitCount = 32
		pf.RMask, pf.GMask, pf.BMask, pf.AMask = 0x00ff0000, 0x0000ff00, 0x000000ff, 0xff000000
	}
	hdr.PixelFormat = pf
	return hdr
}

func writeHeader(w io.Writer, hdr header) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(magic)); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, &hdr)
}

// readInfo consumes the magic, the header and, when present, the DX10
// extension, leaving r positioned at the first surface.
func readInfo(r io.Reader) (Info, error) {
	var m uint32
	if err := binary.Read(r, binary.LittleEndian, &m); err != nil {
		return Info{}, fmt.Errorf("read magic: %w", err)
	}
	if m != magic {
		return Info{}, ErrNotDDS
	}

	var hdr header
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return Info{}, fmt.Errorf("read header: %w", err)
	}
	if hdr.Size != headerSize || hdr.PixelFormat.Size != pfSize {
		return Info{}, fmt.Errorf("%w: bad header size %d", ErrNotDDS, hdr.Size)
	}
	if hdr.Width == 0 || hdr.Height == 0 || hdr.Width > maxDimension || hdr.Height > maxDimension {
		return Info{}, fmt.Errorf("%w: dimensions %dx%d", ErrUnsupported, hdr.Width, hdr.Height)
	}

	info := Info{
		Width:    int(hdr.Width),
		Height:   int(hdr.Height),
		MipCount: max(1, int(hdr.MipMapCount)),
	}
	if limit := mipChainLength(info.Width, info.Height); info.MipCount > limit {
		info.MipCount = limit
	}

	pf := hdr.PixelFormat
	switch {
	case pf.Flags&pfFourCC != 0:
		switch pf.FourCC {
		case fourCC("DXT1"):
			info.Format = BC1RgbaUnorm
		case fourCC("DXT2"), fourCC("DXT3"):
			info.Format = BC2RgbaUnorm
		case fourCC("DXT4"), fourCC("DXT5"):
			info.Format = BC3RgbaUnorm
		case fourCC("ATI1"), fourCC("BC4U"):
			info.Format = BC4RUnorm
		case fourCC("ATI2"), fourCC("BC5U"):
			info.Format = BC5RgUnorm
		case fourCC("DX10"):
			var ext headerDX10
			if err := binary.Read(r, binary.LittleEndian, &ext); err != nil {
				return Info{}, fmt.Errorf("read dx10 header: %w", err)
			}
			f, err := fromDXGI(ext.DXGIFormat)
			if err != nil {
				return Info{}, err
			}
			info.Format = f
		default:
			return Info{}, fmt.Errorf("%w: fourcc %q", ErrUnsupported, fourCCString(pf.FourCC))
		}
	case pf.Flags&pfRGB != 0 && pf.RGBBitCount == 32:
		switch {
		case pf.RMask == 0x000000ff && pf.GMask == 0x0000ff00 && pf.BMask == 0x00ff0000:
			info.Format = R8G8B8A8Unorm
		case pf.RMask == 0x00ff0000 && pf.GMask == 0x0000ff00 && pf.BMask == 0x000000ff:
			info.Format = B8G8R8A8Unorm
		default:
			return Info{}, fmt.Errorf("%w: rgb masks %08x/%08x/%08x", ErrUnsupported, pf.RMask, pf.GMask, pf.BMask)
		}
		info.Opaque = pf.Flags&pfAlphaPixels == 0 || pf.AMask == 0
	default:
		return Info{}, fmt.Errorf("%w: pixel format flags %#x", ErrUnsupported, pf.Flags)
	}
	return info, nil
}

func fromDXGI(v uint32) (Format, error) {
	switch v {
	case 28, 29:
		return R8G8B8A8Unorm, nil
	case 87, 91:
		return B8G8R8A8Unorm, nil
	case 71, 72:
		return BC1RgbaUnorm, nil
	case 74, 75:
		return BC2RgbaUnorm, nil
	case 77, 78:
		return BC3RgbaUnorm, nil
	case 80:
		return BC4RUnorm, nil
	case 83:
		return BC5RgUnorm, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: dxgi format %d", ErrUnsupported, v)
	}
}

func fourCCString(v uint32) string {
	return string([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

func mipChainLength(w, h int) int {
	n := 1
	for w > 1 || h > 1 {
		w = max(1, w/2)
		h = max(1, h/2)
		n++
	}
	return n
}
