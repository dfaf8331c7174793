package dds

import (
	"fmt"
	"strings"
)

// Format is the pixel encoding stored inside a DDS container.
type Format int

const (
	FormatUnknown Format = iota
	R8G8B8A8Unorm
	B8G8R8A8Unorm
	BC1RgbaUnorm
	BC2RgbaUnorm
	BC3RgbaUnorm
	BC4RUnorm
	BC5RgUnorm
)

// Formats lists every encodable format.
var Formats = []Format{
	R8G8B8A8Unorm,
	B8G8R8A8Unorm,
	BC1RgbaUnorm,
	BC2RgbaUnorm,
	BC3RgbaUnorm,
	BC4RUnorm,
	BC5RgUnorm,
}

func (f Format) String() string {
	switch f {
	case R8G8B8A8Unorm:
		return "R8G8B8A8Unorm"
	case B8G8R8A8Unorm:
		return "B8G8R8A8Unorm"
	case BC1RgbaUnorm:
		return "BC1RgbaUnorm"
	case BC2RgbaUnorm:
		return "BC2RgbaUnorm"
	case BC3RgbaUnorm:
		return "BC3RgbaUnorm"
	case BC4RUnorm:
		return "BC4RUnorm"
	case BC5RgUnorm:
		return "BC5RgUnorm"
	default:
		return "Unknown"
	}
}

// Compressed reports whether f stores 4x4 blocks rather than pixels.
func (f Format) Compressed() bool {
	switch f {
	case BC1RgbaUnorm, BC2RgbaUnorm, BC3RgbaUnorm, BC4RUnorm, BC5RgUnorm:
		return true
	default:
		return false
	}
}

func (f Format) blockBytes() int {
	switch f {
	case BC1RgbaUnorm, BC4RUnorm:
		return 8
	case BC2RgbaUnorm, BC3RgbaUnorm, BC5RgUnorm:
		return 16
	default:
		return 0
	}
}

// LevelSize returns the byte size of one w x h surface in format f.
func (f Format) LevelSize(w, h int) int {
	if f.Compressed() {
		return max(1, (w+3)/4) * max(1, (h+3)/4) * f.blockBytes()
	}
	return w * h * 4
}

// ParseFormat matches a format name case-insensitively. Short aliases such
// as "bc1", "dxt5" and "rgba8" are accepted.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, f := range Formats {
		if strings.ToLower(f.String()) == name {
			return f, nil
		}
	}
	switch name {
	case "bc1", "dxt1":
		return BC1RgbaUnorm, nil
	case "bc2", "dxt3":
		return BC2RgbaUnorm, nil
	case "bc3", "dxt5":
		return BC3RgbaUnorm, nil
	case "bc4", "ati1":
		return BC4RUnorm, nil
	case "bc5", "ati2":
		return BC5RgUnorm, nil
	case "rgba8":
		return R8G8B8A8Unorm, nil
	case "bgra8":
		return B8G8R8A8Unorm, nil
	}
	return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupported, s)
}

// Quality trades encode speed for output fidelity.
type Quality int

const (
	QualityFast Quality = iota
	QualityNormal
	QualitySlow
)

// MipPolicy controls which mip levels are written.
type MipPolicy int

const (
	MipmapsNone MipPolicy = iota
	MipmapsGenerated
)
