package format

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a conversion target.
type Format int

const (
	Unknown Format = iota
	PNG
	DDS
	TGA
	JPEG
	JPG
)

// All lists the selectable targets in menu order.
var All = []Format{PNG, DDS, JPEG, JPG, TGA}

func (f Format) String() string {
	switch f {
	case PNG:
		return "PNG"
	case DDS:
		return "DDS"
	case TGA:
		return "TGA"
	case JPEG:
		return "JPEG"
	case JPG:
		return "JPG"
	default:
		return "unknown"
	}
}

// Extension returns the canonical file extension without the dot.
// JPEG and JPG carry the same encoding but distinct extensions.
//
// The result is always lowercase. Outputs are named with it and the
// eligibility filter matches it case-sensitively, so PHOTO.PNG is still
// converted (to PHOTO.png) when the target is PNG.
func (f Format) Extension() string {
	switch f {
	case PNG:
		return "png"
	case DDS:
		return "dds"
	case TGA:
		return "tga"
	case JPEG:
		return "jpeg"
	case JPG:
		return "jpg"
	default:
		return ""
	}
}

// IsContainer reports whether f is a block-compressed texture container.
func (f Format) IsContainer() bool {
	return f == DDS
}

func (f Format) Valid() bool {
	return f >= PNG && f <= JPG
}

// Parse accepts a format name or extension, with or without a leading dot,
// in any case.
func Parse(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png":
		return PNG, nil
	case "dds":
		return DDS, nil
	case "tga":
		return TGA, nil
	case "jpeg":
		return JPEG, nil
	case "jpg":
		return JPG, nil
	default:
		return Unknown, fmt.Errorf("unknown format %q", s)
	}
}

// FromPath guesses the format of path from its extension, ignoring case.
func FromPath(path string) Format {
	f, err := Parse(filepath.Ext(path))
	if err != nil {
		return Unknown
	}
	return f
}

// Names returns the lowercase names of All, for flag help.
func Names() []string {
	names := make([]string, 0, len(All))
	for _, f := range All {
		names = append(names, strings.ToLower(f.String()))
	}
	return names
}
