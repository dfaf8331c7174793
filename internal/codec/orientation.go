package codec

import (
	"errors"
	"image"
	"io"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

const orientationTag = 0x0112

// readOrientation returns the EXIF orientation (1-8) of the stream, or 1 when
// none is recorded.
func readOrientation(rs io.ReadSeeker) (int, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 1, err
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		if errorsIsNoExif(err) {
			return 1, nil
		}
		return 1, err
	}

	for _, tag := range tags {
		if tag.TagId != orientationTag && tag.TagName != "Orientation" {
			continue
		}
		if strings.Contains(tag.IfdPath, "IFD1") {
			// thumbnail
			continue
		}
		switch v := tag.Value.(type) {
		case []uint16:
			if len(v) > 0 && v[0] >= 1 && v[0] <= 8 {
				return int(v[0]), nil
			}
		case uint16:
			if v >= 1 && v <= 8 {
				return int(v), nil
			}
		}
	}
	return 1, nil
}

func errorsIsNoExif(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exif.ErrNoExif) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}

// applyOrientation returns src transformed so that it displays upright.
func applyOrientation(src *image.NRGBA, orientation int) *image.NRGBA {
	if orientation <= 1 || orientation > 8 {
		return src
	}

	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dw, dh := w, h
	if orientation >= 5 {
		dw, dh = h, w
	}
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))

	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			var sx, sy int
			switch orientation {
			case 2:
				sx, sy = w-1-x, y
			case 3:
				sx, sy = w-1-x, h-1-y
			case 4:
				sx, sy = x, h-1-y
			case 5:
				sx, sy = y, x
			case 6:
				sx, sy = y, h-1-x
			case 7:
				sx, sy = w-1-y, h-1-x
			case 8:
				sx, sy = w-1-y, x
			}
			so := sy*src.Stride + sx*4
			do := y*dst.Stride + x*4
			copy(dst.Pix[do:do+4], src.Pix[so:so+4])
		}
	}
	return dst
}
