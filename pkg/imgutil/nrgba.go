package imgutil

import (
	"image"

	"golang.org/x/image/draw"
)

// ToNRGBA returns img as a non-premultiplied RGBA8 buffer whose bounds start
// at the origin. img is returned unchanged when it already qualifies.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
