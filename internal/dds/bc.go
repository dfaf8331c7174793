package dds

import "encoding/binary"

// block holds a 4x4 tile of RGBA texels in row-major order.
type block [16][4]uint8

func to565(r, g, b uint8) uint16 {
	r5 := (uint16(r)*31 + 127) / 255
	g6 := (uint16(g)*63 + 127) / 255
	b5 := (uint16(b)*31 + 127) / 255
	return r5<<11 | g6<<5 | b5
}

func from565(c uint16) [3]uint8 {
	r5 := uint8(c >> 11 & 0x1f)
	g6 := uint8(c >> 5 & 0x3f)
	b5 := uint8(c & 0x1f)
	return [3]uint8{r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2}
}

func colorPalette(c0, c1 uint16, fourColor bool) [4][4]uint8 {
	a, b := from565(c0), from565(c1)
	var p [4][4]uint8
	p[0] = [4]uint8{a[0], a[1], a[2], 255}
	p[1] = [4]uint8{b[0], b[1], b[2], 255}
	if fourColor {
		for i := 0; i < 3; i++ {
			p[2][i] = uint8((2*int(a[i]) + int(b[i])) / 3)
			p[3][i] = uint8((int(a[i]) + 2*int(b[i])) / 3)
		}
		p[2][3], p[3][3] = 255, 255
	} else {
		for i := 0; i < 3; i++ {
			p[2][i] = uint8((int(a[i]) + int(b[i])) / 2)
		}
		p[2][3] = 255
	}
	return p
}

func rgbDistance(a [4]uint8, b [4]uint8) int {
	dr := int(a[0]) - int(b[0])
	dg := int(a[1]) - int(b[1])
	db := int(a[2]) - int(b[2])
	return dr*dr + dg*dg + db*db
}

// encodeColor writes an 8-byte BC1 colour block. With punchThrough, texels
// whose alpha is below 128 are encoded as transparent black.
func encodeColor(px *block, dst []byte, punchThrough bool) {
	transparent := false
	if punchThrough {
		for i := range px {
			if px[i][3] < 128 {
				transparent = true
				break
			}
		}
	}

	lo := [3]int{255, 255, 255}
	hi := [3]int{0, 0, 0}
	opaque := 0
	for i := range px {
		if transparent && px[i][3] < 128 {
			continue
		}
		opaque++
		for c := 0; c < 3; c++ {
			v := int(px[i][c])
			lo[c] = min(lo[c], v)
			hi[c] = max(hi[c], v)
		}
	}
	if opaque == 0 {
		lo, hi = [3]int{}, [3]int{}
	}

	// Pull the endpoints in by 1/16 of the range so the interpolated
	// entries land closer to the texels.
	for c := 0; c < 3; c++ {
		inset := (hi[c] - lo[c]) >> 4
		lo[c] += inset
		hi[c] -= inset
	}

	c0 := to565(uint8(hi[0]), uint8(hi[1]), uint8(hi[2]))
	c1 := to565(uint8(lo[0]), uint8(lo[1]), uint8(lo[2]))

	var indices uint32
	if transparent {
		if c0 > c1 {
			c0, c1 = c1, c0
		}
		pal := colorPalette(c0, c1, false)
		for i := range px {
			idx := uint32(3)
			if px[i][3] >= 128 {
				idx = nearest(pal[:3], px[i])
			}
			indices |= idx << (2 * i)
		}
	} else {
		if c0 < c1 {
			c0, c1 = c1, c0
		}
		if c0 != c1 {
			pal := colorPalette(c0, c1, true)
			for i := range px {
				indices |= nearest(pal[:], px[i]) << (2 * i)
			}
		}
	}

	binary.LittleEndian.PutUint16(dst[0:], c0)
	binary.LittleEndian.PutUint16(dst[2:], c1)
	binary.LittleEndian.PutUint32(dst[4:], indices)
}

func nearest(pal [][4]uint8, px [4]uint8) uint32 {
	best, bestDist := 0, int(^uint(0)>>1)
	for i, p := range pal {
		if d := rgbDistance(p, px); d < bestDist {
			best, bestDist = i, d
		}
	}
	return uint32(best)
}

// decodeColor expands an 8-byte colour block. BC2 and BC3 always use the
// four-colour palette regardless of endpoint order.
func decodeColor(src []byte, px *block, forceFourColor bool) {
	c0 := binary.LittleEndian.Uint16(src[0:])
	c1 := binary.LittleEndian.Uint16(src[2:])
	indices := binary.LittleEndian.Uint32(src[4:])
	pal := colorPalette(c0, c1, forceFourColor || c0 > c1)
	for i := range px {
		px[i] = pal[indices>>(2*i)&3]
	}
}

// encodeAlpha writes an 8-byte interpolated single-channel block, the
// layout shared by BC3 alpha, BC4 and both BC5 channels.
func encodeAlpha(values *[16]uint8, dst []byte) {
	a0, a1 := values[0], values[0]
	for _, v := range values {
		a0 = max(a0, v)
		a1 = min(a1, v)
	}
	dst[0], dst[1] = a0, a1

	var bits uint64
	if a0 != a1 {
		pal := alphaPalette(a0, a1)
		for i, v := range values {
			best, bestDist := 0, 256
			for j, p := range pal {
				d := int(v) - int(p)
				if d < 0 {
					d = -d
				}
				if d < bestDist {
					best, bestDist = j, d
				}
			}
			bits |= uint64(best) << (3 * i)
		}
	}
	for i := 0; i < 6; i++ {
		dst[2+i] = byte(bits >> (8 * i))
	}
}

func alphaPalette(a0, a1 uint8) [8]uint8 {
	var p [8]uint8
	p[0], p[1] = a0, a1
	if a0 > a1 {
		for k := 1; k <= 6; k++ {
			p[k+1] = uint8(((7-k)*int(a0) + k*int(a1)) / 7)
		}
	} else {
		for k := 1; k <= 4; k++ {
			p[k+1] = uint8(((5-k)*int(a0) + k*int(a1)) / 5)
		}
		p[6], p[7] = 0, 255
	}
	return p
}

func decodeAlpha(src []byte, out *[16]uint8) {
	pal := alphaPalette(src[0], src[1])
	var bits uint64
	for i := 0; i < 6; i++ {
		bits |= uint64(src[2+i]) << (8 * i)
	}
	for i := range out {
		out[i] = pal[bits>>(3*i)&7]
	}
}

func encodeExplicitAlpha(px *block, dst []byte) {
	var bits uint64
	for i := range px {
		a4 := (uint64(px[i][3])*15 + 127) / 255
		bits |= a4 << (4 * i)
	}
	binary.LittleEndian.PutUint64(dst, bits)
}

func decodeExplicitAlpha(src []byte, px *block) {
	bits := binary.LittleEndian.Uint64(src)
	for i := range px {
		px[i][3] = uint8(bits>>(4*i)&0xf) * 17
	}
}

func channel(px *block, c int) *[16]uint8 {
	var out [16]uint8
	for i := range px {
		out[i] = px[i][c]
	}
	return &out
}

func encodeBlock(f Format, px *block, dst []byte) {
	switch f {
	case BC1RgbaUnorm:
		encodeColor(px, dst, true)
	case BC2RgbaUnorm:
		encodeExplicitAlpha(px, dst[:8])
		encodeColor(px, dst[8:], false)
	case BC3RgbaUnorm:
		encodeAlpha(channel(px, 3), dst[:8])
		encodeColor(px, dst[8:], false)
	case BC4RUnorm:
		encodeAlpha(channel(px, 0), dst)
	case BC5RgUnorm:
		encodeAlpha(channel(px, 0), dst[:8])
		encodeAlpha(channel(px, 1), dst[8:])
	}
}

func decodeBlock(f Format, src []byte, px *block) {
	switch f {
	case BC1RgbaUnorm:
		decodeColor(src, px, false)
	case BC2RgbaUnorm:
		decodeColor(src[8:], px, true)
		decodeExplicitAlpha(src[:8], px)
	case BC3RgbaUnorm:
		decodeColor(src[8:], px, true)
		var a [16]uint8
		decodeAlpha(src[:8], &a)
		for i := range px {
			px[i][3] = a[i]
		}
	case BC4RUnorm:
		var r [16]uint8
		decodeAlpha(src, &r)
		for i := range px {
			px[i] = [4]uint8{r[i], r[i], r[i], 255}
		}
	case BC5RgUnorm:
		var r, g [16]uint8
		decodeAlpha(src[:8], &r)
		decodeAlpha(src[8:], &g)
		for i := range px {
			px[i] = [4]uint8{r[i], g[i], 0, 255}
		}
	}
}
