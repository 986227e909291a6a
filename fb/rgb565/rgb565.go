// Package rgb565 packs and blends 16-bit 5-6-5 colors.
//
// A Color is the native word rrrrrggggggbbbbb. Byte order only matters on the
// wire, where the controller expects big-endian pixels (see BE).
package rgb565

import (
	"image/color"
	"math/bits"

	"tinygo.org/x/drivers/pixel"
)

// Color is a packed RGB565 word.
type Color uint16

// Common colors.
const (
	Black Color = 0x0000
	White Color = 0xFFFF
	Red   Color = 0xF800
	Green Color = 0x07E0
	Blue  Color = 0x001F
)

// Pack keeps the top 5/6/5 bits of 8-bit channels.
func Pack(r, g, b uint8) Color {
	return Color(uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b>>3))
}

// Pack6 packs channels that are already reduced to 5-bit red, 6-bit green
// and 5-bit blue. Out-of-range bits are masked.
func Pack6(r5, g6, b5 uint8) Color {
	return Color(uint16(r5&0x1F)<<11 | uint16(g6&0x3F)<<5 | uint16(b5&0x1F))
}

// Unpack returns the reduced-precision channels (5, 6, 5 bits).
func (c Color) Unpack() (r5, g6, b5 uint8) {
	return uint8(c>>11) & 0x1F, uint8(c>>5) & 0x3F, uint8(c) & 0x1F
}

// RGBA widens the color to 8-bit channels, replicating the high bits so that
// full intensity maps to 0xFF.
func (c Color) RGBA() color.RGBA {
	r, g, b := c.Unpack()
	return color.RGBA{
		R: r<<3 | r>>2,
		G: g<<2 | g>>4,
		B: b<<3 | b>>2,
		A: 0xFF,
	}
}

// BE returns the color in the big-endian in-memory layout used by SPI
// panels.
func (c Color) BE() pixel.RGB565BE {
	return pixel.RGB565BE(bits.ReverseBytes16(uint16(c)))
}

// FromBE is the inverse of BE.
func FromBE(p pixel.RGB565BE) Color {
	return Color(bits.ReverseBytes16(uint16(p)))
}

// FromRGBA converts any color.Color, ignoring alpha.
func FromRGBA(c color.Color) Color {
	r, g, b, _ := c.RGBA()
	return Pack(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// MaxCoverage is the coverage value that selects the target color.
const MaxCoverage = 63

// Blend mixes dst toward target by a 6-bit coverage value.
//
// Each channel is (ncl*dst + cl*target) >> 8 with cl = cov<<2 and
// ncl = (63-cov)<<2. Coverage 0 and 63 short-circuit to the exact endpoints.
func Blend(dst, target Color, cov uint8) Color {
	if cov == 0 {
		return dst
	}
	if cov >= MaxCoverage {
		return target
	}
	cl := uint16(cov) << 2
	ncl := uint16(MaxCoverage-cov) << 2

	or, og, ob := dst.Unpack()
	cr, cg, cb := target.Unpack()
	r := (ncl*uint16(or) + cl*uint16(cr)) >> 8
	g := (ncl*uint16(og) + cl*uint16(cg)) >> 8
	b := (ncl*uint16(ob) + cl*uint16(cb)) >> 8
	return Pack6(uint8(r), uint8(g), uint8(b))
}
