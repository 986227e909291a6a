// Package glyphfont rasterises fonts and images into glyph stores.
//
// Glyph ids are one byte, so only runes below 256 can be stored. Text
// glyphs are positioned relative to the line top: a glyph's YOffset is its
// first row below the top of the tallest glyph in the set.
package glyphfont

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"

	"linefb/fb/glyph"
	"linefb/fb/rgb565"
)

var ErrRuneRange = errors.New("glyphfont: rune does not fit a glyph id")

// ASCII returns the printable ASCII runes.
func ASCII() []rune {
	rs := make([]rune, 0, 95)
	for r := rune(' '); r <= '~'; r++ {
		rs = append(rs, r)
	}
	return rs
}

// Store encodes bitmaps into a glyph store.
func Store(bitmaps []glyph.Bitmap) ([]byte, error) {
	buf, err := glyph.EncodeAll(bitmaps...)
	if err != nil {
		return nil, fmt.Errorf("glyphfont: %w", err)
	}
	return buf, nil
}

// capture is a drivers.Displayer that records the coverage of one glyph.
type capture struct {
	w, h int16
	cov  []uint8
}

var _ drivers.Displayer = (*capture)(nil)

func newCapture(w, h int) *capture {
	return &capture{w: int16(w), h: int16(h), cov: make([]uint8, w*h)}
}

func (c *capture) Size() (x, y int16) { return c.w, c.h }

// SetPixel maps the drawn color's brightness to coverage, so fonts that dim
// their edge pixels keep their antialiasing.
func (c *capture) SetPixel(x, y int16, px color.RGBA) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	m := px.R
	if px.G > m {
		m = px.G
	}
	if px.B > m {
		m = px.B
	}
	c.cov[int(y)*int(c.w)+int(x)] = uint8((int(m)*rgb565.MaxCoverage + 127) / 255)
}

func (c *capture) Display() error { return nil }

// FromFonter draws each rune of f into a coverage bitmap.
func FromFonter(f tinyfont.Fonter, runes []rune) ([]glyph.Bitmap, error) {
	infos := make([]tinyfont.GlyphInfo, len(runes))
	top := 0
	for i, r := range runes {
		if r < 0 || r > 0xFF {
			return nil, fmt.Errorf("%w: %U", ErrRuneRange, r)
		}
		infos[i] = f.GetGlyph(r).Info()
		if infos[i].Height > 0 && int(infos[i].YOffset) < top {
			top = int(infos[i].YOffset)
		}
	}

	out := make([]glyph.Bitmap, len(runes))
	for i, r := range runes {
		info := infos[i]
		c := newCapture(int(info.Width), int(info.Height))
		// Glyphs are fetched again because some Fonters reuse one Glypher.
		f.GetGlyph(r).Draw(c, -int16(info.XOffset), -int16(info.YOffset), color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
		out[i] = glyph.Bitmap{
			ID:       uint8(r),
			Width:    info.Width,
			Height:   info.Height,
			XOffset:  info.XOffset,
			XAdvance: info.XAdvance,
			Coverage: c.cov,
		}
		if info.Height > 0 {
			yoff := int(info.YOffset) - top
			if yoff > 127 {
				return nil, fmt.Errorf("glyphfont: rune %U sits %d rows below the line top", r, yoff)
			}
			out[i].YOffset = int8(yoff)
		}
	}
	return out, nil
}

// FromFace rasterises each rune of face using its alpha masks.
func FromFace(face font.Face, runes []rune) ([]glyph.Bitmap, error) {
	ascent := face.Metrics().Ascent.Ceil()
	dot := fixed.P(0, ascent)

	out := make([]glyph.Bitmap, 0, len(runes))
	for _, r := range runes {
		if r < 0 || r > 0xFF {
			return nil, fmt.Errorf("%w: %U", ErrRuneRange, r)
		}
		dr, mask, mp, adv, ok := face.Glyph(dot, r)
		if !ok {
			continue
		}
		w, h := dr.Dx(), dr.Dy()
		if w > 0xFF || h > 0xFF || dr.Min.X < -128 || dr.Min.X > 127 || dr.Min.Y < -128 || dr.Min.Y > 127 {
			return nil, fmt.Errorf("glyphfont: rune %U is too large (%v)", r, dr)
		}
		cov := make([]uint8, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				_, _, _, a := mask.At(mp.X+x, mp.Y+y).RGBA()
				cov[y*w+x] = quantize(a)
			}
		}
		out = append(out, glyph.Bitmap{
			ID:       uint8(r),
			Width:    uint8(w),
			Height:   uint8(h),
			XOffset:  int8(dr.Min.X),
			YOffset:  int8(dr.Min.Y),
			XAdvance: uint8(adv.Round()),
			Coverage: cov,
		})
	}
	return out, nil
}

// Mode selects how image pixels become coverage.
type Mode uint8

const (
	// Alpha uses the pixel's opacity.
	Alpha Mode = iota
	// Luma uses the pixel's premultiplied brightness, so black and
	// transparent both read as empty.
	Luma
)

// FromImage scales img to w by h and converts it to glyph 0. Zero w or h
// keeps the source size.
func FromImage(img image.Image, w, h int, mode Mode) (glyph.Bitmap, error) {
	b := img.Bounds()
	if w <= 0 {
		w = b.Dx()
	}
	if h <= 0 {
		h = b.Dy()
	}
	if w > 0xFF || h > 0xFF {
		return glyph.Bitmap{}, fmt.Errorf("glyphfont: image %dx%d exceeds 255x255", w, h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}

	cov := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, a := dst.At(x, y).RGBA()
			v := a
			if mode == Luma {
				v = (299*r + 587*g + 114*bl) / 1000
			}
			cov[y*w+x] = quantize(v)
		}
	}
	return glyph.Bitmap{
		Width:    uint8(w),
		Height:   uint8(h),
		XAdvance: uint8(w),
		Coverage: cov,
	}, nil
}

// quantize maps a 16-bit intensity to 0..63.
func quantize(v uint32) uint8 {
	return uint8((v*rgb565.MaxCoverage + 0x7FFF) / 0xFFFF)
}
