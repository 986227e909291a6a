// Package compose renders registry primitives into single pixel rows.
package compose

import (
	"linefb/fb/rgb565"
	"linefb/fb/scene"
)

// Compositor walks a registry once per output row. Rows must be requested in
// increasing order within a pass so glyph decoders can resume their RLE
// state; going back to an earlier row rewinds them.
type Compositor struct {
	reg        *scene.Registry
	width      int
	background rgb565.Color
}

// New returns a compositor for rows of the given width.
func New(reg *scene.Registry, width int, background rgb565.Color) *Compositor {
	return &Compositor{reg: reg, width: width, background: background}
}

// Width is the row length in pixels.
func (c *Compositor) Width() int { return c.width }

// Background is the color rows are cleared to.
func (c *Compositor) Background() rgb565.Color { return c.background }

// SetBackground changes the color rows are cleared to.
func (c *Compositor) SetBackground(bg rgb565.Color) { c.background = bg }

// RenderRow composites row y into row, which must hold at least Width
// pixels. Primitives whose glyph data stops decoding are flagged Broken and
// skipped from then on.
func (c *Compositor) RenderRow(y int, row []rgb565.Color) {
	row = row[:c.width]
	for i := range row {
		row[i] = c.background
	}
	c.reg.Each(func(p *scene.Primitive) bool {
		if p.Broken || !p.Covers(y) {
			return true
		}
		var err error
		switch p.Kind {
		case scene.KindRect:
			fill(row, p.Left(), p.W, p.Color)
		case scene.KindImage:
			_, err = p.Decoders[0].DecodeRow(y-p.Y, p.Color, row, p.Left())
		case scene.KindText:
			err = drawText(p, y, row)
		}
		if err != nil {
			p.Broken = true
		}
		return true
	})
}

func fill(row []rgb565.Color, x, w int, c rgb565.Color) {
	x1, x2 := x, x+w
	if x1 < 0 {
		x1 = 0
	}
	if x2 > len(row) {
		x2 = len(row)
	}
	for i := x1; i < x2; i++ {
		row[i] = c
	}
}

func drawText(p *scene.Primitive, y int, row []rgb565.Color) error {
	cursor := p.Left()
	for i := range p.Decoders {
		d := &p.Decoders[i]
		g := &p.Glyphs[i]
		adv, err := d.DecodeRow(y-p.Y-int(g.YOffset), p.Color, row, cursor+int(g.XOffset))
		if err != nil {
			return err
		}
		cursor += adv
	}
	return nil
}
