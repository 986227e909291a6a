package glyph

import "linefb/fb/rgb565"

// RowDecoder decodes one glyph row at a time.
//
// RLE runs span row boundaries, so the decoder keeps its stream position
// between calls. Rows must be requested in increasing order within a pass;
// asking for a row at or before the last decoded one rewinds to the start
// of the glyph.
type RowDecoder struct {
	g Glyph

	pos int   // next byte in g.RLE
	row int   // next row to decode
	run int   // pixels left in the current run
	cov uint8 // coverage of the current run
}

// NewRowDecoder returns a decoder positioned at the first row of g.
func NewRowDecoder(g Glyph) *RowDecoder {
	d := &RowDecoder{}
	d.Reset(g)
	return d
}

// Reset switches the decoder to g and rewinds it.
func (d *RowDecoder) Reset(g Glyph) {
	d.g = g
	d.rewind()
}

// Glyph returns the glyph being decoded.
func (d *RowDecoder) Glyph() Glyph { return d.g }

func (d *RowDecoder) rewind() {
	d.pos = 0
	d.row = 0
	d.run = 0
	d.cov = 0
}

func (d *RowDecoder) next() (uint8, error) {
	if d.run == 0 {
		if d.pos >= len(d.g.RLE) {
			return 0, ErrTruncated
		}
		b := d.g.RLE[d.pos]
		d.pos++
		if b&0x80 != 0 {
			if d.pos >= len(d.g.RLE) {
				return 0, ErrTruncated
			}
			n := int(d.g.RLE[d.pos])
			d.pos++
			if n == 0 {
				n = 1
			}
			d.cov = b & 0x3F
			d.run = n
		} else {
			if b > rgb565.MaxCoverage {
				b = rgb565.MaxCoverage
			}
			d.cov = b
			d.run = 1
		}
	}
	d.run--
	return d.cov, nil
}

func (d *RowDecoder) skipRow() error {
	for i := 0; i < int(d.g.Width); i++ {
		if _, err := d.next(); err != nil {
			return err
		}
	}
	d.row++
	return nil
}

// DecodeRow blends glyph row `row` into dst starting at column x, tinting
// covered pixels toward c. Columns outside [0, len(dst)) are clipped.
//
// It returns the glyph's XAdvance whether or not row lies inside the glyph,
// so callers can lay out text without drawing it.
func (d *RowDecoder) DecodeRow(row int, c rgb565.Color, dst []rgb565.Color, x int) (int, error) {
	adv := int(d.g.XAdvance)
	if row < 0 || row >= int(d.g.Height) {
		return adv, nil
	}
	if row < d.row {
		d.rewind()
	}
	for d.row < row {
		if err := d.skipRow(); err != nil {
			return adv, err
		}
	}

	w := len(dst)
	for i := 0; i < int(d.g.Width); i++ {
		cov, err := d.next()
		if err != nil {
			return adv, err
		}
		if cov == 0 {
			continue
		}
		px := x + i
		if px < 0 || px >= w {
			continue
		}
		dst[px] = rgb565.Blend(dst[px], c, cov)
	}
	d.row++
	return adv, nil
}
