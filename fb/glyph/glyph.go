// Package glyph reads bitmap glyph stores.
//
// A store is a sequence of self-describing records:
//
//	len:u16be type:u8(=11) id:u8 w:u8 h:u8 xoff:i8 yoff:i8 xadv:u8 nkern:u8
//	nkern*(u8,u8) kerning pairs
//	RLE coverage, row-major, until the end of the record
//
// len counts the bytes that follow the length field. Coverage bytes with the
// high bit set carry a 6-bit value in the low bits and are followed by a run
// length byte; bytes with the high bit clear are a single pixel.
//
// Every read is bounds-checked: a truncated store reports ErrTruncated
// instead of reading past the end of the buffer.
package glyph

import (
	"errors"
	"fmt"
)

// TypeBitmap is the only supported record type.
const TypeBitmap = 11

// HeaderSize is the fixed part of a record after the length field.
const HeaderSize = 8

var (
	// ErrNotFound reports a glyph id that is absent from the store.
	ErrNotFound = errors.New("glyph: not found")
	// ErrUnsupportedType reports a record whose type byte is not TypeBitmap.
	ErrUnsupportedType = errors.New("glyph: unsupported record type")
	// ErrTruncated reports a record or coverage stream that ends early. It
	// is classified as ErrNotFound.
	ErrTruncated = fmt.Errorf("%w: truncated store", ErrNotFound)
)

// Kern is one kerning pair. Kerning tables are parsed but not applied.
type Kern struct {
	Next   uint8
	Offset int8
}

// Glyph is a parsed record header plus its coverage stream.
type Glyph struct {
	ID       uint8
	Width    uint8
	Height   uint8
	XOffset  int8
	YOffset  int8
	XAdvance uint8
	Kerning  []Kern

	// RLE is the coverage stream. It aliases the store buffer.
	RLE []byte
}

// Bottom is the lowest row the glyph touches relative to its line top.
func (g *Glyph) Bottom() int { return int(g.Height) + int(g.YOffset) }

// Pixels is width*height.
func (g *Glyph) Pixels() int { return int(g.Width) * int(g.Height) }

type cursor struct {
	buf []byte
	off int
}

func (c *cursor) remaining() int { return len(c.buf) - c.off }

func (c *cursor) u8() (uint8, error) {
	if c.off+1 > len(c.buf) {
		return 0, ErrTruncated
	}
	v := c.buf[c.off]
	c.off++
	return v, nil
}

func (c *cursor) u16() (uint16, error) {
	if c.off+2 > len(c.buf) {
		return 0, ErrTruncated
	}
	v := uint16(c.buf[c.off])<<8 | uint16(c.buf[c.off+1])
	c.off += 2
	return v, nil
}

func (c *cursor) take(n int) ([]byte, error) {
	if n < 0 || c.off+n > len(c.buf) {
		return nil, ErrTruncated
	}
	b := c.buf[c.off : c.off+n : c.off+n]
	c.off += n
	return b, nil
}

// Find scans buf for the record with the given id.
func Find(buf []byte, id uint8) (Glyph, error) {
	var found Glyph
	ok := false
	err := walk(buf, func(g Glyph) bool {
		if g.ID == id {
			found, ok = g, true
			return false
		}
		return true
	})
	if err != nil {
		return Glyph{}, err
	}
	if !ok {
		return Glyph{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return found, nil
}

// All parses every record in buf.
func All(buf []byte) ([]Glyph, error) {
	var out []Glyph
	err := walk(buf, func(g Glyph) bool {
		out = append(out, g)
		return true
	})
	return out, err
}

func walk(buf []byte, fn func(Glyph) bool) error {
	c := cursor{buf: buf}
	for c.remaining() > 0 {
		n, err := c.u16()
		if err != nil {
			return err
		}
		rec, err := c.take(int(n))
		if err != nil {
			return err
		}
		g, err := parseRecord(rec)
		if err != nil {
			return err
		}
		if !fn(g) {
			return nil
		}
	}
	return nil
}

func parseRecord(rec []byte) (Glyph, error) {
	c := cursor{buf: rec}
	typ, err := c.u8()
	if err != nil {
		return Glyph{}, err
	}
	if typ != TypeBitmap {
		return Glyph{}, fmt.Errorf("%w: %d", ErrUnsupportedType, typ)
	}
	var hdr [HeaderSize - 1]uint8
	for i := range hdr {
		if hdr[i], err = c.u8(); err != nil {
			return Glyph{}, err
		}
	}
	g := Glyph{
		ID:       hdr[0],
		Width:    hdr[1],
		Height:   hdr[2],
		XOffset:  int8(hdr[3]),
		YOffset:  int8(hdr[4]),
		XAdvance: hdr[5],
	}
	if nk := int(hdr[6]); nk > 0 {
		raw, err := c.take(nk * 2)
		if err != nil {
			return Glyph{}, err
		}
		g.Kerning = make([]Kern, nk)
		for i := range g.Kerning {
			g.Kerning[i] = Kern{Next: raw[i*2], Offset: int8(raw[i*2+1])}
		}
	}
	g.RLE = rec[c.off:len(rec):len(rec)]
	return g, nil
}

// Validate checks that the coverage stream holds at least width*height
// pixels.
func (g *Glyph) Validate() error {
	var d RowDecoder
	d.Reset(*g)
	for i := 0; i < g.Pixels(); i++ {
		if _, err := d.next(); err != nil {
			return fmt.Errorf("glyph %d: %w", g.ID, err)
		}
	}
	return nil
}

// Metrics summarizes the size of a run of glyphs laid out left to right.
type Metrics struct {
	Width  int // sum of XAdvance
	Height int // max of Height+YOffset
}

// Measure looks up each id in buf and returns the glyphs (validated) and
// the layout metrics of the run.
func Measure(buf []byte, ids []byte) ([]Glyph, Metrics, error) {
	glyphs := make([]Glyph, 0, len(ids))
	var m Metrics
	for _, id := range ids {
		g, err := Find(buf, id)
		if err != nil {
			return nil, Metrics{}, err
		}
		if err := g.Validate(); err != nil {
			return nil, Metrics{}, err
		}
		glyphs = append(glyphs, g)
		m.Width += int(g.XAdvance)
		if b := g.Bottom(); b > m.Height {
			m.Height = b
		}
	}
	return glyphs, m, nil
}
