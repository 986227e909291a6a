package glyph

import (
	"errors"
	"testing"

	"linefb/fb/rgb565"
)

func solid(id, w, h uint8, cov uint8) Bitmap {
	c := make([]uint8, int(w)*int(h))
	for i := range c {
		c[i] = cov
	}
	return Bitmap{ID: id, Width: w, Height: h, XAdvance: w + 1, Coverage: c}
}

func mustStore(t *testing.T, bitmaps ...Bitmap) []byte {
	t.Helper()
	buf, err := EncodeAll(bitmaps...)
	if err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}
	return buf
}

func TestFindScansRecords(t *testing.T) {
	a := solid('A', 3, 2, 63)
	b := solid('B', 4, 5, 10)
	b.XOffset = -1
	b.YOffset = 2
	b.Kerning = []Kern{{Next: 'A', Offset: -2}}
	buf := mustStore(t, a, b)

	g, err := Find(buf, 'B')
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if g.Width != 4 || g.Height != 5 || g.XOffset != -1 || g.YOffset != 2 || g.XAdvance != 5 {
		t.Fatalf("Find('B') = %+v", g)
	}
	if len(g.Kerning) != 1 || g.Kerning[0] != (Kern{Next: 'A', Offset: -2}) {
		t.Fatalf("Kerning = %+v", g.Kerning)
	}
	if g.Bottom() != 7 {
		t.Fatalf("Bottom() = %d, want 7", g.Bottom())
	}
}

func TestFindErrors(t *testing.T) {
	buf := mustStore(t, solid(1, 2, 2, 5))

	if _, err := Find(buf, 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Find(missing) err = %v, want ErrNotFound", err)
	}

	bad := append([]byte(nil), buf...)
	bad[2] = 7
	if _, err := Find(bad, 1); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("Find(type 7) err = %v, want ErrUnsupportedType", err)
	}

	for n := 1; n < len(buf); n++ {
		_, err := Find(buf[:n], 1)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Find(buf[:%d]) err = %v, want ErrNotFound class", n, err)
		}
	}
}

func TestFindTruncatedRecordLength(t *testing.T) {
	buf := mustStore(t, solid(1, 2, 2, 5))
	// Claim a longer record than the buffer holds.
	buf[0], buf[1] = 0x01, 0x00
	if _, err := Find(buf, 1); !errors.Is(err, ErrTruncated) {
		t.Fatalf("Find err = %v, want ErrTruncated", err)
	}
}

func TestValidateTruncatedCoverage(t *testing.T) {
	g := Glyph{ID: 1, Width: 4, Height: 4, RLE: []byte{0x80 | 10, 5}}
	if err := g.Validate(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Validate err = %v, want ErrNotFound class", err)
	}
	g.RLE = []byte{0x80 | 10, 16}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	g.RLE = []byte{0x80 | 10}
	if err := g.Validate(); !errors.Is(err, ErrTruncated) {
		t.Fatalf("Validate(missing run length) err = %v, want ErrTruncated", err)
	}
}

func TestEncodeRLE(t *testing.T) {
	tests := []struct {
		in   []uint8
		want []byte
	}{
		{nil, []byte{}},
		{[]uint8{5}, []byte{5}},
		{[]uint8{5, 5, 5}, []byte{0x85, 3}},
		{[]uint8{0, 0, 63, 1}, []byte{0x80, 2, 63, 1}},
		{[]uint8{99, 63}, []byte{0x80 | 63, 2}},
	}
	for _, tt := range tests {
		got := EncodeRLE(tt.in)
		if string(got) != string(tt.want) {
			t.Errorf("EncodeRLE(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMeasure(t *testing.T) {
	a := solid('a', 3, 4, 63) // advance 4, bottom 4
	b := solid('b', 5, 2, 63) // advance 6
	b.YOffset = 5             // bottom 7
	buf := mustStore(t, a, b)

	glyphs, m, err := Measure(buf, []byte("abba"))
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if len(glyphs) != 4 {
		t.Fatalf("len(glyphs) = %d, want 4", len(glyphs))
	}
	if m.Width != 4+6+6+4 || m.Height != 7 {
		t.Fatalf("Measure = %+v, want {20 7}", m)
	}

	if _, _, err := Measure(buf, []byte("abz")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Measure(missing) err = %v", err)
	}
}

func TestDecodeRowRunsSpanRows(t *testing.T) {
	// 3x3 glyph: one run of 4 (cov 63) crosses the row 0/1 boundary.
	g := Glyph{Width: 3, Height: 3, XAdvance: 4, RLE: []byte{0x80 | 63, 4, 0x80, 3, 63, 0, 63}}
	want := [][]rgb565.Color{
		{rgb565.Red, rgb565.Red, rgb565.Red},
		{rgb565.Red, 0, 0},
		{0, rgb565.Red, 0},
	}

	d := NewRowDecoder(g)
	for row := 0; row < 3; row++ {
		dst := make([]rgb565.Color, 3)
		adv, err := d.DecodeRow(row, rgb565.Red, dst, 0)
		if err != nil {
			t.Fatalf("DecodeRow(%d): %v", row, err)
		}
		if adv != 4 {
			t.Fatalf("DecodeRow(%d) advance = %d, want 4", row, adv)
		}
		for x := range dst {
			if dst[x] != want[row][x] {
				t.Fatalf("row %d = %v, want %v", row, dst, want[row])
			}
		}
	}
}

func TestDecodeRowSkipsAndRewinds(t *testing.T) {
	cov := []uint8{
		1, 2,
		3, 4,
		63, 0,
	}
	buf := mustStore(t, Bitmap{ID: 0, Width: 2, Height: 3, XAdvance: 2, Coverage: cov})
	g, err := Find(buf, 0)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	d := NewRowDecoder(g)

	dst := make([]rgb565.Color, 2)
	if _, err := d.DecodeRow(2, rgb565.White, dst, 0); err != nil {
		t.Fatalf("DecodeRow(2): %v", err)
	}
	if dst[0] != rgb565.White || dst[1] != 0 {
		t.Fatalf("row 2 = %v", dst)
	}

	// Next pass starts from the top again.
	dst = make([]rgb565.Color, 2)
	if _, err := d.DecodeRow(0, rgb565.White, dst, 0); err != nil {
		t.Fatalf("DecodeRow(0): %v", err)
	}
	if dst[0] != rgb565.Blend(0, rgb565.White, 1) || dst[1] != rgb565.Blend(0, rgb565.White, 2) {
		t.Fatalf("row 0 = %v", dst)
	}
}

func TestDecodeRowClipsColumns(t *testing.T) {
	g := Glyph{Width: 4, Height: 1, XAdvance: 5, RLE: []byte{0x80 | 63, 4}}
	d := NewRowDecoder(g)
	dst := make([]rgb565.Color, 3)
	if _, err := d.DecodeRow(0, rgb565.Blue, dst, -2); err != nil {
		t.Fatalf("DecodeRow: %v", err)
	}
	if dst[0] != rgb565.Blue || dst[1] != rgb565.Blue || dst[2] != 0 {
		t.Fatalf("left clip = %v", dst)
	}

	dst = make([]rgb565.Color, 3)
	if _, err := d.DecodeRow(0, rgb565.Blue, dst, 2); err != nil {
		t.Fatalf("DecodeRow: %v", err)
	}
	if dst[0] != 0 || dst[1] != 0 || dst[2] != rgb565.Blue {
		t.Fatalf("right clip = %v", dst)
	}
}

func TestDecodeRowAdvanceOutsideGlyph(t *testing.T) {
	g := Glyph{Width: 2, Height: 2, XAdvance: 7, RLE: []byte{0x80 | 63, 4}}
	d := NewRowDecoder(g)
	for _, row := range []int{-5, -1, 0, 1, 2, 40} {
		dst := make([]rgb565.Color, 4)
		adv, err := d.DecodeRow(row, rgb565.Green, dst, 0)
		if err != nil {
			t.Fatalf("DecodeRow(%d): %v", row, err)
		}
		if adv != 7 {
			t.Fatalf("DecodeRow(%d) advance = %d, want 7", row, adv)
		}
	}
}

func TestDecodeRowTruncated(t *testing.T) {
	g := Glyph{Width: 4, Height: 2, XAdvance: 4, RLE: []byte{0x80 | 63, 5}}
	d := NewRowDecoder(g)
	dst := make([]rgb565.Color, 4)
	if _, err := d.DecodeRow(0, rgb565.Red, dst, 0); err != nil {
		t.Fatalf("DecodeRow(0): %v", err)
	}
	if _, err := d.DecodeRow(1, rgb565.Red, dst, 0); !errors.Is(err, ErrTruncated) {
		t.Fatalf("DecodeRow(1) err = %v, want ErrTruncated", err)
	}
}
