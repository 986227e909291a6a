package glyph

import (
	"errors"
	"fmt"
)

// maxRecord is the largest record body the u16 length field can describe.
const maxRecord = 0xFFFF

var errRecordTooLarge = errors.New("glyph: record too large")

// Bitmap is an uncompressed glyph used to build stores.
type Bitmap struct {
	ID       uint8
	Width    uint8
	Height   uint8
	XOffset  int8
	YOffset  int8
	XAdvance uint8
	Kerning  []Kern

	// Coverage is row-major, one 0..63 value per pixel.
	Coverage []uint8
}

// EncodeRLE compresses coverage values. Runs of two or more pixels use the
// (0x80|cov, n) form; single pixels are written as literals.
func EncodeRLE(cov []uint8) []byte {
	out := make([]byte, 0, len(cov))
	for i := 0; i < len(cov); {
		v := cov[i]
		if v > 63 {
			v = 63
		}
		n := 1
		for i+n < len(cov) && n < 0xFF && clamp63(cov[i+n]) == v {
			n++
		}
		if n == 1 {
			out = append(out, v)
		} else {
			out = append(out, 0x80|v, byte(n))
		}
		i += n
	}
	return out
}

func clamp63(v uint8) uint8 {
	if v > 63 {
		return 63
	}
	return v
}

// Encode appends the record for b to dst.
func Encode(dst []byte, b Bitmap) ([]byte, error) {
	if len(b.Coverage) != int(b.Width)*int(b.Height) {
		return dst, fmt.Errorf("glyph %d: coverage has %d pixels, want %d", b.ID, len(b.Coverage), int(b.Width)*int(b.Height))
	}
	if len(b.Kerning) > 0xFF {
		return dst, fmt.Errorf("glyph %d: %d kerning pairs", b.ID, len(b.Kerning))
	}
	rle := EncodeRLE(b.Coverage)
	n := HeaderSize + 2*len(b.Kerning) + len(rle)
	if n > maxRecord {
		return dst, fmt.Errorf("glyph %d: %w (%d bytes)", b.ID, errRecordTooLarge, n)
	}
	dst = append(dst,
		byte(n>>8), byte(n),
		TypeBitmap, b.ID, b.Width, b.Height,
		byte(b.XOffset), byte(b.YOffset), b.XAdvance, byte(len(b.Kerning)),
	)
	for _, k := range b.Kerning {
		dst = append(dst, k.Next, byte(k.Offset))
	}
	return append(dst, rle...), nil
}

// EncodeAll builds a store from bitmaps in order.
func EncodeAll(bitmaps ...Bitmap) ([]byte, error) {
	var buf []byte
	for _, b := range bitmaps {
		var err error
		if buf, err = Encode(buf, b); err != nil {
			return nil, err
		}
	}
	return buf, nil
}
