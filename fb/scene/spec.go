package scene

import "linefb/fb/rgb565"

// Align selects how X anchors a primitive horizontally.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "align(?)"
	}
}

// Field is a bit set naming the Spec fields that carry a value.
type Field uint16

const (
	FieldX Field = 1 << iota
	FieldY
	FieldW
	FieldH
	FieldColor
	FieldAlign
	FieldData
	FieldText
)

// Spec describes a primitive, or a partial update to one. Only fields named
// in Fields are applied.
type Spec struct {
	Fields Field

	X, Y  int
	W, H  int
	Color rgb565.Color
	Align Align

	// Data is a glyph store. Images draw glyph 0; text looks glyph ids up
	// here. The registry keeps a reference, not a copy.
	Data []byte
	// Text is a string of glyph ids.
	Text []byte
}

// Has reports whether every field in f is set.
func (s Spec) Has(f Field) bool { return s.Fields&f == f }

func (s Spec) WithPos(x, y int) Spec {
	s.X, s.Y = x, y
	s.Fields |= FieldX | FieldY
	return s
}

func (s Spec) WithSize(w, h int) Spec {
	s.W, s.H = w, h
	s.Fields |= FieldW | FieldH
	return s
}

func (s Spec) WithColor(c rgb565.Color) Spec {
	s.Color = c
	s.Fields |= FieldColor
	return s
}

func (s Spec) WithAlign(a Align) Spec {
	s.Align = a
	s.Fields |= FieldAlign
	return s
}

func (s Spec) WithData(data []byte) Spec {
	s.Data = data
	s.Fields |= FieldData
	return s
}

func (s Spec) WithText(text []byte) Spec {
	s.Text = text
	s.Fields |= FieldText
	return s
}

// Rect describes a flat filled rectangle.
func Rect(x, y, w, h int, c rgb565.Color) Spec {
	return Spec{}.WithPos(x, y).WithSize(w, h).WithColor(c)
}

// Image describes glyph 0 of data tinted toward c.
func Image(x, y int, data []byte, c rgb565.Color) Spec {
	return Spec{}.WithPos(x, y).WithColor(c).WithData(data)
}

// Text describes a run of glyph ids rendered from font.
func Text(x, y int, font []byte, text string, c rgb565.Color) Spec {
	return Spec{}.WithPos(x, y).WithColor(c).WithData(font).WithText([]byte(text))
}
