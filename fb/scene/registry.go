// Package scene keeps the retained list of drawable primitives and the dirty
// row region they produce.
//
// Primitives live in an arena addressed by slot index. Freed slots go on a
// stack and are reused by later adds; a reused slot always gets a fresh id.
// Paint order is insertion order.
package scene

import (
	"errors"
	"fmt"

	"linefb/fb/glyph"
	"linefb/fb/rgb565"
)

var (
	ErrInvalidSpec = errors.New("scene: invalid spec")
	ErrNotFound    = errors.New("scene: primitive not found")
)

// ID identifies a live primitive. Ids are never reused.
type ID uint32

// Kind is the primitive variant.
type Kind uint8

const (
	KindRect Kind = iota
	KindImage
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindRect:
		return "rect"
	case KindImage:
		return "image"
	case KindText:
		return "text"
	default:
		return "kind(?)"
	}
}

// Primitive is one drawable entry. The compositor reads it in place.
type Primitive struct {
	ID    ID
	Kind  Kind
	X, Y  int
	W, H  int
	Color rgb565.Color
	Align Align
	Data  []byte
	Text  []byte

	// Glyphs holds the parsed glyphs for images (one) and text (one per
	// id); Decoders carries RLE state for each across row calls.
	Glyphs   []glyph.Glyph
	Decoders []glyph.RowDecoder

	// Broken is set when the glyph data stopped decoding during a render.
	Broken bool
}

// Left is the effective left edge after alignment.
func (p *Primitive) Left() int {
	switch p.Align {
	case AlignCenter:
		return p.X - p.W/2
	case AlignRight:
		return p.X - p.W
	default:
		return p.X
	}
}

// Span is the row interval [y1, y2) the primitive covers.
func (p *Primitive) Span() (y1, y2 int) { return p.Y, p.Y + p.H }

// Covers reports whether row y is inside the primitive's span.
func (p *Primitive) Covers(y int) bool { return y >= p.Y && y < p.Y+p.H }

// Registry is the ordered primitive list. It is not safe for concurrent use.
type Registry struct {
	nodes  []Primitive
	free   []int
	order  []int
	lastID ID
	dirty  *Tracker
}

// NewRegistry returns an empty registry that reports touched rows to dirty.
func NewRegistry(dirty *Tracker) *Registry {
	return &Registry{dirty: dirty}
}

// Len is the number of live primitives.
func (r *Registry) Len() int { return len(r.order) }

// Add appends a primitive and returns its id. On error the registry is left
// unchanged.
func (r *Registry) Add(s Spec) (ID, error) {
	if !s.Has(FieldX | FieldY) {
		return 0, fmt.Errorf("%w: x and y are required", ErrInvalidSpec)
	}

	var p Primitive
	apply(&p, s)
	if err := derive(&p); err != nil {
		return 0, err
	}
	if p.Kind == KindRect && !s.Has(FieldW|FieldH) {
		return 0, fmt.Errorf("%w: rect needs w and h", ErrInvalidSpec)
	}

	var idx int
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = len(r.nodes)
		r.nodes = append(r.nodes, Primitive{})
	}
	// A reused slot keeps its decoder storage.
	p.Decoders = rebind(r.nodes[idx].Decoders[:0], p.Glyphs)
	r.lastID++
	p.ID = r.lastID
	r.nodes[idx] = p
	r.order = append(r.order, idx)
	r.markSpan(&r.nodes[idx])
	return p.ID, nil
}

// Update overwrites the fields present in s. Both the old and the new span
// are marked dirty.
func (r *Registry) Update(id ID, s Spec) error {
	pos := r.find(id)
	if pos < 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	cur := &r.nodes[r.order[pos]]

	next := *cur
	next.Broken = false
	apply(&next, s)
	if err := derive(&next); err != nil {
		return err
	}
	next.Decoders = rebind(cur.Decoders[:0], next.Glyphs)

	r.markSpan(cur)
	*cur = next
	r.markSpan(cur)
	return nil
}

// Remove unlinks a primitive and frees its slot.
func (r *Registry) Remove(id ID) error {
	pos := r.find(id)
	if pos < 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	idx := r.order[pos]
	r.markSpan(&r.nodes[idx])
	r.release(idx)
	r.order = append(r.order[:pos], r.order[pos+1:]...)
	return nil
}

// Reset frees every primitive and marks the whole screen dirty. Ids keep
// counting from where they were.
func (r *Registry) Reset() {
	for _, idx := range r.order {
		r.release(idx)
	}
	r.order = r.order[:0]
	r.dirty.MarkAll()
}

// Get returns a copy of the primitive with the given id.
func (r *Registry) Get(id ID) (Primitive, bool) {
	pos := r.find(id)
	if pos < 0 {
		return Primitive{}, false
	}
	return r.nodes[r.order[pos]], true
}

// Each calls fn for every primitive in paint order until fn returns false.
func (r *Registry) Each(fn func(p *Primitive) bool) {
	for _, idx := range r.order {
		if !fn(&r.nodes[idx]) {
			return
		}
	}
}

// IDs returns the live ids in paint order.
func (r *Registry) IDs() []ID {
	ids := make([]ID, len(r.order))
	for i, idx := range r.order {
		ids[i] = r.nodes[idx].ID
	}
	return ids
}

func (r *Registry) find(id ID) int {
	for pos, idx := range r.order {
		if r.nodes[idx].ID == id {
			return pos
		}
	}
	return -1
}

func (r *Registry) release(idx int) {
	dec := r.nodes[idx].Decoders[:0]
	r.nodes[idx] = Primitive{Decoders: dec}
	r.free = append(r.free, idx)
}

func (r *Registry) markSpan(p *Primitive) {
	y1, y2 := p.Span()
	r.dirty.Mark(y1, y2)
}

func apply(p *Primitive, s Spec) {
	if s.Has(FieldX) {
		p.X = s.X
	}
	if s.Has(FieldY) {
		p.Y = s.Y
	}
	if s.Has(FieldW) {
		p.W = s.W
	}
	if s.Has(FieldH) {
		p.H = s.H
	}
	if s.Has(FieldColor) {
		p.Color = s.Color
	}
	if s.Has(FieldAlign) {
		p.Align = s.Align
	}
	if s.Has(FieldData) {
		p.Data = s.Data
	}
	if s.Has(FieldText) {
		p.Text = s.Text
	}
}

// derive sets Kind, recomputes W/H from glyph data and parses the glyphs.
// It does not touch Decoders.
func derive(p *Primitive) error {
	if p.Align > AlignRight {
		return fmt.Errorf("%w: alignment %d", ErrInvalidSpec, p.Align)
	}
	switch {
	case p.Text != nil:
		if p.Data == nil {
			return fmt.Errorf("%w: text needs a glyph store", ErrInvalidSpec)
		}
		glyphs, m, err := glyph.Measure(p.Data, p.Text)
		if err != nil {
			return fmt.Errorf("%w: text: %w", ErrInvalidSpec, err)
		}
		p.Kind = KindText
		p.Glyphs = glyphs
		p.W, p.H = m.Width, m.Height
	case p.Data != nil:
		g, err := glyph.Find(p.Data, 0)
		if err == nil {
			err = g.Validate()
		}
		if err != nil {
			return fmt.Errorf("%w: image: %w", ErrInvalidSpec, err)
		}
		p.Kind = KindImage
		p.Glyphs = []glyph.Glyph{g}
		p.W, p.H = int(g.Width), int(g.Height)
	default:
		p.Kind = KindRect
		p.Glyphs = nil
	}
	return nil
}

// rebind points one decoder at each glyph, reusing dst's storage.
func rebind(dst []glyph.RowDecoder, glyphs []glyph.Glyph) []glyph.RowDecoder {
	for _, g := range glyphs {
		dst = append(dst, glyph.RowDecoder{})
		dst[len(dst)-1].Reset(g)
	}
	return dst
}
