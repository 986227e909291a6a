// Package fb is a retained-mode scene compositor for small RGB565 panels.
//
// Callers add rectangles, glyph images and text runs to a Display, mutate
// them by id and call Flush; only the rows touched since the previous flush
// are composited and sent over the bus.
//
// A Display is owned by one goroutine. Mutations must not run concurrently
// with Flush.
package fb

import (
	"fmt"

	"linefb/fb/compose"
	"linefb/fb/panel"
	"linefb/fb/rgb565"
	"linefb/fb/scene"
)

const (
	DefaultWidth  = 240
	DefaultHeight = 240
)

// Options configures a Display. Zero sizes select the defaults.
type Options struct {
	Width      int
	Height     int
	Background rgb565.Color
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// Display ties the registry, compositor, dirty tracker and transport driver
// together.
type Display struct {
	opts  Options
	dirty *scene.Tracker
	reg   *scene.Registry
	comp  *compose.Compositor
	drv   *panel.Driver
}

// New returns a display drawing to bus. The scene starts empty with nothing
// dirty.
func New(bus panel.Bus, opts Options) *Display {
	opts = opts.withDefaults()
	dirty := scene.NewTracker(opts.Height)
	reg := scene.NewRegistry(dirty)
	return &Display{
		opts:  opts,
		dirty: dirty,
		reg:   reg,
		comp:  compose.New(reg, opts.Width, opts.Background),
		drv:   panel.New(bus, opts.Width),
	}
}

// Size returns the panel dimensions.
func (d *Display) Size() (w, h int) { return d.opts.Width, d.opts.Height }

// Init retires every primitive and marks the whole panel dirty so the next
// Flush repaints it with the background.
func (d *Display) Init() { d.reg.Reset() }

// Add appends a primitive and returns its id.
func (d *Display) Add(s scene.Spec) (scene.ID, error) { return d.reg.Add(s) }

// Update applies a partial spec to the primitive with the given id.
func (d *Display) Update(id scene.ID, s scene.Spec) error { return d.reg.Update(id, s) }

// Remove deletes a primitive.
func (d *Display) Remove(id scene.ID) error { return d.reg.Remove(id) }

// Reset drops every primitive. Ids are not reused afterwards.
func (d *Display) Reset() { d.reg.Reset() }

// Len is the number of live primitives.
func (d *Display) Len() int { return d.reg.Len() }

// Get returns a copy of a primitive.
func (d *Display) Get(id scene.ID) (scene.Primitive, bool) { return d.reg.Get(id) }

// IDs lists live primitives in paint order.
func (d *Display) IDs() []scene.ID { return d.reg.IDs() }

// Dirty returns the rows the next Flush would send.
func (d *Display) Dirty() (y1, y2 int) { return d.dirty.Peek() }

// Flush composites and sends the dirty rows. With nothing dirty it does not
// touch the bus. If the transfer fails the rows stay dirty so a later Flush
// retries them.
func (d *Display) Flush() error {
	y1, y2 := d.dirty.Take()
	if y2 <= y1 {
		return nil
	}
	if err := d.drv.Flush(d.comp, y1, y2); err != nil {
		d.dirty.Mark(y1, y2)
		return fmt.Errorf("fb: flush rows [%d,%d): %w", y1, y2, err)
	}
	return nil
}

// Background returns the color behind all primitives.
func (d *Display) Background() rgb565.Color { return d.comp.Background() }

// SetBackground changes the background and marks the whole screen dirty.
func (d *Display) SetBackground(c rgb565.Color) {
	if c == d.comp.Background() {
		return
	}
	d.comp.SetBackground(c)
	d.dirty.MarkAll()
}

// Stats returns transport counters.
func (d *Display) Stats() panel.Stats { return d.drv.Stats() }

// Driver exposes the transport for controller-specific commands.
func (d *Display) Driver() *panel.Driver { return d.drv }

// Color packs an 8-bit RGB triple.
func Color(r, g, b uint8) rgb565.Color { return rgb565.Pack(r, g, b) }

// RenderRow composites row y into row without touching the bus or the dirty
// region.
func (d *Display) RenderRow(y int, row []rgb565.Color) { d.comp.RenderRow(y, row) }

// Snapshot composites the full frame into dst, row-major, growing it when it
// is too small.
func (d *Display) Snapshot(dst []rgb565.Color) []rgb565.Color {
	w, h := d.opts.Width, d.opts.Height
	if cap(dst) < w*h {
		dst = make([]rgb565.Color, w*h)
	}
	dst = dst[:w*h]
	for y := 0; y < h; y++ {
		d.comp.RenderRow(y, dst[y*w:(y+1)*w])
	}
	return dst
}
