// Package panel streams composited rows to an RGB565 display controller.
//
// The wire contract is the MIPI DCS subset used by ST7789-class controllers:
// CASET (0x2A) and RASET (0x2B) each take start-hi start-lo end-hi end-lo
// with an inclusive end, then RAMWR (0x2C) is followed by big-endian pixels.
package panel

import (
	"errors"
	"fmt"

	"tinygo.org/x/drivers/pixel"

	"linefb/fb/rgb565"
)

// Controller commands.
const (
	CASET = 0x2A
	RASET = 0x2B
	RAMWR = 0x2C
)

// CodeUnknown is reported when the bus error carries no code of its own.
const CodeUnknown = -1

// ErrBusy reports a transfer attempted while another is still outstanding.
var ErrBusy = errors.New("panel: transport busy")

// TransportError wraps a bus failure with its code.
type TransportError struct {
	Code int
	Op   string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("panel: %s failed (code %d): %v", e.Op, e.Code, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Bus is the command/data serial link to the controller.
//
// DataAsync starts sending p and returns; done is called exactly once when
// the transfer finishes. p must not be modified until then.
type Bus interface {
	Command(cmd byte, params ...byte) error
	Data(p []byte) error
	DataAsync(p []byte, done func(error)) error
}

// RowRenderer fills row with the pixels of display row y.
type RowRenderer interface {
	RenderRow(y int, row []rgb565.Color)
}

// Driver owns the bus and the two row buffers used for pipelining. It allows
// one outstanding transfer at a time.
type Driver struct {
	bus   Bus
	width int

	permit  chan struct{}
	done    chan error
	pending bool

	line []rgb565.Color
	rows [2]pixel.Image[pixel.RGB565BE]

	stats Stats
}

// Stats counts traffic since the driver was created.
type Stats struct {
	Flushes int
	Rows    int
	Bytes   int
}

// New returns a driver for rows of the given width.
func New(bus Bus, width int) *Driver {
	d := &Driver{
		bus:    bus,
		width:  width,
		permit: make(chan struct{}, 1),
		done:   make(chan error, 1),
		line:   make([]rgb565.Color, width),
	}
	for i := range d.rows {
		d.rows[i] = pixel.NewImage[pixel.RGB565BE](width, 1)
	}
	return d
}

// Stats returns the traffic counters.
func (d *Driver) Stats() Stats { return d.stats }

// Busy reports whether a transfer is outstanding.
func (d *Driver) Busy() bool { return len(d.permit) > 0 }

func (d *Driver) acquire() bool {
	select {
	case d.permit <- struct{}{}:
		return true
	default:
		return false
	}
}

func (d *Driver) release() { <-d.permit }

// Command sends a command with its parameters synchronously.
func (d *Driver) Command(cmd byte, params ...byte) error {
	if !d.acquire() {
		return ErrBusy
	}
	defer d.release()
	return d.command(cmd, params...)
}

func (d *Driver) command(cmd byte, params ...byte) error {
	if err := d.bus.Command(cmd, params...); err != nil {
		return wrap(fmt.Sprintf("command %#02x", cmd), err)
	}
	return nil
}

// SendAsync starts an asynchronous data transfer. It fails with ErrBusy if a
// transfer is already outstanding, leaving that transfer untouched. Wait
// blocks until the transfer completes.
//
// The permit is released by the bus completion callback, so a bus that
// reports an error from DataAsync itself must not call done.
func (d *Driver) SendAsync(p []byte) error {
	if !d.acquire() {
		return ErrBusy
	}
	if d.pending {
		// The previous transfer finished but nobody waited for it.
		d.pending = false
		if err := <-d.done; err != nil {
			d.release()
			return wrap("data", err)
		}
	}
	err := d.bus.DataAsync(p, func(err error) {
		d.release()
		d.done <- err
	})
	if err != nil {
		d.release()
		return wrap("data", err)
	}
	d.pending = true
	return nil
}

// Wait blocks until the transfer started by SendAsync completes and returns
// its result. It returns nil immediately when nothing was started.
func (d *Driver) Wait() error {
	if !d.pending {
		return nil
	}
	d.pending = false
	if err := <-d.done; err != nil {
		return wrap("data", err)
	}
	return nil
}

// SetWindow selects the controller memory rectangle starting at (x, y) of
// size w by h and opens it for writing.
func (d *Driver) SetWindow(x, y, w, h int) error {
	if !d.acquire() {
		return ErrBusy
	}
	defer d.release()
	return d.setWindow(x, y, w, h)
}

func (d *Driver) setWindow(x, y, w, h int) error {
	x1, x2 := uint16(x), uint16(x+w-1)
	y1, y2 := uint16(y), uint16(y+h-1)
	if err := d.command(CASET, byte(x1>>8), byte(x1), byte(x2>>8), byte(x2)); err != nil {
		return err
	}
	if err := d.command(RASET, byte(y1>>8), byte(y1), byte(y2>>8), byte(y2)); err != nil {
		return err
	}
	return d.command(RAMWR)
}

// Flush renders rows [y1, y2) from src and streams them to the controller.
// Row N+1 is composited while row N is on the bus; a buffer is only reused
// after its transfer has completed. Flush returns once the last row is sent.
func (d *Driver) Flush(src RowRenderer, y1, y2 int) error {
	if y2 <= y1 {
		return nil
	}
	if d.Busy() {
		return ErrBusy
	}
	if err := d.SetWindow(0, y1, d.width, y2-y1); err != nil {
		return err
	}

	for y := y1; y < y2; y++ {
		buf := d.rows[(y-y1)%2]
		src.RenderRow(y, d.line)
		for x, c := range d.line {
			buf.Set(x, 0, c.BE())
		}
		if err := d.Wait(); err != nil {
			return err
		}
		raw := buf.RawBuffer()
		if err := d.SendAsync(raw); err != nil {
			return err
		}
		d.stats.Rows++
		d.stats.Bytes += len(raw)
	}
	if err := d.Wait(); err != nil {
		return err
	}
	d.stats.Flushes++
	return nil
}

// FillScreen paints rows [0, height) with c without compositing.
func (d *Driver) FillScreen(c rgb565.Color, height int) error {
	return d.Flush(solid(c), 0, height)
}

type solid rgb565.Color

func (s solid) RenderRow(_ int, row []rgb565.Color) {
	for i := range row {
		row[i] = rgb565.Color(s)
	}
}

func wrap(op string, err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	code := CodeUnknown
	var c interface{ Code() int }
	if errors.As(err, &c) {
		code = c.Code()
	}
	return &TransportError{Code: code, Op: op, Err: err}
}
