package panel

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"linefb/fb/rgb565"
)

type codedErr struct{ code int }

func (e codedErr) Error() string { return "bus fault" }
func (e codedErr) Code() int     { return e.code }

// fakeBus records traffic. Transfers numbered below holdBelow stay pending
// until complete is called; the rest finish on their own goroutine.
type fakeBus struct {
	mu        sync.Mutex
	cmds      [][]byte
	data      [][]byte
	addrs     []*byte
	pending   []func(error)
	holdBelow int

	cmdErr   error
	asyncErr error
}

func (b *fakeBus) Command(cmd byte, params ...byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cmdErr != nil {
		return b.cmdErr
	}
	b.cmds = append(b.cmds, append([]byte{cmd}, params...))
	return nil
}

func (b *fakeBus) Data(p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, append([]byte(nil), p...))
	return nil
}

func (b *fakeBus) DataAsync(p []byte, done func(error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.data)
	b.data = append(b.data, append([]byte(nil), p...))
	if len(p) > 0 {
		b.addrs = append(b.addrs, &p[0])
	}
	if n < b.holdBelow {
		b.pending = append(b.pending, done)
		return nil
	}
	err := b.asyncErr
	go done(err)
	return nil
}

func (b *fakeBus) inFlight() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *fakeBus) complete(err error) {
	b.mu.Lock()
	done := b.pending[0]
	b.pending = b.pending[1:]
	b.mu.Unlock()
	done(err)
}

type rowFunc func(y int, row []rgb565.Color)

func (f rowFunc) RenderRow(y int, row []rgb565.Color) { f(y, row) }

func gradient(y int, row []rgb565.Color) {
	for x := range row {
		row[x] = rgb565.Color(y<<8 | x)
	}
}

func TestFlushWindowAndPixels(t *testing.T) {
	bus := &fakeBus{}
	d := New(bus, 4)
	if err := d.Flush(rowFunc(gradient), 10, 13); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	wantCmds := [][]byte{
		{CASET, 0, 0, 0, 3},
		{RASET, 0, 10, 0, 12},
		{RAMWR},
	}
	if len(bus.cmds) != len(wantCmds) {
		t.Fatalf("commands = %x, want %x", bus.cmds, wantCmds)
	}
	for i := range wantCmds {
		if !bytes.Equal(bus.cmds[i], wantCmds[i]) {
			t.Fatalf("command %d = %x, want %x", i, bus.cmds[i], wantCmds[i])
		}
	}

	if len(bus.data) != 3 {
		t.Fatalf("rows sent = %d, want 3", len(bus.data))
	}
	for i, got := range bus.data {
		y := byte(10 + i)
		want := []byte{y, 0, y, 1, y, 2, y, 3}
		if !bytes.Equal(got, want) {
			t.Fatalf("row %d bytes = %x, want %x", y, got, want)
		}
	}

	st := d.Stats()
	if st.Flushes != 1 || st.Rows != 3 || st.Bytes != 24 {
		t.Fatalf("Stats() = %+v", st)
	}
}

func TestFlushWideWindowAddresses(t *testing.T) {
	bus := &fakeBus{}
	d := New(bus, 320)
	if err := d.Flush(rowFunc(gradient), 255, 257); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if want := []byte{CASET, 0, 0, 0x01, 0x3F}; !bytes.Equal(bus.cmds[0], want) {
		t.Fatalf("CASET = %x, want %x", bus.cmds[0], want)
	}
	if want := []byte{RASET, 0, 0xFF, 0x01, 0x00}; !bytes.Equal(bus.cmds[1], want) {
		t.Fatalf("RASET = %x, want %x", bus.cmds[1], want)
	}
}

func TestFlushEmptyRegionIsNoop(t *testing.T) {
	bus := &fakeBus{}
	d := New(bus, 4)
	if err := d.Flush(rowFunc(gradient), 5, 5); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(bus.cmds) != 0 || len(bus.data) != 0 {
		t.Fatalf("empty flush produced traffic: %d cmds, %d rows", len(bus.cmds), len(bus.data))
	}
}

func TestFlushOverlapsRenderAndTransfer(t *testing.T) {
	const rows = 6
	bus := &fakeBus{holdBelow: rows - 1}
	d := New(bus, 8)

	var overlapped int
	render := func(y int, row []rgb565.Color) {
		gradient(y, row)
		if y == 0 {
			return
		}
		// Row y-1 is still on the bus while row y is composited.
		if bus.inFlight() == 1 && d.Busy() {
			overlapped++
		}
		bus.complete(nil)
	}
	if err := d.Flush(rowFunc(render), 0, rows); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if overlapped != rows-1 {
		t.Fatalf("overlapped rows = %d, want %d", overlapped, rows-1)
	}

	// Rows alternate between exactly two buffers.
	if len(bus.addrs) != rows {
		t.Fatalf("transfers = %d, want %d", len(bus.addrs), rows)
	}
	if bus.addrs[0] == bus.addrs[1] {
		t.Fatalf("consecutive rows share a buffer")
	}
	for i := 2; i < rows; i++ {
		if bus.addrs[i] != bus.addrs[i%2] {
			t.Fatalf("row %d used a third buffer", i)
		}
	}
	for i, got := range bus.data {
		if got[0] != byte(i) {
			t.Fatalf("row %d sent with first byte %d", i, got[0])
		}
	}
}

func TestSendAsyncBusy(t *testing.T) {
	bus := &fakeBus{holdBelow: 1}
	d := New(bus, 4)

	first := []byte{1, 2, 3}
	if err := d.SendAsync(first); err != nil {
		t.Fatalf("SendAsync: %v", err)
	}
	if err := d.SendAsync([]byte{9}); !errors.Is(err, ErrBusy) {
		t.Fatalf("second SendAsync err = %v, want ErrBusy", err)
	}
	if err := d.Flush(rowFunc(gradient), 0, 1); !errors.Is(err, ErrBusy) {
		t.Fatalf("Flush err = %v, want ErrBusy", err)
	}
	if err := d.Command(RAMWR); !errors.Is(err, ErrBusy) {
		t.Fatalf("Command err = %v, want ErrBusy", err)
	}
	if len(bus.data) != 1 || len(bus.cmds) != 0 {
		t.Fatalf("rejected calls reached the bus: %d data, %d cmds", len(bus.data), len(bus.cmds))
	}

	bus.complete(nil)
	if err := d.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !bytes.Equal(bus.data[0], first) {
		t.Fatalf("first transfer = %x, want %x", bus.data[0], first)
	}
	if err := d.SendAsync([]byte{9}); err != nil {
		t.Fatalf("SendAsync after completion: %v", err)
	}
	if err := d.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestTransportErrorCodes(t *testing.T) {
	bus := &fakeBus{asyncErr: codedErr{code: 5}}
	d := New(bus, 4)

	err := d.Flush(rowFunc(gradient), 0, 3)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Flush err = %v, want *TransportError", err)
	}
	if te.Code != 5 {
		t.Fatalf("Code = %d, want 5", te.Code)
	}
	if d.Busy() {
		t.Fatalf("permit still held after failed transfer")
	}

	bus.asyncErr = nil
	bus.cmdErr = errors.New("no ack")
	err = d.Flush(rowFunc(gradient), 0, 3)
	if !errors.As(err, &te) || te.Code != CodeUnknown {
		t.Fatalf("Flush err = %v, want TransportError with unknown code", err)
	}

	bus.cmdErr = nil
	if err := d.Flush(rowFunc(gradient), 0, 3); err != nil {
		t.Fatalf("Flush after recovery: %v", err)
	}
}

func TestFillScreen(t *testing.T) {
	bus := &fakeBus{}
	d := New(bus, 2)
	if err := d.FillScreen(rgb565.Red, 3); err != nil {
		t.Fatalf("FillScreen: %v", err)
	}
	for i, got := range bus.data {
		if want := []byte{0xF8, 0, 0xF8, 0}; !bytes.Equal(got, want) {
			t.Fatalf("row %d = %x, want %x", i, got, want)
		}
	}
}
