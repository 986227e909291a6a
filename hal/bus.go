package hal

import (
	"fmt"
	"sync"

	"tinygo.org/x/drivers"

	"linefb/fb/panel"
)

// BusPhase names the part of a transaction that failed. It doubles as the
// transport error code.
type BusPhase int

const (
	PhaseCommand BusPhase = iota + 1
	PhaseParams
	PhaseData
)

func (p BusPhase) String() string {
	switch p {
	case PhaseCommand:
		return "command"
	case PhaseParams:
		return "params"
	case PhaseData:
		return "data"
	default:
		return "phase(?)"
	}
}

// BusError is an SPI failure tagged with the phase it happened in.
type BusError struct {
	Phase BusPhase
	Err   error
}

func (e *BusError) Error() string { return fmt.Sprintf("spi %s: %v", e.Phase, e.Err) }
func (e *BusError) Unwrap() error { return e.Err }

// Code reports the phase as a numeric transport code.
func (e *BusError) Code() int { return int(e.Phase) }

// SPIBus drives a 4-wire display controller: DC low selects command bytes,
// DC high selects parameters and pixel data.
type SPIBus struct {
	mu  sync.Mutex
	spi drivers.SPI
	dc  Pin
	cs  Pin
	cmd [1]byte
}

var _ panel.Bus = (*SPIBus)(nil)

// NewSPIBus returns a bus on spi. cs may be nil when chip select is tied low.
func NewSPIBus(spi drivers.SPI, dc, cs Pin) *SPIBus {
	if cs == nil {
		cs = nopPin{}
	}
	cs.High()
	return &SPIBus{spi: spi, dc: dc, cs: cs}
}

func (b *SPIBus) Command(cmd byte, params ...byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cs.Low()
	defer b.cs.High()

	b.dc.Low()
	b.cmd[0] = cmd
	if err := b.spi.Tx(b.cmd[:], nil); err != nil {
		return &BusError{Phase: PhaseCommand, Err: err}
	}
	b.dc.High()
	if len(params) == 0 {
		return nil
	}
	if err := b.spi.Tx(params, nil); err != nil {
		return &BusError{Phase: PhaseParams, Err: err}
	}
	return nil
}

func (b *SPIBus) Data(p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cs.Low()
	defer b.cs.High()

	b.dc.High()
	if err := b.spi.Tx(p, nil); err != nil {
		return &BusError{Phase: PhaseData, Err: err}
	}
	return nil
}

// DataAsync sends p on its own goroutine and reports the result to done.
// On boards with SPI DMA the goroutine blocks in the transfer while the
// caller composites the next row.
func (b *SPIBus) DataAsync(p []byte, done func(error)) error {
	go func() {
		done(b.Data(p))
	}()
	return nil
}
