//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"linefb/fb/panel"
)

// Host panels are the size of the 1.3" ST7789 boards the firmware targets.
const (
	hostWidth  = 240
	hostHeight = 240
)

type hostHAL struct {
	logger *hostLogger
	led    *hostLED
	sim    *SimPanel
	bus    *SPIBus
	t      *hostTime
}

// New returns a host HAL implementation. The display is a simulated
// controller reached over an in-memory SPI link.
func New() HAL {
	return newHost(os.Stdout)
}

func newHost(w io.Writer) *hostHAL {
	logger := &hostLogger{w: w}
	sim := NewSimPanel(hostWidth, hostHeight)
	bus := NewSPIBus(sim, sim.DC(), nil)
	if err := InitST7789(bus, 0, nil); err != nil {
		logger.WriteLineString("lcd: " + err.Error())
	}
	return &hostHAL{
		logger: logger,
		led:    &hostLED{logger: logger},
		sim:    sim,
		bus:    bus,
		t:      newHostTime(),
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) LED() Pin         { return h.led }
func (h *hostHAL) Display() Display { return hostDisplay{sim: h.sim, bus: h.bus} }
func (h *hostHAL) Time() Time       { return h.t }

// Panel returns the simulated controller behind the host display.
func (h *hostHAL) Panel() *SimPanel { return h.sim }

type hostDisplay struct {
	sim *SimPanel
	bus *SPIBus
}

func (d hostDisplay) Bus() panel.Bus   { return d.bus }
func (d hostDisplay) Size() (w, h int) { return d.sim.Size() }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostLED struct {
	mu     sync.Mutex
	on     bool
	logger *hostLogger
}

func (l *hostLED) High() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.on {
		return
	}
	l.on = true
	l.logger.WriteLineString("led: HIGH")
}

func (l *hostLED) Low() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.on {
		return
	}
	l.on = false
	l.logger.WriteLineString("led: LOW")
}
