//go:build tinygo && !baremetal

package hal

import (
	"fmt"
	"runtime"
	"time"

	"linefb/fb/panel"
)

type tinyGoHostHAL struct {
	logger *tinyGoHostLogger
	led    *tinyGoHostLED
	sim    *SimPanel
	bus    *SPIBus
	t      *tinyGoHostTime
}

// New returns a TinyGo-on-host HAL implementation.
//
// This is used by `tinygo run` targets like linux/wasm where there is no MCU
// pin mapping. The panel is simulated in memory.
func New() HAL {
	l := &tinyGoHostLogger{}
	sim := NewSimPanel(240, 240)
	bus := NewSPIBus(sim, sim.DC(), nil)
	if err := InitST7789(bus, 0, nil); err != nil {
		l.WriteLineString("lcd: " + err.Error())
	}
	return &tinyGoHostHAL{
		logger: l,
		led:    &tinyGoHostLED{logger: l},
		sim:    sim,
		bus:    bus,
		t:      newTinyGoHostTime(),
	}
}

func (h *tinyGoHostHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHostHAL) LED() Pin         { return h.led }
func (h *tinyGoHostHAL) Display() Display { return tinyGoHostDisplay{sim: h.sim, bus: h.bus} }
func (h *tinyGoHostHAL) Time() Time       { return h.t }

type tinyGoHostDisplay struct {
	sim *SimPanel
	bus *SPIBus
}

func (d tinyGoHostDisplay) Bus() panel.Bus   { return d.bus }
func (d tinyGoHostDisplay) Size() (w, h int) { return d.sim.Size() }

type tinyGoHostTime struct {
	ch  chan uint64
	seq uint64
}

func newTinyGoHostTime() *tinyGoHostTime {
	t := &tinyGoHostTime{ch: make(chan uint64, 16)}
	go func() {
		ticker := time.NewTicker(1 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			t.seq++
			select {
			case t.ch <- t.seq:
			default:
			}
		}
	}()
	return t
}

func (t *tinyGoHostTime) Ticks() <-chan uint64 { return t.ch }

type tinyGoHostLogger struct{}

func (l *tinyGoHostLogger) WriteLineString(s string) {
	println(s)
}

func (l *tinyGoHostLogger) WriteLineBytes(b []byte) {
	println(string(b))
}

type tinyGoHostLED struct {
	on     bool
	logger *tinyGoHostLogger
}

func (l *tinyGoHostLED) High() {
	l.on = true
	l.logger.WriteLineString(fmt.Sprintf("led: HIGH (tinygo/%s)", runtime.GOOS))
}

func (l *tinyGoHostLED) Low() {
	l.on = false
	l.logger.WriteLineString(fmt.Sprintf("led: LOW (tinygo/%s)", runtime.GOOS))
}
