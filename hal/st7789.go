package hal

import (
	"fmt"
	"time"

	"linefb/fb/panel"
)

type initStep struct {
	cmd    byte
	params []byte
	delay  time.Duration
}

var st7789Gamma = []byte{0x70, 0x15, 0x20, 0x15, 0x10, 0x09, 0x48, 0x33, 0x53, 0x0B, 0x19, 0x15, 0x2A, 0x2F}

// st7789Init brings a 240x240 ST7789 from reset to display-on with 16-bit
// pixels. MADCTL is filled in by InitST7789.
var st7789Init = []initStep{
	{cmd: 0x11, delay: 120 * time.Millisecond},             // SLPOUT
	{cmd: 0x36, params: []byte{0}},                         // MADCTL
	{cmd: 0x3A, params: []byte{0x55}},                      // COLMOD 16bpp
	{cmd: 0xB2, params: []byte{0x0C, 0x0C, 0, 0x33, 0x33}}, // PORCTRL
	{cmd: 0xB7, params: []byte{0}},                         // GCTRL
	{cmd: 0xBB, params: []byte{0x3E}},                      // VCOMS
	{cmd: 0xC2, params: []byte{1}},                         // VDVVRHEN
	{cmd: 0xC3, params: []byte{0x19}},                      // VRHS
	{cmd: 0xC4, params: []byte{0x20}},                      // VDVS
	{cmd: 0xC5, params: []byte{0x0F}},                      // VCMOFSET
	{cmd: 0xD0, params: []byte{0xA4, 0xA1}},                // PWCTRL1
	{cmd: 0xE0, params: st7789Gamma},                       // PVGAMCTRL
	{cmd: 0xE1, params: st7789Gamma},                       // NVGAMCTRL
	{cmd: 0x29},                                            // DISPON
	{cmd: 0x21},                                            // INVON
}

// InitST7789 runs the controller power-up sequence over bus. sleep is called
// for the settle delays; pass nil to skip them (simulated panels).
func InitST7789(bus panel.Bus, madctl byte, sleep func(time.Duration)) error {
	for _, s := range st7789Init {
		params := s.params
		if s.cmd == 0x36 {
			params = []byte{madctl}
		}
		if err := bus.Command(s.cmd, params...); err != nil {
			return fmt.Errorf("st7789 init %#02x: %w", s.cmd, err)
		}
		if s.delay > 0 && sleep != nil {
			sleep(s.delay)
		}
	}
	return nil
}
