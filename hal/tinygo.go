//go:build tinygo && baremetal

package hal

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/st7789"
)

// Pico wiring for a 240x240 ST7789 module.
const (
	lcdSCK = machine.GP18
	lcdSDO = machine.GP19
	lcdCS  = machine.GP17
	lcdDC  = machine.GP16
	lcdRST = machine.GP20
	lcdBL  = machine.GP21

	lcdWidth  = 240
	lcdHeight = 240
)

type tinyGoHAL struct {
	logger *uartLogger
	led    machinePin
	disp   tinyGoDisplay
	t      *tinyGoTime
}

// New returns a Pico (RP2040/RP2350) HAL implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// LCD: SPI0 at 62.5 MHz, mode 0.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})
	logger := &uartLogger{uart: uart}

	spi := machine.SPI0
	if err := spi.Configure(machine.SPIConfig{
		Frequency: 62_500_000,
		SCK:       lcdSCK,
		SDO:       lcdSDO,
		Mode:      0,
	}); err != nil {
		logger.WriteLineString("lcd: spi configure: " + err.Error())
	}

	rst := outputPin(lcdRST)
	rst.Low()
	time.Sleep(10 * time.Millisecond)
	rst.High()
	time.Sleep(120 * time.Millisecond)

	bus := NewSPIBus(spi, outputPin(lcdDC), outputPin(lcdCS))
	if err := InitST7789(bus, st7789.MADCTL_RGB, time.Sleep); err != nil {
		logger.WriteLineString("lcd: " + err.Error())
	}
	outputPin(lcdBL).High()

	return &tinyGoHAL{
		logger: logger,
		led:    outputPin(machine.LED),
		disp:   tinyGoDisplay{bus: bus, w: lcdWidth, h: lcdHeight},
		t:      newTinyGoTime(),
	}
}

func (h *tinyGoHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHAL) LED() Pin         { return h.led }
func (h *tinyGoHAL) Display() Display { return h.disp }
func (h *tinyGoHAL) Time() Time       { return h.t }
