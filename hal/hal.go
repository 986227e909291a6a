package hal

import (
	"errors"

	"linefb/fb/panel"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// Pin is a digital output: status LED, panel DC or chip select.
type Pin interface {
	High()
	Low()
}

var ErrNotImplemented = errors.New("not implemented")

// Display is the panel attached to the board.
type Display interface {
	// Bus is the command/data link the compositor streams rows over.
	Bus() panel.Bus
	Size() (w, h int)
}

// Time provides a base tick stream.
//
// The tick duration is platform-defined (one millisecond on every current
// board).
type Time interface {
	Ticks() <-chan uint64
}

// HAL provides the only contact point between the app and the outside world.
type HAL interface {
	Logger() Logger
	LED() Pin
	Display() Display
	Time() Time
}

type nopPin struct{}

func (nopPin) High() {}
func (nopPin) Low()  {}
