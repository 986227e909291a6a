package hal

import (
	"image"
	"sync"

	"tinygo.org/x/drivers"

	"linefb/fb/panel"
	"linefb/fb/rgb565"
)

// Controller commands understood by the simulator besides the window and
// memory write commands.
const (
	cmdSWRESET = 0x01
	cmdINVOFF  = 0x20
	cmdINVON   = 0x21
	cmdDISPOFF = 0x28
	cmdDISPON  = 0x29
)

// SimStats counts what the simulated controller has received.
type SimStats struct {
	Commands int
	Pixels   int
	Writes   int // RAMWR commands
}

// SimPanel emulates an ST7789-style controller behind a 4-wire SPI link. It
// implements drivers.SPI; DC is sampled through the pin returned by DC.
//
// Panel memory is kept as big-endian RGB565, exactly as it arrives on the
// wire.
type SimPanel struct {
	mu sync.Mutex
	w  int
	h  int

	mem  []byte
	data bool // DC level

	cmd    byte
	params []byte

	x1, x2, y1, y2 int
	cx, cy         int
	half           byte
	haveHalf       bool

	on       bool
	inverted bool
	version  uint64
	stats    SimStats
	failNext error
	log      []byte
}

var _ drivers.SPI = (*SimPanel)(nil)

// NewSimPanel returns a blank w by h panel with the full-screen window.
func NewSimPanel(w, h int) *SimPanel {
	s := &SimPanel{w: w, h: h, mem: make([]byte, w*h*2)}
	s.reset()
	return s
}

func (s *SimPanel) reset() {
	s.x1, s.x2 = 0, s.w-1
	s.y1, s.y2 = 0, s.h-1
	s.cx, s.cy = 0, 0
	s.haveHalf = false
	s.on = false
	s.inverted = false
}

// Size returns the panel dimensions.
func (s *SimPanel) Size() (w, h int) { return s.w, s.h }

// DC returns the data/command select pin.
func (s *SimPanel) DC() Pin { return simDC{s} }

type simDC struct{ s *SimPanel }

func (p simDC) High() { p.s.setDC(true) }
func (p simDC) Low()  { p.s.setDC(false) }

func (s *SimPanel) setDC(data bool) {
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
}

// FailNext makes the next transfer fail with err.
func (s *SimPanel) FailNext(err error) {
	s.mu.Lock()
	s.failNext = err
	s.mu.Unlock()
}

// Tx feeds w to the controller. Reads are not supported and r is zeroed.
func (s *SimPanel) Tx(w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failNext; err != nil {
		s.failNext = nil
		return err
	}
	for i := range r {
		r[i] = 0
	}
	for _, b := range w {
		s.feed(b)
	}
	return nil
}

// Transfer feeds one byte.
func (s *SimPanel) Transfer(b byte) (byte, error) {
	return 0, s.Tx([]byte{b}, nil)
}

func (s *SimPanel) feed(b byte) {
	if !s.data {
		s.command(b)
		return
	}
	switch s.cmd {
	case panel.RAMWR:
		s.pixelByte(b)
	case panel.CASET, panel.RASET:
		s.params = append(s.params, b)
		if len(s.params) == 4 {
			start := int(s.params[0])<<8 | int(s.params[1])
			end := int(s.params[2])<<8 | int(s.params[3])
			if s.cmd == panel.CASET {
				s.x1, s.x2 = start, end
			} else {
				s.y1, s.y2 = start, end
			}
		}
	}
}

func (s *SimPanel) command(b byte) {
	s.cmd = b
	s.params = s.params[:0]
	s.haveHalf = false
	s.stats.Commands++
	s.log = append(s.log, b)
	switch b {
	case panel.RAMWR:
		s.cx, s.cy = s.x1, s.y1
		s.stats.Writes++
	case cmdSWRESET:
		s.reset()
	case cmdDISPON:
		s.on = true
	case cmdDISPOFF:
		s.on = false
	case cmdINVON:
		s.inverted = true
	case cmdINVOFF:
		s.inverted = false
	}
}

func (s *SimPanel) pixelByte(b byte) {
	if !s.haveHalf {
		s.half, s.haveHalf = b, true
		return
	}
	s.haveHalf = false
	if s.cx >= 0 && s.cx < s.w && s.cy >= 0 && s.cy < s.h {
		i := (s.cy*s.w + s.cx) * 2
		s.mem[i], s.mem[i+1] = s.half, b
	}
	s.stats.Pixels++
	s.version++

	s.cx++
	if s.cx > s.x2 {
		s.cx = s.x1
		s.cy++
		if s.cy > s.y2 {
			s.cy = s.y1
		}
	}
}

// Pixel returns the color stored at (x, y).
func (s *SimPanel) Pixel(x, y int) rgb565.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return 0
	}
	i := (y*s.w + x) * 2
	return rgb565.Color(s.mem[i])<<8 | rgb565.Color(s.mem[i+1])
}

// Version increases every time a pixel is written. Presenters use it to skip
// redraws.
func (s *SimPanel) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Stats returns the traffic counters.
func (s *SimPanel) Stats() SimStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// On reports whether DISPON has been received since the last reset.
func (s *SimPanel) On() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on
}

// CommandLog returns every command byte received so far.
func (s *SimPanel) CommandLog() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.log...)
}

// Inverted reports whether INVON has been received since the last reset.
// IPS glass needs it for colors to show as written.
func (s *SimPanel) Inverted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inverted
}

// RGBA copies panel memory into dst, allocating it when nil or mis-sized.
func (s *SimPanel) RGBA(dst *image.RGBA) *image.RGBA {
	if dst == nil || dst.Bounds().Dx() != s.w || dst.Bounds().Dy() != s.h {
		dst = image.NewRGBA(image.Rect(0, 0, s.w, s.h))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < s.w*s.h; i++ {
		c := rgb565.Color(s.mem[i*2])<<8 | rgb565.Color(s.mem[i*2+1])
		rgba := c.RGBA()
		j := i * 4
		dst.Pix[j+0] = rgba.R
		dst.Pix[j+1] = rgba.G
		dst.Pix[j+2] = rgba.B
		dst.Pix[j+3] = 0xFF
	}
	return dst
}
