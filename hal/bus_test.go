package hal

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"linefb/fb/panel"
)

type levelPin struct {
	name string
	high bool
	log  *[]string
}

func (p *levelPin) High() {
	p.high = true
	*p.log = append(*p.log, p.name+"+")
}

func (p *levelPin) Low() {
	p.high = false
	*p.log = append(*p.log, p.name+"-")
}

type recordSPI struct {
	dc   *levelPin
	log  *[]string
	fail error
}

func (s *recordSPI) Tx(w, r []byte) error {
	if s.fail != nil {
		return s.fail
	}
	kind := "C"
	if s.dc.high {
		kind = "D"
	}
	*s.log = append(*s.log, fmt.Sprintf("%s%x", kind, w))
	return nil
}

func (s *recordSPI) Transfer(b byte) (byte, error) { return 0, s.Tx([]byte{b}, nil) }

func newRecordBus() (*SPIBus, *recordSPI, *[]string) {
	log := &[]string{}
	dc := &levelPin{name: "dc", log: log}
	cs := &levelPin{name: "cs", log: log}
	spi := &recordSPI{dc: dc, log: log}
	b := NewSPIBus(spi, dc, cs)
	*log = (*log)[:0]
	return b, spi, log
}

func TestSPIBusCommand(t *testing.T) {
	b, _, log := newRecordBus()
	if err := b.Command(0x2A, 0x00, 0x10, 0x00, 0x1F); err != nil {
		t.Fatalf("Command: %v", err)
	}
	want := []string{"cs-", "dc-", "C2a", "dc+", "D0010001f", "cs+"}
	if fmt.Sprint(*log) != fmt.Sprint(want) {
		t.Fatalf("Command() log = %v, want %v", *log, want)
	}

	*log = (*log)[:0]
	if err := b.Command(0x29); err != nil {
		t.Fatalf("Command: %v", err)
	}
	want = []string{"cs-", "dc-", "C29", "dc+", "cs+"}
	if fmt.Sprint(*log) != fmt.Sprint(want) {
		t.Fatalf("Command() log = %v, want %v", *log, want)
	}
}

func TestSPIBusData(t *testing.T) {
	b, _, log := newRecordBus()
	if err := b.Data([]byte{0xF8, 0x00}); err != nil {
		t.Fatalf("Data: %v", err)
	}
	want := []string{"cs-", "dc+", "Df800", "cs+"}
	if fmt.Sprint(*log) != fmt.Sprint(want) {
		t.Fatalf("Data() log = %v, want %v", *log, want)
	}

	done := make(chan error, 1)
	if err := b.DataAsync([]byte{1, 2}, func(err error) { done <- err }); err != nil {
		t.Fatalf("DataAsync: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("DataAsync done: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("DataAsync never completed")
	}
}

func TestSPIBusErrors(t *testing.T) {
	b, spi, _ := newRecordBus()
	boom := errors.New("boom")
	spi.fail = boom

	tests := []struct {
		name  string
		call  func() error
		phase BusPhase
	}{
		{"command", func() error { return b.Command(0x2C) }, PhaseCommand},
		{"data", func() error { return b.Data([]byte{0}) }, PhaseData},
	}
	for _, tt := range tests {
		err := tt.call()
		var be *BusError
		if !errors.As(err, &be) {
			t.Fatalf("%s: err = %v, want *BusError", tt.name, err)
		}
		if be.Phase != tt.phase || be.Code() != int(tt.phase) || !errors.Is(err, boom) {
			t.Fatalf("%s: err = %#v", tt.name, be)
		}
	}
}

type recordCommands struct {
	cmds   []byte
	params map[byte][]byte
}

func (r *recordCommands) Command(cmd byte, params ...byte) error {
	if r.params == nil {
		r.params = map[byte][]byte{}
	}
	r.cmds = append(r.cmds, cmd)
	r.params[cmd] = append([]byte(nil), params...)
	return nil
}

func (r *recordCommands) Data(p []byte) error { return nil }

func (r *recordCommands) DataAsync(p []byte, done func(error)) error {
	done(nil)
	return nil
}

var _ panel.Bus = (*recordCommands)(nil)

func TestInitST7789(t *testing.T) {
	var r recordCommands
	var slept []time.Duration
	if err := InitST7789(&r, 0x40, func(d time.Duration) { slept = append(slept, d) }); err != nil {
		t.Fatalf("InitST7789: %v", err)
	}
	if len(r.cmds) != len(st7789Init) || r.cmds[0] != 0x11 || r.cmds[len(r.cmds)-1] != 0x21 {
		t.Fatalf("commands = % x", r.cmds)
	}
	if got := r.params[0x36]; len(got) != 1 || got[0] != 0x40 {
		t.Fatalf("MADCTL params = % x, want 40", got)
	}
	if got := r.params[0x3A]; len(got) != 1 || got[0] != 0x55 {
		t.Fatalf("COLMOD params = % x, want 55", got)
	}
	if len(slept) != 1 || slept[0] != 120*time.Millisecond {
		t.Fatalf("sleeps = %v", slept)
	}
}

func TestInitST7789Error(t *testing.T) {
	sim := NewSimPanel(4, 4)
	sim.FailNext(errors.New("no ack"))
	err := InitST7789(NewSPIBus(sim, sim.DC(), nil), 0, nil)
	var be *BusError
	if !errors.As(err, &be) || be.Phase != PhaseCommand {
		t.Fatalf("InitST7789() err = %v, want command BusError", err)
	}
}
