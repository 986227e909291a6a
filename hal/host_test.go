//go:build !tinygo

package hal

import (
	"bytes"
	"context"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func TestHostHAL(t *testing.T) {
	var out bytes.Buffer
	h := newHost(&out)

	if w, ht := h.Display().Size(); w != 240 || ht != 240 {
		t.Fatalf("Size() = %dx%d, want 240x240", w, ht)
	}
	if !h.Panel().On() {
		t.Fatalf("host panel not initialised")
	}

	h.LED().High()
	h.LED().High()
	h.LED().Low()
	h.Logger().WriteLineBytes([]byte("hello"))
	if got, want := out.String(), "led: HIGH\nled: LOW\nhello\n"; got != want {
		t.Fatalf("log = %q, want %q", got, want)
	}
}

func TestRunHeadless(t *testing.T) {
	h := newHost(&bytes.Buffer{})
	steps := 0
	err := runHeadless(context.Background(), h, func(HAL) func() error {
		return func() error {
			steps++
			return nil
		}
	}, HeadlessConfig{Hz: 1000, Ticks: 3})
	if err != nil {
		t.Fatalf("runHeadless: %v", err)
	}
	if steps != 3 {
		t.Fatalf("steps = %d, want 3", steps)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = runHeadless(ctx, h, func(HAL) func() error { return nil }, HeadlessConfig{})
	if err != context.Canceled {
		t.Fatalf("runHeadless(cancelled) = %v", err)
	}
}

func TestHalfBlockStride(t *testing.T) {
	tests := []struct {
		w, h, cols, rows int
		want             int
	}{
		{240, 240, 240, 120, 1},
		{240, 240, 80, 24, 5},
		{240, 240, 120, 60, 2},
		{4, 4, 4, 2, 1},
	}
	for _, tt := range tests {
		if got := halfBlockStride(tt.w, tt.h, tt.cols, tt.rows); got != tt.want {
			t.Errorf("halfBlockStride(%d, %d, %d, %d) = %d, want %d", tt.w, tt.h, tt.cols, tt.rows, got, tt.want)
		}
	}
}

func TestDrawHalfBlocks(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer s.Fini()
	s.SetSize(4, 2)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			i := img.PixOffset(x, y)
			switch y {
			case 0:
				img.Pix[i] = 0xFF
			case 1:
				img.Pix[i+2] = 0xFF
			}
			img.Pix[i+3] = 0xFF
		}
	}
	drawHalfBlocks(s, img)
	s.Show()

	cells, w, _ := s.GetContents()
	top := cells[0]
	if string(top.Runes) != "▀" {
		t.Fatalf("cell(0,0) = %q", string(top.Runes))
	}
	fg, bg, _ := top.Style.Decompose()
	if r, g, b := fg.RGB(); r != 0xFF || g != 0 || b != 0 {
		t.Fatalf("fg = %d,%d,%d, want red", r, g, b)
	}
	if r, g, b := bg.RGB(); r != 0 || g != 0 || b != 0xFF {
		t.Fatalf("bg = %d,%d,%d, want blue", r, g, b)
	}
	if !strings.ContainsRune(string(cells[w].Runes), '▀') {
		t.Fatalf("second row not drawn")
	}
}

func TestHostTime(t *testing.T) {
	ht := newHostTime()
	clock := time.Unix(100, 0)
	ht.now = func() time.Time { return clock }

	ht.step(1)
	clock = clock.Add(2500 * time.Microsecond)
	ht.step(1)
	clock = clock.Add(600 * time.Microsecond)
	ht.step(1)

	var got []uint64
	for len(ht.Ticks()) > 0 {
		got = append(got, <-ht.Ticks())
	}
	// 1 to start, 2 for 2.5ms, 1 once the remainder reaches 3.1ms.
	if len(got) != 4 || got[3] != 4 {
		t.Fatalf("ticks = %v, want [1 2 3 4]", got)
	}
}
