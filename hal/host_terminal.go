//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/gdamore/tcell/v2"
)

// TerminalConfig controls the terminal preview runner.
type TerminalConfig struct {
	Hz    int
	Ticks uint64
}

// RunTerminal previews the simulated panel in the terminal. Every cell shows
// two panel rows with an upper half block; the image is decimated to fit.
// Esc, Ctrl-C or q quits.
func RunTerminal(ctx context.Context, newApp func(HAL) func() error, cfg TerminalConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 30
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid terminal hz: %d", cfg.Hz)
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer s.Fini()

	h := New().(*hostHAL)
	// The panel log would scroll over the preview.
	h.logger.w = discard{}
	step := newApp(h)

	quit := make(chan struct{})
	resized := make(chan struct{}, 1)
	go func() {
		for {
			switch ev := s.PollEvent().(type) {
			case nil:
				return
			case *tcell.EventResize:
				select {
				case resized <- struct{}{}:
				default:
				}
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					close(quit)
					return
				}
			}
		}
	}()

	t := time.NewTicker(d)
	defer t.Stop()

	var (
		img     *image.RGBA
		version = ^uint64(0)
		tick    uint64
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-quit:
			return nil
		case <-resized:
			s.Sync()
			version = ^uint64(0)
		case <-t.C:
			h.t.step(uint64(d / time.Millisecond))
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			if v := h.sim.Version(); v != version {
				img = h.sim.RGBA(img)
				drawHalfBlocks(s, img)
				s.Show()
				version = v
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// drawHalfBlocks paints img onto s, two source rows per cell.
func drawHalfBlocks(s tcell.Screen, img *image.RGBA) {
	cols, rows := s.Size()
	if cols <= 0 || rows <= 0 {
		return
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	stride := halfBlockStride(w, h, cols, rows)

	s.Clear()
	for cy := 0; cy*2*stride < h && cy < rows; cy++ {
		top := cy * 2 * stride
		bottom := top + stride
		for cx := 0; cx*stride < w && cx < cols; cx++ {
			x := cx * stride
			fg := rgbAt(img, x, top)
			bg := tcell.ColorBlack
			if bottom < h {
				bg = rgbAt(img, x, bottom)
			}
			s.SetContent(cx, cy, '▀', nil, tcell.StyleDefault.Foreground(fg).Background(bg))
		}
	}
}

// halfBlockStride returns the smallest source step that fits a w by h
// image into cols by rows cells.
func halfBlockStride(w, h, cols, rows int) int {
	stride := 1
	for (w+stride-1)/stride > cols || (h+2*stride-1)/(2*stride) > rows {
		stride++
	}
	return stride
}

func rgbAt(img *image.RGBA, x, y int) tcell.Color {
	i := img.PixOffset(x, y)
	return tcell.NewRGBColor(int32(img.Pix[i]), int32(img.Pix[i+1]), int32(img.Pix[i+2]))
}
