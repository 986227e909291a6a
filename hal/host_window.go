//go:build !tinygo && cgo

package hal

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"linefb/internal/buildinfo"
)

// RunWindow opens a desktop window that shows the simulated panel memory.
// It blocks until the window closes.
func RunWindow(newApp func(HAL) func() error, scale int) error {
	if scale <= 0 {
		scale = 2
	}
	h := New().(*hostHAL)
	step := newApp(h)

	w, ht := h.sim.Size()
	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle("linefb (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(w*scale, ht*scale)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h       *hostHAL
	img     *image.RGBA
	panel   *ebiten.Image
	version uint64
	step    func() error
}

func (g *hostGame) Update() error {
	g.h.t.step(1)
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	sim := g.h.sim
	w, h := sim.Size()
	if g.panel == nil {
		g.panel = ebiten.NewImage(w, h)
		g.version = ^uint64(0)
	}
	if v := sim.Version(); v != g.version {
		g.img = sim.RGBA(g.img)
		g.panel.WritePixels(g.img.Pix)
		g.version = v
	}
	screen.DrawImage(g.panel, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.sim.Size()
}
