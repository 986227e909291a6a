package app

import (
	"fmt"
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"linefb/fb"
	"linefb/fb/scene"
)

const sweepSeconds = 1.5

// animator slides the sprite back and forth across the screen and keeps the
// clock text current. Every change goes through Display.Update, so only the
// rows it touches are flushed.
type animator struct {
	d *fb.Display

	sprite    scene.ID
	hasSprite bool
	from, to  float32
	x, y      int
	tween     *gween.Tween

	clock    scene.ID
	hasClock bool
	elapsed  float32
	shown    int
}

// newAnimator returns nil when the scene has nothing to animate.
func newAnimator(d *fb.Display, names map[string]scene.ID) *animator {
	a := &animator{d: d, shown: -1}
	if id, ok := names[SpriteName]; ok {
		if p, ok := d.Get(id); ok {
			w, _ := d.Size()
			a.sprite, a.hasSprite = id, true
			a.from = float32(p.X)
			a.to = float32(w - p.X - p.W)
			if a.to == a.from {
				a.to = 0
			}
			a.x, a.y = p.X, p.Y
			a.tween = gween.New(a.from, a.to, sweepSeconds, ease.InOutQuad)
		}
	}
	if id, ok := names[ClockName]; ok {
		if p, ok := d.Get(id); ok && p.Kind == scene.KindText {
			a.clock, a.hasClock = id, true
		}
	}
	if !a.hasSprite && !a.hasClock {
		return nil
	}
	return a
}

func (a *animator) update(dt float32) error {
	if dt <= 0 {
		return nil
	}
	if a.hasSprite {
		x, done := a.tween.Update(dt)
		if done {
			a.from, a.to = a.to, a.from
			a.tween = gween.New(a.from, a.to, sweepSeconds, ease.InOutQuad)
		}
		if nx := int(math.Round(float64(x))); nx != a.x {
			a.x = nx
			if err := a.d.Update(a.sprite, scene.Spec{}.WithPos(a.x, a.y)); err != nil {
				return fmt.Errorf("sprite: %w", err)
			}
		}
	}
	if a.hasClock {
		a.elapsed += dt
		tenths := int(a.elapsed * 10)
		if tenths != a.shown {
			a.shown = tenths
			text := fmt.Sprintf("%d.%ds", tenths/10, tenths%10)
			if err := a.d.Update(a.clock, scene.Spec{}.WithText([]byte(text))); err != nil {
				return fmt.Errorf("clock: %w", err)
			}
		}
	}
	return nil
}
