package app

import (
	"image"
	"image/color"
	"math"

	"linefb/fb"
	"linefb/fb/glyph"
	"linefb/fb/glyphfont"
	"linefb/fb/rgb565"
	"linefb/fb/scene"
	"linefb/fb/sceneconf"
)

// Asset names scene files can use without shipping glyph files.
const (
	FontAsset = "font"
	IconAsset = "icon"
)

type chainAssets struct {
	builtin sceneconf.AssetMap
	next    sceneconf.Assets
}

// builtinAssets serves the default font and the timer icon, falling back to
// next for every other name.
func builtinAssets(font []byte, next sceneconf.Assets) (sceneconf.Assets, error) {
	icon, err := timerIcon(64)
	if err != nil {
		return nil, err
	}
	return chainAssets{
		builtin: sceneconf.AssetMap{FontAsset: font, IconAsset: icon},
		next:    next,
	}, nil
}

func (c chainAssets) Asset(name string) ([]byte, error) {
	if b, ok := c.builtin[name]; ok {
		return b, nil
	}
	return c.next.Asset(name)
}

// defaultScene lays out the demo: four squares, a timer icon, a title and a
// running clock. It returns the ids of the animated primitives.
func defaultScene(d *fb.Display, font []byte) (map[string]scene.ID, error) {
	icon, err := timerIcon(64)
	if err != nil {
		return nil, err
	}
	w, h := d.Size()

	entries := []struct {
		name string
		spec scene.Spec
	}{
		{"", scene.Rect(50, 50, 140, 140, fb.Color(50, 50, 0))},
		{"", scene.Rect(25, 150, 50, 50, fb.Color(255, 0, 0))},
		{SpriteName, scene.Rect(150, 25, 50, 50, fb.Color(0, 0, 255))},
		{"", scene.Rect(150, 150, 50, 50, fb.Color(0, 255, 0))},
		{"", scene.Image(33, 33, icon, fb.Color(0, 255, 255))},
		{"", scene.Text(w/2, h-30, font, "linefb", rgb565.White).WithAlign(scene.AlignCenter)},
		{ClockName, scene.Text(w-4, 4, font, "0.0s", fb.Color(255, 255, 0)).WithAlign(scene.AlignRight)},
	}
	names := make(map[string]scene.ID)
	for _, e := range entries {
		id, err := d.Add(e.spec)
		if err != nil {
			return names, err
		}
		if e.name != "" {
			names[e.name] = id
		}
	}
	return names, nil
}

// timerIcon draws an anti-aliased clock face of the given size as a glyph
// store holding glyph 0.
func timerIcon(size int) ([]byte, error) {
	img := image.NewAlpha(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	outer := c - 1
	const ring = 3.0

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)+0.5-c, float64(y)+0.5-c
			dist := math.Hypot(dx, dy)
			a := ring/2 - math.Abs(dist-(outer-ring/2)) + 0.5
			// Hands: twelve o'clock and three o'clock.
			if math.Abs(dx) < 1.5 && dy < 0 && dist < outer*0.7 {
				a = 1
			}
			if math.Abs(dy) < 1.5 && dx > 0 && dist < outer*0.5 {
				a = 1
			}
			img.SetAlpha(x, y, color.Alpha{A: uint8(math.Round(clamp01(a) * 255))})
		}
	}
	b, err := glyphfont.FromImage(img, 0, 0, glyphfont.Alpha)
	if err != nil {
		return nil, err
	}
	return glyphfont.Store([]glyph.Bitmap{b})
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
