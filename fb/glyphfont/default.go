package glyphfont

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	// DefaultFont is the font Default rasterises.
	DefaultFont tinyfont.Fonter = &proggy.TinySZ8pt7b
	// Face7x13 is the face Fixed7x13 rasterises.
	Face7x13 font.Face = basicfont.Face7x13
)

var (
	defaultOnce  sync.Once
	defaultStore []byte
	defaultErr   error
)

// Default returns the ASCII range of DefaultFont as a glyph store. The store
// is built once and shared.
func Default() ([]byte, error) {
	defaultOnce.Do(func() {
		bitmaps, err := FromFonter(DefaultFont, ASCII())
		if err != nil {
			defaultErr = err
			return
		}
		defaultStore, defaultErr = Store(bitmaps)
	})
	return defaultStore, defaultErr
}

// Fixed7x13 returns the ASCII range of the x/image 7x13 bitmap face.
func Fixed7x13() ([]byte, error) {
	bitmaps, err := FromFace(Face7x13, ASCII())
	if err != nil {
		return nil, err
	}
	return Store(bitmaps)
}
