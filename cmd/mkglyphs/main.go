package main

import (
	"bufio"
	"flag"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"

	"linefb/fb/glyph"
	"linefb/fb/glyphfont"
	"linefb/fb/rgb565"
)

func main() {
	var (
		mode    = flag.String("mode", "font", "font|image|dump.")
		fontArg = flag.String("font", "proggy", "proggy|7x13 (font mode).")
		chars   = flag.String("chars", "", "Runes to include (font mode, default printable ASCII).")
		inPath  = flag.String("in", "", "Input image (.png/.bmp) or glyph store (dump mode).")
		outPath = flag.String("out", "", "Output glyph store.")
		width   = flag.Int("w", 0, "Scale the image to this width (image mode).")
		height  = flag.Int("h", 0, "Scale the image to this height (image mode).")
		luma    = flag.Bool("luma", false, "Take coverage from brightness instead of alpha (image mode).")
		preview = flag.Bool("preview", false, "Print glyph bitmaps (dump mode).")
	)
	flag.Parse()

	usage := "usage: mkglyphs -mode font [-font proggy|7x13] [-chars abc] -out font.glyphs\n" +
		"       mkglyphs -mode image -in icon.png [-w 64 -h 64] [-luma] -out icon.glyphs\n" +
		"       mkglyphs -mode dump -in store.glyphs [-preview]"

	var (
		store []byte
		err   error
	)
	switch strings.ToLower(*mode) {
	case "font":
		if *outPath == "" {
			fatalf("%s", usage)
		}
		store, err = buildFont(*fontArg, *chars)
	case "image":
		if *inPath == "" || *outPath == "" {
			fatalf("%s", usage)
		}
		m := glyphfont.Alpha
		if *luma {
			m = glyphfont.Luma
		}
		store, err = buildImageFile(*inPath, *width, *height, m)
	case "dump":
		if *inPath == "" {
			fatalf("%s", usage)
		}
		b, err := os.ReadFile(*inPath)
		if err != nil {
			fatalf("dump: %v", err)
		}
		bw := bufio.NewWriter(os.Stdout)
		defer bw.Flush()
		if err := dump(bw, b, *preview); err != nil {
			bw.Flush()
			fatalf("dump: %v", err)
		}
		return
	default:
		fatalf("unknown mode: %s", *mode)
	}
	if err != nil {
		fatalf("%s: %v", *mode, err)
	}
	if err := os.WriteFile(*outPath, store, 0o644); err != nil {
		fatalf("write: %v", err)
	}
	fmt.Fprintf(os.Stderr, "mkglyphs: wrote %s (%d bytes)\n", *outPath, len(store))
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

func buildFont(name, chars string) ([]byte, error) {
	runes := glyphfont.ASCII()
	if chars != "" {
		runes = []rune(chars)
	}
	var (
		bitmaps []glyph.Bitmap
		err     error
	)
	switch strings.ToLower(name) {
	case "proggy":
		if chars == "" {
			return glyphfont.Default()
		}
		bitmaps, err = glyphfont.FromFonter(glyphfont.DefaultFont, runes)
	case "7x13":
		bitmaps, err = glyphfont.FromFace(glyphfont.Face7x13, runes)
	default:
		return nil, fmt.Errorf("unknown font: %s", name)
	}
	if err != nil {
		return nil, err
	}
	return glyphfont.Store(bitmaps)
}

func buildImageFile(path string, w, h int, mode glyphfont.Mode) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return buildImage(f, w, h, mode)
}

func buildImage(r io.Reader, w, h int, mode glyphfont.Mode) ([]byte, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b, err := glyphfont.FromImage(img, w, h, mode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", format, err)
	}
	return glyphfont.Store([]glyph.Bitmap{b})
}

// shades maps coverage to characters, darkest last.
const shades = " .:-=+*#%@"

func dump(w io.Writer, store []byte, preview bool) error {
	glyphs, err := glyph.All(store)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d glyphs, %d bytes\n", len(glyphs), len(store))
	for _, g := range glyphs {
		fmt.Fprintf(w, "id=%d %q size=%dx%d offset=%d,%d advance=%d rle=%d kerning=%d\n",
			g.ID, rune(g.ID), g.Width, g.Height, g.XOffset, g.YOffset, g.XAdvance, len(g.RLE), len(g.Kerning))
		if !preview || g.Width == 0 {
			continue
		}
		d := glyph.NewRowDecoder(g)
		row := make([]rgb565.Color, g.Width)
		line := make([]byte, g.Width)
		for y := 0; y < int(g.Height); y++ {
			for i := range row {
				row[i] = rgb565.Black
			}
			if _, err := d.DecodeRow(y, rgb565.White, row, 0); err != nil {
				return fmt.Errorf("glyph %d row %d: %w", g.ID, y, err)
			}
			for i, c := range row {
				_, g6, _ := c.Unpack()
				line[i] = shades[int(g6)*(len(shades)-1)/63]
			}
			fmt.Fprintf(w, "  |%s|\n", line)
		}
	}
	return nil
}
