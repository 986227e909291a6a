package app

import (
	"fmt"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"linefb/fb/glyph"
	"linefb/fb/rgb565"
	"linefb/fb/scene"
)

// guard runs step, turning a panic into a panic screen. After a panic the
// app is halted: later steps do nothing so the screen stays up.
func (s *system) guard(step func() error) func() error {
	halted := false
	return func() (err error) {
		if halted {
			return nil
		}
		defer func() {
			if r := recover(); r != nil {
				halted = true
				s.panicScreen(r, debug.Stack())
			}
		}()
		return step()
	}
}

func (s *system) panicScreen(v any, stack []byte) {
	l := s.h.Logger()
	lines := []string{"linefb panic:", fmt.Sprintf("panic: %v", v)}
	logf(l, "app: panic", "value", v)
	if len(stack) > 0 {
		lines = append(lines, "stack:")
		for _, line := range strings.Split(string(stack), "\n") {
			if line == "" {
				continue
			}
			if l != nil {
				l.WriteLineString(line)
			}
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	s.h.LED().High()

	_, m, err := glyph.Measure(s.font, []byte("0"))
	if err != nil || m.Width <= 0 || m.Height <= 0 {
		return
	}
	w, h := s.d.Size()
	cols := w / m.Width
	if cols <= 0 {
		cols = 1
	}
	lineHeight := m.Height + 1

	s.d.Reset()
	s.d.SetBackground(rgb565.White)
	y := 0
	for _, line := range lines {
		for len(line) > 0 {
			if y+lineHeight > h {
				break
			}
			chunk, rest := takeRunes(line, cols)
			if _, err := s.d.Add(scene.Text(0, y, s.font, asciiOnly(chunk), rgb565.Black)); err != nil {
				logf(l, "app: panic screen", "err", err)
			}
			y += lineHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
	if err := s.d.Flush(); err != nil {
		logf(l, "app: panic screen", "err", err)
	}
}

// asciiOnly replaces runes the default font cannot show.
func asciiOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7E {
			return '?'
		}
		return r
	}, s)
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if len(s) <= n {
		return s, ""
	}
	var i, count int
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
