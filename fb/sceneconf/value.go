// Package sceneconf turns loosely typed key/value objects into scene specs.
//
// Recognised keys are x, y, w, h (integers), c (color), a (alignment),
// data (a glyph store or the name of one) and text (a string of glyph ids).
// Other keys are ignored. Any value of the wrong type fails with
// scene.ErrInvalidSpec.
package sceneconf

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"linefb/fb/rgb565"
	"linefb/fb/scene"
)

// ErrUnknownAsset is returned by Assets implementations for missing names.
var ErrUnknownAsset = errors.New("sceneconf: unknown asset")

// Assets resolves a data name to a glyph store.
type Assets interface {
	Asset(name string) ([]byte, error)
}

// AssetMap is an in-memory Assets.
type AssetMap map[string][]byte

func (m AssetMap) Asset(name string) ([]byte, error) {
	b, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAsset, name)
	}
	return b, nil
}

var namedColors = map[string]rgb565.Color{
	"black":   rgb565.Black,
	"white":   rgb565.White,
	"red":     rgb565.Red,
	"green":   rgb565.Green,
	"blue":    rgb565.Blue,
	"yellow":  rgb565.Red | rgb565.Green,
	"cyan":    rgb565.Green | rgb565.Blue,
	"magenta": rgb565.Red | rgb565.Blue,
	"gray":    rgb565.Pack(128, 128, 128),
}

// SpecFromMap builds a spec from m. Only keys present in m are set, so the
// result also works as a partial update. assets may be nil when no data
// value is a name.
func SpecFromMap(m map[string]any, assets Assets) (scene.Spec, error) {
	var s scene.Spec

	ints := []struct {
		key   string
		field scene.Field
		dst   *int
	}{
		{"x", scene.FieldX, &s.X},
		{"y", scene.FieldY, &s.Y},
		{"w", scene.FieldW, &s.W},
		{"h", scene.FieldH, &s.H},
	}
	for _, f := range ints {
		v, ok := m[f.key]
		if !ok {
			continue
		}
		n, err := Int(v)
		if err != nil {
			return scene.Spec{}, invalid(f.key, err)
		}
		*f.dst = n
		s.Fields |= f.field
	}

	if v, ok := m["c"]; ok {
		c, err := ParseColor(v)
		if err != nil {
			return scene.Spec{}, invalid("c", err)
		}
		s = s.WithColor(c)
	}
	if v, ok := m["a"]; ok {
		a, err := ParseAlign(v)
		if err != nil {
			return scene.Spec{}, invalid("a", err)
		}
		s = s.WithAlign(a)
	}
	if v, ok := m["data"]; ok {
		data, err := resolveData(v, assets)
		if err != nil {
			return scene.Spec{}, invalid("data", err)
		}
		s = s.WithData(data)
	}
	if v, ok := m["text"]; ok {
		text, err := glyphIDs(v)
		if err != nil {
			return scene.Spec{}, invalid("text", err)
		}
		s = s.WithText(text)
	}
	return s, nil
}

func invalid(key string, err error) error {
	return fmt.Errorf("%w: key %q: %w", scene.ErrInvalidSpec, key, err)
}

// Int converts a decoded number or numeric string to an int.
func Int(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%s is not an integer", n)
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("unexpected %T", v)
	}
}

// ParseColor accepts a packed RGB565 number, "#rgb", "#rrggbb", a color name
// or a three element [r, g, b] list of 8-bit channels.
func ParseColor(v any) (rgb565.Color, error) {
	switch c := v.(type) {
	case string:
		return parseColorString(c)
	case []any:
		if len(c) != 3 {
			return 0, fmt.Errorf("want [r, g, b], got %d values", len(c))
		}
		var ch [3]uint8
		for i, e := range c {
			n, err := Int(e)
			if err != nil {
				return 0, err
			}
			if n < 0 || n > 255 {
				return 0, fmt.Errorf("channel %d out of range", n)
			}
			ch[i] = uint8(n)
		}
		return rgb565.Pack(ch[0], ch[1], ch[2]), nil
	default:
		n, err := Int(v)
		if err != nil {
			return 0, err
		}
		if n < 0 || n > 0xFFFF {
			return 0, fmt.Errorf("color %d out of range", n)
		}
		return rgb565.Color(n), nil
	}
}

func parseColorString(s string) (rgb565.Color, error) {
	s = strings.TrimSpace(s)
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return 0, fmt.Errorf("bad color %q", s)
		}
		rgb, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return 0, fmt.Errorf("bad color %q", s)
		}
		return rgb565.Pack(uint8(rgb>>16), uint8(rgb>>8), uint8(rgb)), nil
	}
	n, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("bad color %q", s)
	}
	return rgb565.Color(n), nil
}

// ParseAlign accepts 0, 1, 2 or left, center, right.
func ParseAlign(v any) (scene.Align, error) {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "left":
			return scene.AlignLeft, nil
		case "center", "centre":
			return scene.AlignCenter, nil
		case "right":
			return scene.AlignRight, nil
		}
	}
	n, err := Int(v)
	if err != nil {
		return 0, err
	}
	if n < int(scene.AlignLeft) || n > int(scene.AlignRight) {
		return 0, fmt.Errorf("alignment %d out of range", n)
	}
	return scene.Align(n), nil
}

func resolveData(v any, assets Assets) ([]byte, error) {
	switch d := v.(type) {
	case []byte:
		return d, nil
	case string:
		if assets == nil {
			return nil, fmt.Errorf("%w: %q (no asset source)", ErrUnknownAsset, d)
		}
		return assets.Asset(d)
	default:
		return nil, fmt.Errorf("unexpected %T", v)
	}
}

func glyphIDs(v any) ([]byte, error) {
	switch t := v.(type) {
	case string:
		return []byte(t), nil
	case []byte:
		return t, nil
	case []any:
		ids := make([]byte, len(t))
		for i, e := range t {
			n, err := Int(e)
			if err != nil {
				return nil, err
			}
			if n < 0 || n > 255 {
				return nil, fmt.Errorf("glyph id %d out of range", n)
			}
			ids[i] = byte(n)
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("unexpected %T", v)
	}
}
