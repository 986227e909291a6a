package sceneconf

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/shlex"

	"linefb/fb/rgb565"
	"linefb/fb/scene"
)

// Entry is one primitive of a document. Name is optional and lets callers
// find the primitive's id after Apply.
type Entry struct {
	Name string
	Spec scene.Spec
}

// Document is a parsed scene file.
type Document struct {
	Background    rgb565.Color
	HasBackground bool
	Entries       []Entry
}

// Target is the part of a display a document is applied to.
type Target interface {
	Reset()
	Add(s scene.Spec) (scene.ID, error)
}

// Apply resets t and adds every entry in order. The returned map holds the
// ids of named entries. On error the primitives added so far stay in t.
func (d *Document) Apply(t Target) (map[string]scene.ID, error) {
	t.Reset()
	names := make(map[string]scene.ID)
	for i, e := range d.Entries {
		id, err := t.Add(e.Spec)
		if err != nil {
			return names, fmt.Errorf("sceneconf: entry %d %s: %w", i, e.Name, err)
		}
		if e.Name != "" {
			names[e.Name] = id
		}
	}
	return names, nil
}

// ParseJSON reads a document of the form
//
//	{"background": "#000", "primitives": [{"name": "title", "x": 0, ...}]}
func ParseJSON(r io.Reader, assets Assets) (*Document, error) {
	var raw struct {
		Background any              `json:"background"`
		Primitives []map[string]any `json:"primitives"`
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("sceneconf: decode json: %w", err)
	}

	doc := &Document{}
	if raw.Background != nil {
		c, err := ParseColor(raw.Background)
		if err != nil {
			return nil, invalid("background", err)
		}
		doc.Background, doc.HasBackground = c, true
	}
	for i, m := range raw.Primitives {
		s, err := SpecFromMap(m, assets)
		if err != nil {
			return nil, fmt.Errorf("sceneconf: primitive %d: %w", i, err)
		}
		name, _ := m["name"].(string)
		doc.Entries = append(doc.Entries, Entry{Name: name, Spec: s})
	}
	return doc, nil
}

// ParseScript reads the line format, one primitive per line:
//
//	# comment
//	background c=#102040
//	rect name=bar x=0 y=200 w=240 h=8 c=red
//	text x=120 y=20 a=center data=font text="Hello there"
//	image x=10 y=10 data=icon c=white
//
// Lines are split with shell quoting rules.
func ParseScript(r io.Reader, assets Assets) (*Document, error) {
	doc := &Document{}
	sc := bufio.NewScanner(r)
	for lineNo := 1; sc.Scan(); lineNo++ {
		words, err := shlex.Split(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("sceneconf: line %d: %w", lineNo, err)
		}
		if len(words) == 0 {
			continue
		}
		m := make(map[string]any, len(words)-1)
		for _, w := range words[1:] {
			k, v, ok := strings.Cut(w, "=")
			if !ok {
				return nil, fmt.Errorf("sceneconf: line %d: %w: %q is not key=value", lineNo, scene.ErrInvalidSpec, w)
			}
			m[k] = v
		}

		kind := words[0]
		if kind == "background" {
			c, err := ParseColor(m["c"])
			if err != nil {
				return nil, fmt.Errorf("sceneconf: line %d: %w", lineNo, invalid("c", err))
			}
			doc.Background, doc.HasBackground = c, true
			continue
		}
		if err := checkKind(kind, m); err != nil {
			return nil, fmt.Errorf("sceneconf: line %d: %w", lineNo, err)
		}
		s, err := SpecFromMap(m, assets)
		if err != nil {
			return nil, fmt.Errorf("sceneconf: line %d: %w", lineNo, err)
		}
		name, _ := m["name"].(string)
		doc.Entries = append(doc.Entries, Entry{Name: name, Spec: s})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("sceneconf: read script: %w", err)
	}
	return doc, nil
}

func checkKind(kind string, m map[string]any) error {
	_, hasData := m["data"]
	_, hasText := m["text"]
	switch kind {
	case "rect":
		if hasData || hasText {
			return fmt.Errorf("%w: rect takes no data or text", scene.ErrInvalidSpec)
		}
	case "image":
		if !hasData || hasText {
			return fmt.Errorf("%w: image needs data and no text", scene.ErrInvalidSpec)
		}
	case "text":
		if !hasData || !hasText {
			return fmt.Errorf("%w: text needs data and text", scene.ErrInvalidSpec)
		}
	default:
		return fmt.Errorf("%w: unknown primitive %q", scene.ErrInvalidSpec, kind)
	}
	return nil
}

// Load parses a scene file, choosing the format by extension: .json is
// JSON, anything else is the line format.
func Load(path string, assets Assets) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sceneconf: open %q: %w", path, err)
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(f, assets)
	}
	return ParseScript(f, assets)
}

// DirAssets loads glyph stores from files in a directory. A name resolves to
// <dir>/<name>.glyphs. Loaded stores are cached and never reloaded, so
// primitives holding them stay valid.
type DirAssets struct {
	Dir   string
	cache map[string][]byte
}

func (d *DirAssets) Asset(name string) ([]byte, error) {
	if b, ok := d.cache[name]; ok {
		return b, nil
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAsset, name)
	}
	b, err := os.ReadFile(filepath.Join(d.Dir, name+".glyphs"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAsset, name)
		}
		return nil, fmt.Errorf("sceneconf: read asset %q: %w", name, err)
	}
	if d.cache == nil {
		d.cache = make(map[string][]byte)
	}
	d.cache[name] = b
	return b, nil
}
