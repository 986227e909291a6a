package app

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"linefb/fb"
	"linefb/fb/glyphfont"
	"linefb/fb/scene"
	"linefb/fb/sceneconf"
	"linefb/hal"
)

// Names the animator looks for in a scene.
const (
	SpriteName = "sprite"
	ClockName  = "clock"
)

type Config struct {
	// ScenePath is a scene file (.json or line format). Empty runs the
	// built-in scene.
	ScenePath string
	// AssetDir resolves data names in the scene file. Defaults to the
	// scene file's directory.
	AssetDir string
	// Watch reloads the scene file when it changes.
	Watch bool
	// Still disables the animation.
	Still bool
	// Verbose logs every flush.
	Verbose bool
}

type system struct {
	h   hal.HAL
	cfg Config
	d   *fb.Display

	font   []byte
	assets sceneconf.Assets
	names  map[string]scene.ID
	anim   *animator

	tick     atomic.Uint64
	lastTick uint64
	ticking  bool
	reload   chan struct{}
	stopW    func()

	flushErrs int
}

// New initializes the display with the built-in scene.
func New(h hal.HAL) func() error {
	return NewWithConfig(h, Config{})
}

// Run initializes the app and steps it forever (TinyGo entrypoint).
func Run(h hal.HAL) {
	RunWithConfig(h, Config{})
}

// NewWithConfig initializes the display and returns the per-frame step.
func NewWithConfig(h hal.HAL, cfg Config) func() error {
	s, err := newSystem(h, cfg)
	if err != nil {
		logf(h.Logger(), "app: init", "err", err)
		return func() error { return err }
	}
	return s.guard(s.step)
}

func RunWithConfig(h hal.HAL, cfg Config) {
	step := NewWithConfig(h, cfg)
	for {
		if err := step(); err != nil {
			logf(h.Logger(), "app: step", "err", err)
		}
		time.Sleep(16 * time.Millisecond)
	}
}

func newSystem(h hal.HAL, cfg Config) (*system, error) {
	disp := h.Display()
	if disp == nil {
		return nil, fmt.Errorf("app: no display")
	}
	w, ht := disp.Size()
	s := &system{
		h:      h,
		cfg:    cfg,
		d:      fb.New(disp.Bus(), fb.Options{Width: w, Height: ht}),
		reload: make(chan struct{}, 1),
	}
	font, err := glyphfont.Default()
	if err != nil {
		return nil, fmt.Errorf("app: font: %w", err)
	}
	s.font = font
	s.d.Init()

	if cfg.ScenePath != "" {
		dir := cfg.AssetDir
		if dir == "" {
			dir = filepath.Dir(cfg.ScenePath)
		}
		assets, err := builtinAssets(s.font, &sceneconf.DirAssets{Dir: dir})
		if err != nil {
			return nil, err
		}
		s.assets = assets
		if err := s.loadScene(); err != nil {
			return nil, err
		}
		if cfg.Watch {
			stop, err := watchScene(cfg.ScenePath, s.reload, h.Logger())
			if err != nil {
				logf(h.Logger(), "app: watch", "path", cfg.ScenePath, "err", err)
			} else {
				s.stopW = stop
			}
		}
	} else {
		names, err := defaultScene(s.d, s.font)
		if err != nil {
			return nil, err
		}
		s.setNames(names)
	}

	if tm := h.Time(); tm != nil {
		if ch := tm.Ticks(); ch != nil {
			go func() {
				for seq := range ch {
					s.tick.Store(seq)
				}
			}()
		}
	}
	return s, nil
}

func (s *system) loadScene() error {
	doc, err := sceneconf.Load(s.cfg.ScenePath, s.assets)
	if err != nil {
		return err
	}
	if doc.HasBackground {
		s.d.SetBackground(doc.Background)
	}
	names, err := doc.Apply(s.d)
	s.setNames(names)
	if err != nil {
		return err
	}
	logf(s.h.Logger(), "app: scene loaded", "path", s.cfg.ScenePath, "primitives", s.d.Len())
	return nil
}

func (s *system) setNames(names map[string]scene.ID) {
	s.names = names
	s.anim = nil
	if s.cfg.Still {
		return
	}
	s.anim = newAnimator(s.d, names)
}

// step advances the animation by the ticks seen since the previous step and
// flushes whatever changed.
func (s *system) step() error {
	select {
	case <-s.reload:
		if err := s.loadScene(); err != nil {
			logf(s.h.Logger(), "app: reload", "path", s.cfg.ScenePath, "err", err)
		}
	default:
	}

	now := s.tick.Load()
	if !s.ticking || now < s.lastTick {
		s.lastTick, s.ticking = now, true
	}
	dt := float32(now-s.lastTick) / 1000
	s.lastTick = now

	if s.anim != nil {
		if err := s.anim.update(dt); err != nil {
			logf(s.h.Logger(), "app: animate", "err", err)
			s.anim = nil
		}
	}
	return s.flush()
}

func (s *system) flush() error {
	y1, y2 := s.d.Dirty()
	if y2 <= y1 {
		return nil
	}
	before := s.d.Stats().Bytes

	// The LED stays lit while the transport is failing.
	if err := s.d.Flush(); err != nil {
		// The rows stay dirty; the next step retries them.
		s.flushErrs++
		s.h.LED().High()
		logf(s.h.Logger(), "fb: flush", "rows", rows(y1, y2), "err", err, "failures", s.flushErrs)
		return nil
	}
	if s.flushErrs > 0 {
		s.flushErrs = 0
		s.h.LED().Low()
	}
	if s.cfg.Verbose {
		logf(s.h.Logger(), "fb: flush", "rows", rows(y1, y2), "bytes", s.d.Stats().Bytes-before)
	}
	return nil
}

// Close stops the scene watcher.
func (s *system) Close() {
	if s.stopW != nil {
		s.stopW()
		s.stopW = nil
	}
}

type rowRange [2]int

func rows(y1, y2 int) rowRange { return rowRange{y1, y2} }

func (r rowRange) String() string { return fmt.Sprintf("[%d,%d)", r[0], r[1]) }
