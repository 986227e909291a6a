//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"linefb/app"
	"linefb/hal"
	"linefb/internal/buildinfo"
)

func main() {
	var (
		headless hal.HeadlessConfig
		termCfg  hal.TerminalConfig
		cfg      app.Config
		terminal bool
		scale    int
	)
	flag.BoolVar(&headless.Enabled, "headless", false, "Run without a window.")
	flag.BoolVar(&terminal, "terminal", false, "Preview the panel in the terminal.")
	flag.IntVar(&headless.Hz, "hz", 60, "Step rate in headless and terminal mode.")
	flag.Uint64Var(&headless.Ticks, "ticks", 0, "Stop after N steps in headless and terminal mode (0 = run forever).")
	flag.IntVar(&scale, "scale", 2, "Window pixels per panel pixel.")
	flag.StringVar(&cfg.ScenePath, "scene", "", "Scene file (.json or line format). Empty shows the built-in demo.")
	flag.StringVar(&cfg.AssetDir, "assets", "", "Directory of .glyphs files (default: the scene file's directory).")
	flag.BoolVar(&cfg.Watch, "watch", true, "Reload the scene file when it changes.")
	flag.BoolVar(&cfg.Still, "still", false, "Disable the animation.")
	flag.BoolVar(&cfg.Verbose, "v", false, "Log every flush.")
	flag.Parse()

	newApp := func(h hal.HAL) func() error {
		h.Logger().WriteLineString(buildinfo.Line())
		return app.NewWithConfig(h, cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch {
	case headless.Enabled:
		err = hal.RunHeadless(ctx, newApp, headless)
	case terminal:
		termCfg.Hz, termCfg.Ticks = headless.Hz, headless.Ticks
		err = hal.RunTerminal(ctx, newApp, termCfg)
	default:
		err = hal.RunWindow(newApp, scale)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
