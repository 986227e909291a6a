//go:build tinygo

package main

import (
	"linefb/app"
	"linefb/hal"
	"linefb/internal/buildinfo"
)

func main() {
	h := hal.New()
	h.Logger().WriteLineString(buildinfo.Line())
	app.Run(h)
}
