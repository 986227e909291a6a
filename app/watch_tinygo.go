//go:build tinygo

package app

import "linefb/hal"

func watchScene(string, chan<- struct{}, hal.Logger) (func(), error) {
	return nil, hal.ErrNotImplemented
}
