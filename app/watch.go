//go:build !tinygo

package app

import (
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"linefb/hal"
)

// reloadDelay coalesces the burst of events an editor save produces.
const reloadDelay = 100 * time.Millisecond

// watchScene signals reload whenever path is written. Editors often replace
// the file, so the directory is watched rather than the file.
func watchScene(path string, reload chan<- struct{}, l hal.Logger) (stop func(), err error) {
	path = filepath.Clean(path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	quit := make(chan struct{})
	go func() {
		var fire <-chan time.Time
		for {
			select {
			case <-quit:
				return
			case ev, ok := <-watcher.Event:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) == path && !ev.IsAttrib() && !ev.IsDelete() {
					fire = time.After(reloadDelay)
				}
			case <-fire:
				fire = nil
				select {
				case reload <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Error:
				if !ok {
					return
				}
				logf(l, "app: watcher", "err", err)
			}
		}
	}()
	return func() {
		close(quit)
		watcher.Close()
	}, nil
}
