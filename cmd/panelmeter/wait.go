package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leandrodaf/panelmeter/sdk/contracts"
)

// waitForPath waits up to timeout before the next open attempt. It returns
// early only when path was missing and is then created. Endpoints that are
// not device nodes, and nodes that still exist, get the full wait. It
// returns only ctx.Err().
func waitForPath(ctx context.Context, path string, timeout time.Duration, log contracts.Logger) error {
	path = strings.TrimPrefix(path, "file:")
	if i := strings.IndexByte(path, ':'); i > 0 && !strings.Contains(path[:i], "/") {
		return sleep(ctx, timeout)
	}
	if _, err := os.Stat(path); err == nil {
		return sleep(ctx, timeout)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Debug("Cannot create file watcher", log.Field().Error("error", err))
		return sleep(ctx, timeout)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		log.Debug("Cannot watch endpoint directory", log.Field().String("path", path), log.Field().Error("error", err))
		return sleep(ctx, timeout)
	}
	// The node may have appeared between Stat and Add.
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return sleep(ctx, timeout)
			}
			if event.Op&fsnotify.Create != 0 && filepath.Clean(event.Name) == filepath.Clean(path) {
				log.Debug("Endpoint appeared", log.Field().String("path", path))
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return sleep(ctx, timeout)
			}
			log.Debug("File watcher error", log.Field().Error("error", err))
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
