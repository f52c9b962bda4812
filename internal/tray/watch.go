package tray

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchSettle coalesces the burst of events an editor save produces.
const watchSettle = 250 * time.Millisecond

// WatchConfig calls onChange whenever the file at path is written,
// created, renamed or removed, until ctx ends. The parent directory is
// watched so that editors replacing the file are noticed.
func WatchConfig(ctx context.Context, path string, logger *slog.Logger, onChange func()) error {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		var settle <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) {
					continue
				}
				logger.Debug("config file changed", "path", path, "op", ev.Op.String())
				settle = time.After(watchSettle)
			case <-settle:
				settle = nil
				onChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watch error", "error", err)
			}
		}
	}()
	return nil
}
