package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after a change before a rebuild runs.
const DefaultDebounce = 100 * time.Millisecond

// Watch calls rebuild once and then after every change of the file at path,
// until ctx is done. Rebuild errors are logged and do not stop the watch.
//
// The parent directory is watched, so editors that replace the file by
// renaming keep triggering events.
func Watch(ctx context.Context, path string, logger *slog.Logger, rebuild func(context.Context) error) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	run := func() {
		if err := rebuild(ctx); err != nil {
			logger.Error("Rebuild failed", "path", abs, "err", err)
		}
	}
	run()

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.Debug("Manifest changed", "path", abs, "op", ev.Op.String())
			debounce = time.After(DefaultDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", "err", err)
		case <-debounce:
			debounce = nil
			run()
		}
	}
}
