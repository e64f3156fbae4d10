package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the directory service when the backing data file changes.
// Editors typically write files with several rapid events (and sometimes a
// rename), so events are debounced and the parent directory is watched
// instead of the file itself.
type Watcher struct {
	path     string
	debounce time.Duration
	reload   func(ctx context.Context) error

	fsw *fsnotify.Watcher
}

// NewWatcher creates a watcher for the given data file. reload is invoked
// after the debounce interval has passed without further change events.
func NewWatcher(path string, debounce time.Duration, reload func(ctx context.Context) error) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if reload == nil {
		return nil, fmt.Errorf("reload function is required")
	}
	if debounce <= 0 {
		debounce = 2 * time.Second
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the parent directory so renames over the file are observed
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		reload:   reload,
		fsw:      fsw,
	}, nil
}

// Start processes change events until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	defer func() {
		if err := w.fsw.Close(); err != nil {
			slog.Warn("Failed to close file watcher", "error", err)
		}
	}()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", "error", err)

		case <-timerC:
			timer = nil
			timerC = nil
			slog.Info("Directory data file changed, reloading", "path", w.path)
			if err := w.reload(ctx); err != nil {
				slog.Error("Failed to reload directory data", "path", w.path, "error", err)
			}
		}
	}
}
