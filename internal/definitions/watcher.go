package definitions

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/flowstate/internal/log"
	"github.com/zjrosen/flowstate/internal/workflow/service"
)

// Watcher reloads workflow definitions when files in the definitions
// directory change. Changes are debounced so editors that write a file in
// several events trigger a single reload.
type Watcher struct {
	svc      *service.Service
	dir      string
	debounce time.Duration
}

// NewWatcher creates a Watcher over the given directory.
func NewWatcher(svc *service.Service, dir string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = time.Second
	}
	return &Watcher{svc: svc, dir: dir, debounce: debounce}
}

// Run watches the definitions directory until ctx is cancelled. Each batch of
// changes triggers a full directory reload; per-file errors are logged and
// skipped inside LoadDir.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching definitions directory: %w", err)
	}

	log.Info(log.CatLoader, "Watching definitions", "dir", w.dir, "debounce", w.debounce)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !isDefinitionFile(event.Name) {
				continue
			}
			log.Debug(log.CatLoader, "Definition change detected", "path", event.Name, "op", event.Op.String())
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

		case <-timerC:
			timer = nil
			timerC = nil
			n, err := LoadDir(ctx, w.svc, w.dir)
			if err != nil {
				log.ErrorErr(log.CatLoader, "Reload failed", err, "dir", w.dir)
				continue
			}
			log.Info(log.CatLoader, "Definitions reloaded", "count", n)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.ErrorErr(log.CatLoader, "Watcher error", err, "dir", w.dir)
		}
	}
}
