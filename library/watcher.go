package library

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"vibelist/logger"
)

// Watcher reloads the store when the manifest file changes on disk. It
// watches the manifest's directory rather than the file itself because
// editors and exporters typically replace the file by rename.
type Watcher struct {
	manifest string
	store    *Store
	fw       *fsnotify.Watcher
}

// NewWatcher creates a watcher for the manifest feeding store.
func NewWatcher(manifest string, store *Store) (*Watcher, error) {
	abs, err := filepath.Abs(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch manifest directory: %w", err)
	}

	return &Watcher{manifest: abs, store: store, fw: fw}, nil
}

// Start runs the watch loop until ctx is cancelled. Reload failures keep the
// previous library and log a warning.
func (w *Watcher) Start(ctx context.Context) {
	// Writers often emit several events for one save; coalesce them.
	const debounce = 200 * time.Millisecond
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.manifest {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logger.Warn("manifest watcher error", logger.ErrorField(err))
		}
	}
}

func (w *Watcher) reload() {
	tracks, err := LoadManifest(w.manifest)
	if err != nil {
		logger.Warn("manifest reload failed, keeping previous library",
			logger.String("manifest", w.manifest),
			logger.ErrorField(err))
		return
	}
	w.store.Replace(tracks)
	logger.Info("library reloaded",
		logger.String("manifest", w.manifest),
		logger.Int("tracks", len(tracks)))
}

// Close stops the underlying file watcher.
func (w *Watcher) Close() error {
	return w.fw.Close()
}
