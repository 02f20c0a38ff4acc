package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/raido/internal/storage"
)

// syncDebounce coalesces bursts of file events (an atomic save is a
// create-temp, write, rename sequence) into a single sync pass.
const syncDebounce = 200 * time.Millisecond

// ReloadCallback is called after a watcher-driven sync pass.
type ReloadCallback func()

// Watch starts an fsnotify watcher on the directory holding the data
// file and re-syncs the index whenever the file changes, until ctx is
// cancelled. Both the application's own saves and external edits to
// the file land here; the document-checksum check inside Sync makes
// redundant passes cheap. cb (if non-nil) runs after each sync.
func Watch(ctx context.Context, db *DB, store storage.Provider, logger *slog.Logger, cb ReloadCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(store.Path())
	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("file", store.Path()))

	// syncTimer debounces sync passes.
	var syncTimer *time.Timer
	var syncCh <-chan time.Time

	scheduleSync := func() {
		if syncTimer == nil {
			syncTimer = time.NewTimer(syncDebounce)
			syncCh = syncTimer.C
		} else {
			syncTimer.Reset(syncDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if syncTimer != nil {
				syncTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-syncCh:
			if err := Sync(db, store, logger); err != nil {
				logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
				continue
			}
			logger.Debug("watcher: synced")
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// Only the data file itself is interesting; temp files
			// from atomic saves and unrelated siblings are skipped.
			if ev.Name != store.Path() {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				scheduleSync()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
