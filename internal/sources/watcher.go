package sources

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce collapses the burst of events editors emit on save.
const debounce = 200 * time.Millisecond

// ChangeCallback receives the new URL list after the sources file changed.
type ChangeCallback func(urls []string)

// Watch starts an fsnotify watcher on the directory holding path and calls
// cb with the reloaded list whenever the file is written, created or
// replaced, until ctx is cancelled.
//
// The directory is watched rather than the file so that editors which save
// by rename keep being observed. Reloads that fail to parse are logged and
// skipped; reloads whose list is unchanged do not call cb.
func Watch(ctx context.Context, path string, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return err
	}
	abs = filepath.Join(dir, filepath.Base(abs))
	if err := w.Add(dir); err != nil {
		return err
	}

	current, _ := Load(abs)
	logger.Info("sources watcher: started", slog.String("path", abs))

	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("sources watcher: stopped")
			return nil

		case <-timerCh:
			urls, err := Load(abs)
			if err != nil {
				logger.Warn("sources watcher: reload failed", slog.String("path", abs), slog.String("error", err.Error()))
				continue
			}
			if slices.Equal(urls, current) {
				continue
			}
			current = urls
			logger.Info("sources watcher: sources changed", slog.Int("count", len(urls)))
			if cb != nil {
				cb(urls)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("sources watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
