package application

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces bursts of file events into one refresh.
const watchDebounce = time.Second

// WatchDefinitions watches a local definitions directory and triggers an
// early refresh when .env files change. fsnotify watches are not recursive,
// so each directory level is added individually (the tree is at most three
// levels deep). Watch errors are logged, never fatal: the interval refresh
// still picks changes up eventually.
func (s *RefreshService) WatchDefinitions(ctx context.Context, dir string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("definitions watch unavailable", "error", err)
		return
	}
	defer func() { _ = watcher.Close() }()

	if err := addWatchDirs(watcher, dir); err != nil {
		slog.Warn("definitions watch unavailable", "dir", dir, "error", err)
		return
	}
	slog.Info("watching definitions directory", "dir", dir)

	debounce := time.NewTimer(watchDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			if strings.HasSuffix(event.Name, ".env") ||
				event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Remove) {
				debounce.Reset(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("definitions watch error", "error", err)
		case <-debounce.C:
			slog.Info("definitions changed, triggering refresh")
			s.TriggerRefresh()
		}
	}
}

// addWatchDirs registers dir and its subdirectories, three levels deep.
func addWatchDirs(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel != "." && strings.Count(rel, string(filepath.Separator)) >= 2 {
			return fs.SkipDir
		}
		return watcher.Add(path)
	})
}
