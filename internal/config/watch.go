package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors path and calls onChange with the reloaded Profile each time
// the file is written or replaced. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file, so saves that
// rename a temporary file over the profile keep being seen. A reload that
// fails to parse or validate is logged and skipped; the caller keeps
// whatever profile it had.
func Watch(ctx context.Context, path string, log *slog.Logger, onChange func(*Profile)) error {
	if log == nil {
		log = slog.Default()
	}
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	log.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			data, err := os.ReadFile(path)
			if err != nil {
				log.Error("config: reload failed, keeping previous profile", "path", path, "err", err)
				continue
			}
			// A truncate ahead of the write shows up as an empty file.
			if len(data) == 0 {
				continue
			}
			p, err := Parse(data)
			if err != nil {
				log.Error("config: reload failed, keeping previous profile", "path", path, "err", err)
				continue
			}
			log.Info("config: reloaded", "path", path)
			onChange(p)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("config: watcher error", "err", err)
		}
	}
}
