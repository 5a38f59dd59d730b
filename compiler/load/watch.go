package load

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/relgen/schema"
)

// WatchFunc receives the database loaded after each change of a watched
// definition file, or the error that prevented loading it.
type WatchFunc func(*schema.Database, error)

// Watch loads the definition file at path, passes the result to fn and
// then reloads it on every change until ctx is done. The parent
// directory is watched, so editors replacing the file are supported.
// fn is called from a single goroutine.
func Watch(ctx context.Context, path string, fn WatchFunc) error {
	path = filepath.Clean(path)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("load: create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("load: watch %s: %w", path, err)
	}
	fn(File(path))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			slog.Debug("reloading schema definition", "path", path, "op", ev.Op.String())
			fn(File(path))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fn(nil, fmt.Errorf("load: watch %s: %w", path, err))
		}
	}
}
