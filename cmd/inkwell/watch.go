package main

import (
	"context"
	"log/slog"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/cornish/inkwell/style"
	"github.com/cornish/inkwell/ui"
)

// watchStylesheet reloads the stylesheet at path whenever it changes and
// delivers the result through send. The directory is watched rather than the
// file so that editors which save by renaming are noticed. Watching stops
// when ctx is done.
func watchStylesheet(ctx context.Context, path string, send func(tea.Msg), logger *slog.Logger) error {
	path = filepath.Clean(path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				sheet, err := style.LoadStylesheet(path)
				if err != nil {
					logger.Warn("stylesheet reload failed", slog.String("path", path), slog.String("error", err.Error()))
					send(ui.StylesheetMsg{Err: err})
					continue
				}
				logger.Info("stylesheet reloaded", slog.String("path", path))
				send(ui.StylesheetMsg{Sheet: sheet})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("stylesheet watcher error", slog.String("error", err.Error()))
			}
		}
	}()
	return nil
}
