// Package filewatcher watches the drop folder for new uploads.
package filewatcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
)

var _ ports.FileWatcher = (*FSNotifyWatcher)(nil)

// DefaultExtensions are the PDF and chat export types the backend accepts.
var DefaultExtensions = []string{".pdf", ".txt", ".json", ".zip", ".csv"}

// FSNotifyWatcher implements ports.FileWatcher using fsnotify.
type FSNotifyWatcher struct {
	watcher    *fsnotify.Watcher
	extensions map[string]bool
	logger     *slog.Logger
}

// NewFSNotifyWatcher creates a watcher for the given extensions.
func NewFSNotifyWatcher(extensions []string, logger *slog.Logger) (*FSNotifyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	if logger == nil {
		logger = slog.Default()
	}

	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = true
	}
	return &FSNotifyWatcher{watcher: w, extensions: exts, logger: logger}, nil
}

// Watch starts monitoring dir. The channel closes when ctx is done or the
// watcher is stopped.
func (w *FSNotifyWatcher) Watch(ctx context.Context, dir string) (<-chan ports.FileEvent, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	events := make(chan ports.FileEvent, 100)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.accepts(event.Name) {
					continue
				}

				var op ports.FileOperation
				switch {
				case event.Has(fsnotify.Create):
					op = ports.FileCreated
				case event.Has(fsnotify.Write):
					op = ports.FileModified
				case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
					op = ports.FileDeleted
				default:
					continue
				}

				select {
				case events <- ports.FileEvent{Path: event.Name, Operation: op}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watch error", "dir", dir, "error", err)
			}
		}
	}()

	return events, nil
}

// Stop stops the watcher.
func (w *FSNotifyWatcher) Stop() error {
	return w.watcher.Close()
}

// accepts skips hidden and editor temp files.
func (w *FSNotifyWatcher) accepts(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") {
		return false
	}
	return w.extensions[strings.ToLower(filepath.Ext(base))]
}
