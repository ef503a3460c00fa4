package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
)

// DefaultSettle is how long a file must stay unchanged before upload.
const DefaultSettle = 2 * time.Second

// AutoUpload uploads files dropped into a watched directory.
type AutoUpload struct {
	watcher ports.FileWatcher
	loader  ports.FileLoader
	pdfs    *PDFCollections
	chats   *ChatCollections
	settle  time.Duration
	logger  *slog.Logger
}

// NewAutoUpload wires a watcher to the collection use cases.
func NewAutoUpload(
	watcher ports.FileWatcher,
	loader ports.FileLoader,
	pdfs *PDFCollections,
	chats *ChatCollections,
	settle time.Duration,
	logger *slog.Logger,
) *AutoUpload {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &AutoUpload{
		watcher: watcher,
		loader:  loader,
		pdfs:    pdfs,
		chats:   chats,
		settle:  settle,
		logger:  loggerOrDefault(logger),
	}
}

// Run watches dir until ctx is done. Each file is uploaded once it has
// been quiet for the settle period; PDFs become PDF collections and
// everything else is imported as a chat export.
func (a *AutoUpload) Run(ctx context.Context, dir string) error {
	events, err := a.watcher.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	a.logger.Info("watching drop folder", "dir", dir, "settle", a.settle)

	tick := max(a.settle/4, 10*time.Millisecond)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	pending := make(map[string]time.Time)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			a.logger.Debug("file event", "path", ev.Path, "op", ev.Operation)
			if ev.Operation == ports.FileDeleted {
				delete(pending, ev.Path)
				continue
			}
			pending[ev.Path] = time.Now().Add(a.settle)
		case now := <-ticker.C:
			for path, due := range pending {
				if now.Before(due) {
					continue
				}
				delete(pending, path)
				a.upload(ctx, path)
			}
		}
	}
}

func (a *AutoUpload) upload(ctx context.Context, path string) {
	file, err := a.loader.Load(ctx, path)
	if err != nil {
		a.logger.Warn("skipping file", "path", path, "error", err)
		return
	}

	switch file.Kind {
	case entities.UploadPDF:
		_, err = a.pdfs.Upload(ctx, []entities.UploadFile{*file})
	case entities.UploadChat:
		_, err = a.chats.Upload(ctx, *file)
	default:
		err = fmt.Errorf("unknown upload kind %q", file.Kind)
	}
	if err != nil {
		a.logger.Warn("auto upload failed", "path", path, "error", err)
		return
	}
	a.logger.Info("auto uploaded", "path", path, "kind", file.Kind)
}
