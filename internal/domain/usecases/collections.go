package usecases

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
)

// listState holds a list that is replaced wholesale on refresh.
type listState[T any] struct {
	mu     sync.Mutex
	items  []T
	loaded bool
}

func (s *listState[T]) set(items []T) {
	s.mu.Lock()
	s.items = items
	s.loaded = true
	s.mu.Unlock()
}

func (s *listState[T]) snapshot() ([]T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.items...), s.loaded
}

// PDFCollections owns the list of uploaded PDF collections.
type PDFCollections struct {
	svc      ports.PDFCollectionService
	notifier ports.Notifier
	logger   *slog.Logger
	list     listState[entities.PdfCollection]
}

// NewPDFCollections creates an empty, not yet loaded list.
func NewPDFCollections(svc ports.PDFCollectionService, notifier ports.Notifier, logger *slog.Logger) *PDFCollections {
	return &PDFCollections{
		svc:      svc,
		notifier: notifierOrDiscard(notifier),
		logger:   loggerOrDefault(logger),
	}
}

// Collections returns the last fetched list.
func (uc *PDFCollections) Collections() []entities.PdfCollection {
	items, _ := uc.list.snapshot()
	return items
}

// Loaded reports whether a refresh has succeeded.
func (uc *PDFCollections) Loaded() bool {
	_, ok := uc.list.snapshot()
	return ok
}

// Refresh replaces the list with the backend's. On failure the list is unchanged.
func (uc *PDFCollections) Refresh(ctx context.Context) error {
	items, err := uc.svc.ListPDFCollections(ctx)
	if err != nil {
		uc.logger.Warn("fetching pdf collections failed", "error", err)
		uc.notifier.Notify(failure("Error", "Failed to fetch PDF collections"))
		return err
	}
	uc.list.set(items)
	return nil
}

// Upload sends files as a new collection and refreshes the list.
// An empty selection does nothing.
func (uc *PDFCollections) Upload(ctx context.Context, files []entities.UploadFile) (*entities.UploadResponse, error) {
	if len(files) == 0 {
		return nil, nil
	}

	resp, err := uc.svc.UploadPDFs(ctx, files)
	if err != nil {
		uc.logger.Warn("uploading pdfs failed", "files", len(files), "error", err)
		uc.notifier.Notify(failure("Upload Failed", "Failed to upload PDF files"))
		return nil, err
	}

	uc.notifier.Notify(success("Upload Successful", fmt.Sprintf("%d PDF(s) uploaded successfully", resp.FileCount)))
	uc.logger.Info("pdfs uploaded", "collection", resp.CollectionID, "files", resp.FileCount)
	_ = uc.Refresh(ctx)
	return resp, nil
}

// Download streams fileName of collectionID into w.
func (uc *PDFCollections) Download(ctx context.Context, collectionID, fileName string, w io.Writer) (int64, error) {
	if strings.TrimSpace(collectionID) == "" || strings.TrimSpace(fileName) == "" {
		return 0, ErrNoFileName
	}
	n, err := uc.svc.DownloadFile(ctx, collectionID, fileName, w)
	if err != nil {
		uc.logger.Warn("downloading pdf failed", "collection", collectionID, "file", fileName, "error", err)
		desc := fmt.Sprintf("Failed to download %s", fileName)
		if isNotFound(err) {
			desc = fmt.Sprintf("File %s was not found in collection %s", fileName, collectionID)
		}
		uc.notifier.Notify(failure("Download Failed", desc))
		return n, err
	}
	return n, nil
}

// Delete removes a collection and refreshes the list. On failure the list is unchanged.
func (uc *PDFCollections) Delete(ctx context.Context, collectionID string) error {
	if _, err := uc.svc.DeletePDFCollection(ctx, collectionID); err != nil {
		uc.logger.Warn("deleting pdf collection failed", "collection", collectionID, "error", err)
		desc := "Failed to delete collection"
		if isNotFound(err) {
			desc = fmt.Sprintf("Collection %s was not found", collectionID)
		}
		uc.notifier.Notify(failure("Delete Failed", desc))
		return err
	}

	uc.notifier.Notify(success("Collection Deleted", "Collection deleted successfully"))
	_ = uc.Refresh(ctx)
	return nil
}

// ChatCollections owns the list of imported chat exports.
type ChatCollections struct {
	svc      ports.ChatCollectionService
	notifier ports.Notifier
	logger   *slog.Logger
	list     listState[entities.ChatCollection]

	mu       sync.Mutex
	platform entities.ChatPlatform
}

// NewChatCollections creates an empty list with WhatsApp as upload platform.
func NewChatCollections(svc ports.ChatCollectionService, notifier ports.Notifier, logger *slog.Logger) *ChatCollections {
	return &ChatCollections{
		svc:      svc,
		notifier: notifierOrDiscard(notifier),
		logger:   loggerOrDefault(logger),
		platform: entities.PlatformWhatsApp,
	}
}

// Collections returns the last fetched list.
func (uc *ChatCollections) Collections() []entities.ChatCollection {
	items, _ := uc.list.snapshot()
	return items
}

// Platform returns the platform used for the next upload.
func (uc *ChatCollections) Platform() entities.ChatPlatform {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.platform
}

// SetPlatform selects the platform for the next upload.
func (uc *ChatCollections) SetPlatform(p entities.ChatPlatform) error {
	p, err := entities.ParseChatPlatform(string(p))
	if err != nil {
		return err
	}
	uc.mu.Lock()
	uc.platform = p
	uc.mu.Unlock()
	return nil
}

// Refresh replaces the list with the backend's. On failure the list is unchanged.
func (uc *ChatCollections) Refresh(ctx context.Context) error {
	items, err := uc.svc.ListChatCollections(ctx)
	if err != nil {
		uc.logger.Warn("fetching chat collections failed", "error", err)
		uc.notifier.Notify(failure("Error", "Failed to fetch chat collections"))
		return err
	}
	uc.list.set(items)
	return nil
}

// Upload imports one chat export with the selected platform and refreshes the list.
func (uc *ChatCollections) Upload(ctx context.Context, file entities.UploadFile) (*entities.ChatUploadResponse, error) {
	platform := uc.Platform()
	resp, err := uc.svc.UploadChat(ctx, file, platform)
	if err != nil {
		uc.logger.Warn("uploading chat export failed", "file", file.Name, "platform", platform, "error", err)
		uc.notifier.Notify(failure("Upload Failed", "Failed to upload chat file"))
		return nil, err
	}

	uc.notifier.Notify(success("Chat Upload Successful", fmt.Sprintf("%d messages processed", resp.MessageCount)))
	uc.logger.Info("chat export uploaded", "collection", resp.CollectionID, "messages", resp.MessageCount)
	_ = uc.Refresh(ctx)
	return resp, nil
}

// Delete removes a chat collection and refreshes the list. On failure the list is unchanged.
func (uc *ChatCollections) Delete(ctx context.Context, collectionID string) error {
	if _, err := uc.svc.DeleteChatCollection(ctx, collectionID); err != nil {
		uc.logger.Warn("deleting chat collection failed", "collection", collectionID, "error", err)
		desc := "Failed to delete chat collection"
		if isNotFound(err) {
			desc = fmt.Sprintf("Chat collection %s was not found", collectionID)
		}
		uc.notifier.Notify(failure("Delete Failed", desc))
		return err
	}

	uc.notifier.Notify(success("Chat Collection Deleted", "Chat collection deleted successfully"))
	_ = uc.Refresh(ctx)
	return nil
}
