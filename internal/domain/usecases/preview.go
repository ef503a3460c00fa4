package usecases

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
)

// Zoom bounds of the PDF viewer, in percent.
const (
	MinZoom     = 50
	MaxZoom     = 200
	ZoomStep    = 25
	DefaultZoom = 100
)

// PreviewState describes an open PDF viewer.
type PreviewState struct {
	Source    entities.PdfSourceInfo
	Page      int
	Zoom      int
	PageCount int // 0 until the file has been inspected
}

// ViewerURL returns <file_url>#page=N, with &zoom=Z when not at 100%.
func (s PreviewState) ViewerURL() string {
	u := s.Source.FileURL
	if s.Page <= 0 {
		return u
	}
	u += "#page=" + strconv.Itoa(s.Page)
	if s.Zoom != DefaultZoom {
		u += "&zoom=" + strconv.Itoa(s.Zoom)
	}
	return u
}

// HasPrev reports whether a previous page exists.
func (s PreviewState) HasPrev() bool {
	return s.Page > 1
}

// HasNext reports whether a next page exists. Unknown page counts allow it.
func (s PreviewState) HasNext() bool {
	return s.PageCount == 0 || s.Page < s.PageCount
}

// SearchText returns the text to look for on the page.
func (s PreviewState) SearchText() string {
	if s.Source.SearchText != "" {
		return s.Source.SearchText
	}
	return s.Source.ContentPreview
}

// FileStatusError reports a non-2xx answer to the HEAD check of a cited file.
type FileStatusError struct {
	URL        string
	StatusCode int
}

func (e *FileStatusError) Error() string {
	return fmt.Sprintf("HEAD %s: HTTP %d", e.URL, e.StatusCode)
}

// HTTPStatus implements ports.StatusCarrier.
func (e *FileStatusError) HTTPStatus() int {
	return e.StatusCode
}

// Preview owns the PDF viewer.
type Preview struct {
	files     ports.FileService
	inspector ports.PDFInspector
	notifier  ports.Notifier
	logger    *slog.Logger

	mu    sync.Mutex
	state *PreviewState
}

// NewPreview creates a closed viewer.
func NewPreview(files ports.FileService, inspector ports.PDFInspector, notifier ports.Notifier, logger *slog.Logger) *Preview {
	return &Preview{
		files:     files,
		inspector: inspector,
		notifier:  notifierOrDiscard(notifier),
		logger:    loggerOrDefault(logger),
	}
}

// Open checks that the cited file is reachable and opens the viewer on
// the cited page. Unreachable files leave the viewer unchanged.
func (p *Preview) Open(ctx context.Context, src entities.PdfSourceInfo) (*PreviewState, error) {
	if strings.TrimSpace(src.FileURL) == "" {
		p.notifier.Notify(failure("PDF URL invalid", fmt.Sprintf("File %s has no valid URL.", src.FileName)))
		return nil, fmt.Errorf("%w: %s", ErrNoFileURL, src.FileName)
	}

	code, err := p.files.ProbeFile(ctx, src.FileURL)
	if err == nil && (code < 200 || code > 299) {
		err = &FileStatusError{URL: src.FileURL, StatusCode: code}
	}
	if err != nil {
		p.logger.Warn("pdf not accessible", "file", src.FileName, "url", src.FileURL, "error", err)
		p.notifier.Notify(failure("PDF not accessible",
			fmt.Sprintf("File %s was not found or cannot be accessed. Error: %v", src.FileName, err)))
		return nil, fmt.Errorf("%w: %s: %w", ErrFileNotAccessible, src.FileName, err)
	}

	page := src.Page
	if page < 1 {
		page = 1
	}
	state := &PreviewState{Source: src, Page: page, Zoom: DefaultZoom}

	p.mu.Lock()
	p.state = state
	p.mu.Unlock()

	s := *state
	return &s, nil
}

// State returns the open viewer, if any.
func (p *Preview) State() (PreviewState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == nil {
		return PreviewState{}, false
	}
	return *p.state, true
}

// Close closes the viewer.
func (p *Preview) Close() {
	p.mu.Lock()
	p.state = nil
	p.mu.Unlock()
}

// NextPage moves forward one page, stopping at the last known page.
func (p *Preview) NextPage() (PreviewState, error) {
	return p.update(func(s *PreviewState) {
		if s.HasNext() {
			s.Page++
		}
	})
}

// PrevPage moves back one page, stopping at page 1.
func (p *Preview) PrevPage() (PreviewState, error) {
	return p.update(func(s *PreviewState) {
		if s.HasPrev() {
			s.Page--
		}
	})
}

// GoTo jumps to page n, clamped to the known range.
func (p *Preview) GoTo(n int) (PreviewState, error) {
	return p.update(func(s *PreviewState) {
		if s.PageCount > 0 && n > s.PageCount {
			n = s.PageCount
		}
		if n < 1 {
			n = 1
		}
		s.Page = n
	})
}

// ZoomIn raises the zoom one step, up to MaxZoom.
func (p *Preview) ZoomIn() (PreviewState, error) {
	return p.update(func(s *PreviewState) {
		s.Zoom = min(s.Zoom+ZoomStep, MaxZoom)
	})
}

// ZoomOut lowers the zoom one step, down to MinZoom.
func (p *Preview) ZoomOut() (PreviewState, error) {
	return p.update(func(s *PreviewState) {
		s.Zoom = max(s.Zoom-ZoomStep, MinZoom)
	})
}

// PageText downloads the open file and extracts the text of the current page.
// The page count learned from the file bounds later navigation.
func (p *Preview) PageText(ctx context.Context) (string, error) {
	state, ok := p.State()
	if !ok {
		return "", ErrNoPreview
	}
	if p.inspector == nil {
		return "", fmt.Errorf("no pdf inspector configured")
	}

	var buf bytes.Buffer
	if _, err := p.files.FetchFile(ctx, state.Source.FileURL, &buf); err != nil {
		return "", fmt.Errorf("fetching %s: %w", state.Source.FileName, err)
	}
	data := buf.Bytes()

	count, err := p.inspector.PageCount(data)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", state.Source.FileName, err)
	}
	p.mu.Lock()
	if p.state != nil && p.state.Source.FileURL == state.Source.FileURL {
		p.state.PageCount = count
	}
	p.mu.Unlock()

	text, err := p.inspector.PageText(data, state.Page)
	if err != nil {
		return "", fmt.Errorf("reading page %d of %s: %w", state.Page, state.Source.FileName, err)
	}
	return text, nil
}

func (p *Preview) update(fn func(*PreviewState)) (PreviewState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == nil {
		return PreviewState{}, ErrNoPreview
	}
	fn(p.state)
	return *p.state, nil
}
