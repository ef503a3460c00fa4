// Package loader reads local files into uploads for the backend.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
)

// ErrUnsupported is returned for extensions no loader handles.
var ErrUnsupported = errors.New("unsupported file type")

// MaxFileSize caps a single upload.
const MaxFileSize = 64 << 20

// ChatExportLoader loads chat exports (.txt, .json, .zip, .csv).
type ChatExportLoader struct{}

// NewChatExportLoader creates a new chat export loader.
func NewChatExportLoader() *ChatExportLoader {
	return &ChatExportLoader{}
}

// Load reads a chat export from the given path.
func (l *ChatExportLoader) Load(ctx context.Context, path string) (*entities.UploadFile, error) {
	return readFile(ctx, path, entities.UploadChat)
}

// SupportedExtensions returns file extensions this loader handles.
func (l *ChatExportLoader) SupportedExtensions() []string {
	return []string{".txt", ".json", ".zip", ".csv"}
}

// PDFLoader loads PDF documents and checks they open.
type PDFLoader struct {
	inspector ports.PDFInspector
}

// NewPDFLoader creates a PDF loader that validates files with inspector.
func NewPDFLoader(inspector ports.PDFInspector) *PDFLoader {
	return &PDFLoader{inspector: inspector}
}

// Load reads a PDF and records its page count.
func (l *PDFLoader) Load(ctx context.Context, path string) (*entities.UploadFile, error) {
	file, err := readFile(ctx, path, entities.UploadPDF)
	if err != nil {
		return nil, err
	}
	if l.inspector == nil {
		return file, nil
	}

	pages, err := l.inspector.PageCount(file.Data)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", file.Name, err)
	}
	file.Pages = pages
	return file, nil
}

// SupportedExtensions returns file extensions.
func (l *PDFLoader) SupportedExtensions() []string {
	return []string{".pdf"}
}

// MultiLoader dispatches on the file extension.
type MultiLoader struct {
	loaders map[string]ports.FileLoader
}

// NewMultiLoader creates a loader for PDFs and chat exports.
func NewMultiLoader(inspector ports.PDFInspector) *MultiLoader {
	m := &MultiLoader{loaders: make(map[string]ports.FileLoader)}
	m.Register(NewPDFLoader(inspector))
	m.Register(NewChatExportLoader())
	return m
}

// Register adds l for every extension it supports.
func (m *MultiLoader) Register(l ports.FileLoader) {
	for _, ext := range l.SupportedExtensions() {
		m.loaders[ext] = l
	}
}

// Load dispatches to the appropriate loader based on extension.
func (m *MultiLoader) Load(ctx context.Context, path string) (*entities.UploadFile, error) {
	ext := strings.ToLower(filepath.Ext(path))
	l, ok := m.loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
	}
	return l.Load(ctx, path)
}

// Supports reports whether path has a handled extension.
func (m *MultiLoader) Supports(path string) bool {
	_, ok := m.loaders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// SupportedExtensions returns all supported extensions, sorted.
func (m *MultiLoader) SupportedExtensions() []string {
	exts := make([]string, 0, len(m.loaders))
	for ext := range m.loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func readFile(ctx context.Context, path string, kind entities.UploadKind) (*entities.UploadFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%s exceeds %d MiB", filepath.Base(path), MaxFileSize>>20)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &entities.UploadFile{
		Name:    filepath.Base(path),
		Path:    path,
		Kind:    kind,
		Data:    data,
		ModTime: info.ModTime(),
	}, nil
}
