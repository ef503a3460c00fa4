// Package ports defines the boundaries between the use cases and the outside world.
// Use cases depend on these abstractions; adapters implement them.
package ports

import (
	"context"
	"io"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
)

// SystemService reports backend status and model options.
type SystemService interface {
	Health(ctx context.Context) (*entities.HealthResponse, error)
	AvailableModels(ctx context.Context) (*entities.AvailableModelsResponse, error)
}

// QueryService answers questions.
type QueryService interface {
	HybridQuery(ctx context.Context, req entities.HybridQueryRequest) (*entities.HybridResponse, error)
}

// PDFCollectionService manages uploaded PDF collections.
type PDFCollectionService interface {
	UploadPDFs(ctx context.Context, files []entities.UploadFile) (*entities.UploadResponse, error)
	ListPDFCollections(ctx context.Context) ([]entities.PdfCollection, error)
	DeletePDFCollection(ctx context.Context, collectionID string) (*entities.DeleteResponse, error)

	// DownloadFile streams a stored PDF of a collection into w.
	DownloadFile(ctx context.Context, collectionID, fileName string, w io.Writer) (int64, error)
}

// ChatCollectionService manages imported chat exports.
type ChatCollectionService interface {
	UploadChat(ctx context.Context, file entities.UploadFile, platform entities.ChatPlatform) (*entities.ChatUploadResponse, error)
	ListChatCollections(ctx context.Context) ([]entities.ChatCollection, error)
	DeleteChatCollection(ctx context.Context, collectionID string) (*entities.DeleteResponse, error)
}

// DatabaseService browses backend database tables.
type DatabaseService interface {
	ListTables(ctx context.Context) ([]entities.DatabaseTable, error)
	DescribeTable(ctx context.Context, name string) (*entities.TableDetail, error)
}

// FileService reaches the PDF files cited by answers.
type FileService interface {
	// ProbeFile issues a HEAD request and returns the status code.
	ProbeFile(ctx context.Context, fileURL string) (int, error)

	// FetchFile streams the file body into w.
	FetchFile(ctx context.Context, fileURL string, w io.Writer) (int64, error)
}

// Backend is the full set of backend capabilities.
type Backend interface {
	SystemService
	QueryService
	PDFCollectionService
	ChatCollectionService
	DatabaseService
	FileService
}

// StatusCarrier is implemented by errors that carry a backend HTTP status.
type StatusCarrier interface {
	HTTPStatus() int
}

// Notifier surfaces a notification to the user.
type Notifier interface {
	Notify(n entities.Notification)
}

// PDFInspector reads PDFs locally.
type PDFInspector interface {
	// PageCount returns the number of pages.
	PageCount(data []byte) (int, error)

	// PageText extracts the plain text of a 1-based page.
	PageText(data []byte, page int) (string, error)
}

// FileLoader reads local files into uploads.
type FileLoader interface {
	Load(ctx context.Context, path string) (*entities.UploadFile, error)
	SupportedExtensions() []string
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)

func (op FileOperation) String() string {
	switch op {
	case FileCreated:
		return "created"
	case FileModified:
		return "modified"
	case FileDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}
