package usecases

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/0xcro3dile/docqa-go/internal/adapters/rest"
	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
)

var _ ports.Backend = (*mockBackend)(nil)

// mockBackend implements ports.Backend for testing
type mockBackend struct {
	mu    sync.Mutex
	calls []string

	healthFn     func() (*entities.HealthResponse, error)
	modelsFn     func() (*entities.AvailableModelsResponse, error)
	queryFn      func(ctx context.Context, req entities.HybridQueryRequest) (*entities.HybridResponse, error)
	uploadPDFsFn func(files []entities.UploadFile) (*entities.UploadResponse, error)
	listPDFsFn   func() ([]entities.PdfCollection, error)
	deletePDFFn  func(id string) (*entities.DeleteResponse, error)
	uploadChatFn func(file entities.UploadFile, p entities.ChatPlatform) (*entities.ChatUploadResponse, error)
	listChatsFn  func() ([]entities.ChatCollection, error)
	deleteChatFn func(id string) (*entities.DeleteResponse, error)
	listTablesFn func() ([]entities.DatabaseTable, error)
	describeFn   func(name string) (*entities.TableDetail, error)
	probeFn      func(url string) (int, error)
	fetchFn      func(url string, w io.Writer) (int64, error)
	downloadFn   func(collectionID, fileName string, w io.Writer) (int64, error)
}

func (m *mockBackend) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *mockBackend) count(call string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (m *mockBackend) Health(ctx context.Context) (*entities.HealthResponse, error) {
	m.record("health")
	if m.healthFn != nil {
		return m.healthFn()
	}
	return &entities.HealthResponse{Status: "healthy", Initialized: true}, nil
}

func (m *mockBackend) AvailableModels(ctx context.Context) (*entities.AvailableModelsResponse, error) {
	m.record("models")
	if m.modelsFn != nil {
		return m.modelsFn()
	}
	return nil, errors.New("not configured")
}

func (m *mockBackend) HybridQuery(ctx context.Context, req entities.HybridQueryRequest) (*entities.HybridResponse, error) {
	m.record("query")
	if m.queryFn != nil {
		return m.queryFn(ctx, req)
	}
	return &entities.HybridResponse{Answer: "mocked answer"}, nil
}

func (m *mockBackend) UploadPDFs(ctx context.Context, files []entities.UploadFile) (*entities.UploadResponse, error) {
	m.record("upload_pdfs")
	if m.uploadPDFsFn != nil {
		return m.uploadPDFsFn(files)
	}
	return &entities.UploadResponse{CollectionID: "c-new", FileCount: len(files)}, nil
}

func (m *mockBackend) ListPDFCollections(ctx context.Context) ([]entities.PdfCollection, error) {
	m.record("list_pdfs")
	if m.listPDFsFn != nil {
		return m.listPDFsFn()
	}
	return nil, nil
}

func (m *mockBackend) DeletePDFCollection(ctx context.Context, id string) (*entities.DeleteResponse, error) {
	m.record("delete_pdf")
	if m.deletePDFFn != nil {
		return m.deletePDFFn(id)
	}
	return &entities.DeleteResponse{Message: "deleted"}, nil
}

func (m *mockBackend) UploadChat(ctx context.Context, file entities.UploadFile, p entities.ChatPlatform) (*entities.ChatUploadResponse, error) {
	m.record("upload_chat")
	if m.uploadChatFn != nil {
		return m.uploadChatFn(file, p)
	}
	return &entities.ChatUploadResponse{CollectionID: "k-new", Platform: p}, nil
}

func (m *mockBackend) DownloadFile(ctx context.Context, collectionID, fileName string, w io.Writer) (int64, error) {
	m.record("download")
	if m.downloadFn != nil {
		return m.downloadFn(collectionID, fileName, w)
	}
	return 0, nil
}

func (m *mockBackend) ListChatCollections(ctx context.Context) ([]entities.ChatCollection, error) {
	m.record("list_chats")
	if m.listChatsFn != nil {
		return m.listChatsFn()
	}
	return nil, nil
}

func (m *mockBackend) DeleteChatCollection(ctx context.Context, id string) (*entities.DeleteResponse, error) {
	m.record("delete_chat")
	if m.deleteChatFn != nil {
		return m.deleteChatFn(id)
	}
	return &entities.DeleteResponse{Message: "deleted"}, nil
}

func (m *mockBackend) ListTables(ctx context.Context) ([]entities.DatabaseTable, error) {
	m.record("list_tables")
	if m.listTablesFn != nil {
		return m.listTablesFn()
	}
	return nil, nil
}

func (m *mockBackend) DescribeTable(ctx context.Context, name string) (*entities.TableDetail, error) {
	m.record("describe")
	if m.describeFn != nil {
		return m.describeFn(name)
	}
	return &entities.TableDetail{Name: name}, nil
}

func (m *mockBackend) ProbeFile(ctx context.Context, url string) (int, error) {
	m.record("probe")
	if m.probeFn != nil {
		return m.probeFn(url)
	}
	return http.StatusOK, nil
}

func (m *mockBackend) FetchFile(ctx context.Context, url string, w io.Writer) (int64, error) {
	m.record("fetch")
	if m.fetchFn != nil {
		return m.fetchFn(url, w)
	}
	return 0, nil
}

// recordingNotifier implements ports.Notifier for testing
type recordingNotifier struct {
	mu    sync.Mutex
	items []entities.Notification
}

func (r *recordingNotifier) Notify(n entities.Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

func (r *recordingNotifier) all() []entities.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entities.Notification(nil), r.items...)
}

func (r *recordingNotifier) last() entities.Notification {
	items := r.all()
	if len(items) == 0 {
		return entities.Notification{}
	}
	return items[len(items)-1]
}

func statusError(code int) error {
	return &rest.StatusError{
		Method:     http.MethodPost,
		URL:        "http://127.0.0.1:8000/x",
		StatusCode: code,
		Status:     http.StatusText(code),
	}
}
