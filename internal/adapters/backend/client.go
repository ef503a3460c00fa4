// Package backend implements the domain ports against the document QA HTTP API.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/0xcro3dile/docqa-go/internal/adapters/rest"
	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
)

var _ ports.Backend = (*Client)(nil)

// Options tunes a Client. The zero value is usable.
type Options struct {
	QueryPath  string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *slog.Logger
	Metrics    *rest.Metrics
}

// Client talks to the backend through the resource registry.
type Client struct {
	registry *rest.Registry
	tables   *rest.RequestHandler
	table    *rest.RequestHandler
	files    *rest.RequestHandler

	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// New creates a backend client for baseURL.
func New(baseURL string, o Options) *Client {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Transport: o.Metrics.Transport(nil)}
	}

	opts := []rest.Option{
		rest.WithHTTPClient(o.HTTPClient),
		rest.WithTimeout(o.Timeout),
		rest.WithLogger(o.Logger),
		rest.WithMetrics(o.Metrics),
	}
	return &Client{
		registry:   rest.NewRegistry(baseURL, o.QueryPath, opts...),
		tables:     rest.NewRequestHandler(baseURL, rest.EndpointDatabaseTables, opts...),
		table:      rest.NewRequestHandler(baseURL, rest.EndpointDatabaseTable, opts...),
		files:      rest.NewRequestHandler(baseURL, rest.EndpointFiles, opts...),
		httpClient: o.HTTPClient,
		timeout:    o.Timeout,
		logger:     o.Logger,
	}
}

// Registry exposes the underlying resource handlers.
func (c *Client) Registry() *rest.Registry {
	return c.registry
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.registry.Health.BaseURL()
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) (*entities.HealthResponse, error) {
	var out entities.HealthResponse
	if err := c.registry.Health.Get(ctx, nil, &out); err != nil {
		return nil, fmt.Errorf("checking health: %w", err)
	}
	return &out, nil
}

// AvailableModels lists the selectable models per provider.
func (c *Client) AvailableModels(ctx context.Context) (*entities.AvailableModelsResponse, error) {
	var out entities.AvailableModelsResponse
	if err := c.registry.AvailableModels.Get(ctx, nil, &out); err != nil {
		return nil, fmt.Errorf("fetching available models: %w", err)
	}
	return &out, nil
}

// HybridQuery sends one question and returns the sanitized answer.
func (c *Client) HybridQuery(ctx context.Context, req entities.HybridQueryRequest) (*entities.HybridResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out entities.HybridResponse
	if err := c.registry.HybridQuery.Store(ctx, req, &out); err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	out.Sanitize()
	if out.Quarantined > 0 {
		c.logger.Warn("dropped malformed sources from answer", "count", out.Quarantined)
	}
	return &out, nil
}

// UploadPDFs sends the files as one multipart request.
func (c *Client) UploadPDFs(ctx context.Context, files []entities.UploadFile) (*entities.UploadResponse, error) {
	if len(files) == 0 {
		return nil, errors.New("uploading pdfs: no files")
	}
	form := rest.NewForm()
	for _, f := range files {
		form.AddFile("files", f.Name, f.Data)
	}

	var out entities.UploadResponse
	if err := c.registry.PdfUpload.Store(ctx, form, &out); err != nil {
		return nil, fmt.Errorf("uploading pdfs: %w", err)
	}
	return &out, nil
}

// ListPDFCollections returns every PDF collection.
func (c *Client) ListPDFCollections(ctx context.Context) ([]entities.PdfCollection, error) {
	var out []entities.PdfCollection
	if err := c.registry.PdfCollections.Get(ctx, nil, &out); err != nil {
		return nil, fmt.Errorf("listing pdf collections: %w", err)
	}
	return out, nil
}

// DeletePDFCollection removes a PDF collection.
func (c *Client) DeletePDFCollection(ctx context.Context, collectionID string) (*entities.DeleteResponse, error) {
	var out entities.DeleteResponse
	if err := c.registry.PdfCollection.Delete(ctx, collectionID, &out); err != nil {
		return nil, fmt.Errorf("deleting pdf collection %s: %w", collectionID, err)
	}
	return &out, nil
}

// UploadChat sends one chat export. An empty platform means WhatsApp.
func (c *Client) UploadChat(ctx context.Context, file entities.UploadFile, platform entities.ChatPlatform) (*entities.ChatUploadResponse, error) {
	if platform == "" {
		platform = entities.PlatformWhatsApp
	}
	platform, err := entities.ParseChatPlatform(string(platform))
	if err != nil {
		return nil, err
	}

	form := rest.NewForm().
		AddFile("file", file.Name, file.Data).
		AddField("platform", string(platform))

	var out entities.ChatUploadResponse
	if err := c.registry.ChatUpload.Store(ctx, form, &out); err != nil {
		return nil, fmt.Errorf("uploading chat export: %w", err)
	}
	return &out, nil
}

// ListChatCollections returns every chat collection.
func (c *Client) ListChatCollections(ctx context.Context) ([]entities.ChatCollection, error) {
	var out []entities.ChatCollection
	if err := c.registry.ChatCollections.Get(ctx, nil, &out); err != nil {
		return nil, fmt.Errorf("listing chat collections: %w", err)
	}
	return out, nil
}

// DeleteChatCollection removes a chat collection.
func (c *Client) DeleteChatCollection(ctx context.Context, collectionID string) (*entities.DeleteResponse, error) {
	var out entities.DeleteResponse
	if err := c.registry.ChatCollection.Delete(ctx, collectionID, &out); err != nil {
		return nil, fmt.Errorf("deleting chat collection %s: %w", collectionID, err)
	}
	return &out, nil
}

// ListTables returns the table summaries of the backend database.
func (c *Client) ListTables(ctx context.Context) ([]entities.DatabaseTable, error) {
	var out entities.TableList
	if err := c.tables.Get(ctx, nil, &out); err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	return out.Tables, nil
}

// DescribeTable returns the columns and sample rows of one table.
func (c *Client) DescribeTable(ctx context.Context, name string) (*entities.TableDetail, error) {
	var out entities.TableDetail
	if err := c.table.Find(ctx, name, &out); err != nil {
		return nil, fmt.Errorf("describing table %s: %w", name, err)
	}
	if out.Name == "" {
		out.Name = name
	}
	return &out, nil
}

// DownloadFile streams a stored PDF into w.
func (c *Client) DownloadFile(ctx context.Context, collectionID, fileName string, w io.Writer) (int64, error) {
	n, err := c.files.Download(ctx, w, collectionID, fileName)
	if err != nil {
		return n, fmt.Errorf("downloading %s: %w", fileName, err)
	}
	return n, nil
}

// ProbeFile checks that a cited file is reachable with a HEAD request.
// Any response is returned as its status code; only transport failures are errors.
func (c *Client) ProbeFile(ctx context.Context, fileURL string) (int, error) {
	resp, cancel, err := c.fileRequest(ctx, http.MethodHead, fileURL)
	if err != nil {
		return 0, err
	}
	defer cancel()
	resp.Body.Close()
	return resp.StatusCode, nil
}

// FetchFile streams a cited file into w.
func (c *Client) FetchFile(ctx context.Context, fileURL string, w io.Writer) (int64, error) {
	resp, cancel, err := c.fileRequest(ctx, http.MethodGet, fileURL)
	if err != nil {
		return 0, err
	}
	defer cancel()
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return 0, &rest.StatusError{
			Method:     http.MethodGet,
			URL:        fileURL,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       data,
		}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("reading %s: %w", fileURL, err)
	}
	return n, nil
}

func (c *Client) fileRequest(ctx context.Context, method, fileURL string) (*http.Response, context.CancelFunc, error) {
	if !strings.HasPrefix(fileURL, "http://") && !strings.HasPrefix(fileURL, "https://") {
		return nil, nil, fmt.Errorf("file url %q: not an http url", fileURL)
	}

	cancel := context.CancelFunc(func() {})
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}
	req, err := http.NewRequestWithContext(ctx, method, fileURL, nil)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("%s %s: %w", method, fileURL, err)
	}
	c.logger.Debug("file request", "method", method, "url", fileURL, "status", resp.StatusCode)
	return resp, cancel, nil
}
