// Package rest binds backend resource paths to HTTP verbs.
// A RequestHandler knows one resource; a Registry groups one handler per
// backend capability.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://127.0.0.1:8000"

const maxErrorBody = 4 << 10

// RequestHandler issues requests against <base>/<resource>.
// It is safe for concurrent use.
type RequestHandler struct {
	baseURL  string
	resource string
	client   *http.Client
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *Metrics
}

// Option configures a RequestHandler.
type Option func(*RequestHandler)

// WithHTTPClient sets the HTTP client used for every call.
func WithHTTPClient(c *http.Client) Option {
	return func(h *RequestHandler) {
		if c != nil {
			h.client = c
		}
	}
}

// WithTimeout bounds each call. Zero leaves calls bounded by the context only.
func WithTimeout(d time.Duration) Option {
	return func(h *RequestHandler) { h.timeout = d }
}

// WithLogger sets the logger for request traces.
func WithLogger(l *slog.Logger) Option {
	return func(h *RequestHandler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithMetrics records every call in m.
func WithMetrics(m *Metrics) Option {
	return func(h *RequestHandler) { h.metrics = m }
}

// NewRequestHandler creates a handler for resource under baseURL.
func NewRequestHandler(baseURL, resource string, opts ...Option) *RequestHandler {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	h := &RequestHandler{
		baseURL:  baseURL,
		resource: strings.Trim(resource, "/"),
		client:   http.DefaultClient,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Resource returns the resource path this handler is bound to.
func (h *RequestHandler) Resource() string {
	return h.resource
}

// BaseURL returns the backend base URL.
func (h *RequestHandler) BaseURL() string {
	return h.baseURL
}

// URL builds <base>/<resource>[/<segment>...][?params]. Segments are path-escaped.
func (h *RequestHandler) URL(params url.Values, segments ...string) string {
	var b strings.Builder
	b.WriteString(h.baseURL)
	if h.resource != "" {
		b.WriteByte('/')
		b.WriteString(h.resource)
	}
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	if len(params) > 0 {
		b.WriteByte('?')
		b.WriteString(params.Encode())
	}
	return b.String()
}

// Get lists or queries the resource. An empty 2xx body is not an error:
// out is left untouched, so callers relying on a payload must check it.
func (h *RequestHandler) Get(ctx context.Context, params url.Values, out any) error {
	return h.call(ctx, http.MethodGet, h.URL(params), nil, "", out)
}

// Find fetches one item by id. As with Get, an empty 2xx body leaves out as it was.
func (h *RequestHandler) Find(ctx context.Context, id string, out any) error {
	return h.call(ctx, http.MethodGet, h.URL(nil, id), nil, "", out)
}

// Store creates on the resource. A *Form body is sent as multipart,
// anything else as JSON.
func (h *RequestHandler) Store(ctx context.Context, body any, out any) error {
	payload, contentType, err := encodeBody(body)
	if err != nil {
		return err
	}
	return h.call(ctx, http.MethodPost, h.URL(nil), payload, contentType, out)
}

// Update replaces one item by id with a JSON body. A *Form is rejected with ErrFormBody.
func (h *RequestHandler) Update(ctx context.Context, id string, body any, out any) error {
	if _, ok := body.(*Form); ok {
		return ErrFormBody
	}
	payload, contentType, err := encodeJSON(body)
	if err != nil {
		return err
	}
	return h.call(ctx, http.MethodPut, h.URL(nil, id), payload, contentType, out)
}

// Delete removes one item by id.
func (h *RequestHandler) Delete(ctx context.Context, id string, out any) error {
	return h.call(ctx, http.MethodDelete, h.URL(nil, id), nil, "", out)
}

// Download streams the raw body of <resource>/<segments...> into w.
func (h *RequestHandler) Download(ctx context.Context, w io.Writer, segments ...string) (int64, error) {
	target := h.URL(nil, segments...)
	resp, cancel, err := h.send(ctx, http.MethodGet, target, nil, "")
	if err != nil {
		return 0, err
	}
	defer cancel()
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("reading %s: %w", target, err)
	}
	return n, nil
}

func (h *RequestHandler) call(ctx context.Context, method, target string, body io.Reader, contentType string, out any) error {
	resp, cancel, err := h.send(ctx, method, target, body, contentType)
	if err != nil {
		return err
	}
	defer cancel()
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &DecodeError{URL: target, Err: err}
	}
	return nil
}

// send performs one attempt. On success the caller owns resp.Body and must call cancel.
func (h *RequestHandler) send(ctx context.Context, method, target string, body io.Reader, contentType string) (*http.Response, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if h.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		cancel()
		h.metrics.observe(h.resource, method, 0, start)
		h.logger.Debug("backend request failed", "method", method, "url", target, "error", err)
		return nil, nil, fmt.Errorf("%s %s: %w", method, target, err)
	}

	h.metrics.observe(h.resource, method, resp.StatusCode, start)
	h.logger.Debug("backend request",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer cancel()
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, nil, &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       data,
		}
	}
	return resp, cancel, nil
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *Form:
		buf, contentType, err := b.Encode()
		if err != nil {
			return nil, "", fmt.Errorf("encoding form: %w", err)
		}
		return buf, contentType, nil
	default:
		return encodeJSON(b)
	}
}

func encodeJSON(body any) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("encoding request body: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}
