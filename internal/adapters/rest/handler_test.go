package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRequestHandler_DefaultBaseURL(t *testing.T) {
	h := NewRequestHandler("", "health")
	if got := h.URL(nil); got != "http://127.0.0.1:8000/health" {
		t.Errorf("unexpected URL: %s", got)
	}
}

func TestRequestHandler_URL(t *testing.T) {
	h := NewRequestHandler("http://api.local/", "/api/v1/collection/")

	if got := h.URL(nil, "c1"); got != "http://api.local/api/v1/collection/c1" {
		t.Errorf("unexpected item URL: %s", got)
	}
	if got := h.URL(nil, "a b/c"); got != "http://api.local/api/v1/collection/a%20b%2Fc" {
		t.Errorf("segments should be escaped: %s", got)
	}

	params := url.Values{}
	params.Set("q", "a&b=c")
	if got := h.URL(params); got != "http://api.local/api/v1/collection?q=a%26b%3Dc" {
		t.Errorf("params should be encoded: %s", got)
	}
}

func TestRequestHandler_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/api/v1/collections" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "5" {
			t.Errorf("missing query param: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"collection_id":"c1"}]`))
	}))
	defer server.Close()

	h := NewRequestHandler(server.URL, EndpointPDFCollections)
	var out []map[string]string
	if err := h.Get(context.Background(), url.Values{"limit": {"5"}}, &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(out) != 1 || out[0]["collection_id"] != "c1" {
		t.Errorf("unexpected body: %v", out)
	}
}

func TestRequestHandler_StoreJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type: %s", ct)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["question"] != "What is the refund window?" {
			t.Errorf("unexpected body: %v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{"answer": "30 days"})
	}))
	defer server.Close()

	h := NewRequestHandler(server.URL, EndpointHybridQuery)
	var out struct {
		Answer string `json:"answer"`
	}
	err := h.Store(context.Background(), map[string]any{"question": "What is the refund window?"}, &out)
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if out.Answer != "30 days" {
		t.Errorf("unexpected answer: %s", out.Answer)
	}
}

func TestRequestHandler_StoreMultipart(t *testing.T) {
	pdf := []byte("%PDF-1.4\x00\x01binary")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if !strings.HasPrefix(ct, "multipart/form-data; boundary=") {
			t.Errorf("unexpected content type: %s", ct)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if r.FormValue("platform") != "slack" {
			t.Errorf("unexpected platform: %q", r.FormValue("platform"))
		}
		f, hdr, err := r.FormFile("files")
		if err != nil {
			t.Fatalf("missing file part: %v", err)
		}
		defer f.Close()
		got, _ := io.ReadAll(f)
		if !bytes.Equal(got, pdf) {
			t.Error("file payload was modified")
		}
		if hdr.Filename != "a.pdf" {
			t.Errorf("unexpected filename: %s", hdr.Filename)
		}
		w.Write([]byte(`{"collection_id":"c9"}`))
	}))
	defer server.Close()

	h := NewRequestHandler(server.URL, EndpointPDFUpload)
	form := NewForm().AddFile("files", "a.pdf", pdf).AddField("platform", "slack")
	var out map[string]string
	if err := h.Store(context.Background(), form, &out); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if out["collection_id"] != "c9" {
		t.Errorf("unexpected body: %v", out)
	}
}

func TestRequestHandler_DeletePath(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.Write([]byte(`{"message":"deleted"}`))
	}))
	defer server.Close()

	h := NewRequestHandler(server.URL, EndpointPDFCollection)
	if err := h.Delete(context.Background(), "c1", nil); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/api/v1/collection/c1" {
		t.Errorf("unexpected request: %s %s", gotMethod, gotPath)
	}
}

func TestRequestHandler_Update(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/items/7" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected a JSON body, got %q", ct)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	h := NewRequestHandler(server.URL, "items")
	var out map[string]any
	if err := h.Update(context.Background(), "7", map[string]int{"n": 1}, &out); err != nil {
		t.Errorf("empty 2xx body should not fail: %v", err)
	}
}

func TestRequestHandler_UpdateRejectsForm(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	h := NewRequestHandler(server.URL, "items")
	form := NewForm().AddField("name", "x")
	if err := h.Update(context.Background(), "7", form, nil); !errors.Is(err, ErrFormBody) {
		t.Errorf("expected ErrFormBody, got %v", err)
	}
	if calls != 0 {
		t.Errorf("no request should be sent, got %d", calls)
	}
}

func TestRequestHandler_GetEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	h := NewRequestHandler(server.URL, "items")
	out := struct {
		Name string `json:"name"`
	}{Name: "kept"}
	if err := h.Get(context.Background(), nil, &out); err != nil {
		t.Fatalf("empty 2xx body should not fail: %v", err)
	}
	if out.Name != "kept" {
		t.Errorf("out should be untouched, got %+v", out)
	}

	var item map[string]any
	if err := h.Find(context.Background(), "7", &item); err != nil || item != nil {
		t.Errorf("Find on an empty body = %v, %v", item, err)
	}
}

func TestRequestHandler_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Collection not found"}`))
	}))
	defer server.Close()

	h := NewRequestHandler(server.URL, EndpointPDFCollection)
	err := h.Delete(context.Background(), "missing", nil)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusNotFound || se.Method != http.MethodDelete {
		t.Errorf("unexpected error fields: %+v", se)
	}
	if se.Detail() != "Collection not found" {
		t.Errorf("unexpected detail: %q", se.Detail())
	}
	if code, ok := StatusCode(err); !ok || code != 404 {
		t.Errorf("StatusCode() = %d, %v", code, ok)
	}
}

func TestRequestHandler_StatusErrorBodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write(bytes.Repeat([]byte("x"), 10000))
	}))
	defer server.Close()

	err := NewRequestHandler(server.URL, "x").Get(context.Background(), nil, nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if len(se.Body) != 4096 {
		t.Errorf("expected body capped at 4096 bytes, got %d", len(se.Body))
	}
}

func TestRequestHandler_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer server.Close()

	var out map[string]any
	err := NewRequestHandler(server.URL, "health").Get(context.Background(), nil, &out)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestRequestHandler_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	err := NewRequestHandler(base, "health").Get(context.Background(), nil, nil)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if _, ok := StatusCode(err); ok {
		t.Error("transport error should carry no status")
	}
}

func TestRequestHandler_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := NewRequestHandler(server.URL, EndpointHybridQuery).Store(ctx, map[string]string{"question": "q"}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRequestHandler_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	h := NewRequestHandler(server.URL, "slow", WithTimeout(20*time.Millisecond))
	err := h.Get(context.Background(), nil, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestRequestHandler_Download(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/files/c1/policy.pdf" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	var buf bytes.Buffer
	n, err := NewRequestHandler(server.URL, EndpointFiles).Download(context.Background(), &buf, "c1", "policy.pdf")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if n != 8 || buf.String() != "%PDF-1.4" {
		t.Errorf("unexpected download: %d %q", n, buf.String())
	}
}

func TestRequestHandler_Metrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	client := &http.Client{Transport: m.Transport(nil)}

	ok := NewRequestHandler(server.URL, "health", WithMetrics(m), WithHTTPClient(client))
	missing := NewRequestHandler(server.URL, "missing", WithMetrics(m), WithHTTPClient(client))
	ok.Get(context.Background(), nil, nil)
	ok.Get(context.Background(), nil, nil)
	missing.Get(context.Background(), nil, nil)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("health", "GET", "200")); got != 2 {
		t.Errorf("expected 2 successful calls, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("missing", "GET", "404")); got != 1 {
		t.Errorf("expected 1 failed call, got %v", got)
	}
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry("http://api.local", "")
	if r.HybridQuery.Resource() != EndpointHybridQuery {
		t.Errorf("unexpected default query path: %s", r.HybridQuery.Resource())
	}
	if r.ChatCollection.URL(nil, "c2") != "http://api.local/api/v1/chat/collection/c2" {
		t.Errorf("unexpected chat collection URL: %s", r.ChatCollection.URL(nil, "c2"))
	}

	r = NewRegistry("http://api.local", EndpointEnhancedQuery)
	if r.HybridQuery.Resource() != EndpointEnhancedQuery {
		t.Errorf("query path override ignored: %s", r.HybridQuery.Resource())
	}
}
