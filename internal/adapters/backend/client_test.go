package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/0xcro3dile/docqa-go/internal/adapters/rest"
	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return New(server.URL, Options{})
}

func TestClient_HybridQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/query/hybrid", func(w http.ResponseWriter, r *http.Request) {
		var req entities.HybridQueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Question != "What is the refund window?" || !req.IncludePDFResults {
			t.Errorf("unexpected request: %+v", req)
		}
		w.Write([]byte(`{
			"answer": "30 days",
			"pdf_sources": ["policy.pdf"],
			"pdf_sources_detailed": [
				{"file_name":"policy.pdf","collection_id":"c1","page":3,"relevance_score":0.87},
				{"file_name":"","collection_id":"c1","page":1}
			],
			"db_results": {"orders": [{"id": 1}, 7]},
			"processing_time": 1.2,
			"search_terms": ["refund"],
			"model_used": "llama3"
		}`))
	})
	c := newTestClient(t, mux)

	resp, err := c.HybridQuery(context.Background(), entities.HybridQueryRequest{
		Question:          "What is the refund window?",
		IncludePDFResults: true,
	})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if resp.Answer != "30 days" || resp.ModelUsed != "llama3" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(resp.PDFSourcesDetailed) != 1 || resp.PDFSourcesDetailed[0].Page != 3 {
		t.Errorf("invalid source should be dropped: %+v", resp.PDFSourcesDetailed)
	}
	if resp.Quarantined != 2 {
		t.Errorf("expected 2 quarantined items, got %d", resp.Quarantined)
	}
	if resp.DBResults["orders"].Table != "orders" {
		t.Error("table name should be filled")
	}
}

func TestClient_HybridQueryRejectsBlankQuestion(t *testing.T) {
	called := false
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { called = true })
	c := newTestClient(t, mux)

	_, err := c.HybridQuery(context.Background(), entities.HybridQueryRequest{Question: "   "})
	if !errors.Is(err, entities.ErrInvalidQuestion) {
		t.Errorf("expected ErrInvalidQuestion, got %v", err)
	}
	if called {
		t.Error("no request should be sent")
	}
}

func TestClient_QueryPathOverride(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/query/enhanced", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":"ok"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := New(server.URL, Options{QueryPath: rest.EndpointEnhancedQuery})
	resp, err := c.HybridQuery(context.Background(), entities.HybridQueryRequest{Question: "q"})
	if err != nil || resp.Answer != "ok" {
		t.Errorf("unexpected result: %v %v", resp, err)
	}
}

func TestClient_UploadPDFs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		files := r.MultipartForm.File["files"]
		if len(files) != 2 {
			t.Fatalf("expected 2 files, got %d", len(files))
		}
		if files[0].Filename != "a.pdf" || files[1].Filename != "b.pdf" {
			t.Errorf("unexpected file names: %s %s", files[0].Filename, files[1].Filename)
		}
		w.Write([]byte(`{"collection_id":"c9","file_count":2,"status":"ok"}`))
	})
	c := newTestClient(t, mux)

	resp, err := c.UploadPDFs(context.Background(), []entities.UploadFile{
		{Name: "a.pdf", Data: []byte("%PDF-a")},
		{Name: "b.pdf", Data: []byte("%PDF-b")},
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if resp.CollectionID != "c9" || resp.FileCount != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestClient_UploadPDFsRequiresFiles(t *testing.T) {
	c := New("http://127.0.0.1:1", Options{})
	if _, err := c.UploadPDFs(context.Background(), nil); err == nil {
		t.Error("expected error for empty upload")
	}
}

func TestClient_UploadChatDefaultsToWhatsApp(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/chat/upload", func(w http.ResponseWriter, r *http.Request) {
		if got := r.FormValue("platform"); got != "whatsapp" {
			t.Errorf("unexpected platform: %q", got)
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file: %v", err)
		}
		data, _ := io.ReadAll(f)
		if string(data) != "[1/1/24] a: hi" {
			t.Errorf("unexpected payload: %q", data)
		}
		w.Write([]byte(`{"collection_id":"k1","platform":"whatsapp","message_count":1,"file_name":"chat.txt"}`))
	})
	c := newTestClient(t, mux)

	resp, err := c.UploadChat(context.Background(), entities.UploadFile{Name: "chat.txt", Data: []byte("[1/1/24] a: hi")}, "")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if resp.CollectionID != "k1" || resp.MessageCount != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestClient_UploadChatRejectsUnknownPlatform(t *testing.T) {
	c := New("http://127.0.0.1:1", Options{})
	_, err := c.UploadChat(context.Background(), entities.UploadFile{Name: "x.txt"}, "telegram")
	if !errors.Is(err, entities.ErrInvalidPlatform) {
		t.Errorf("expected ErrInvalidPlatform, got %v", err)
	}
}

func TestClient_Collections(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/collections", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"collection_id":"c1","document_count":2,"created_at":"2024-05-01T10:00:00","file_names":["a.pdf","b.pdf"]}]`))
	})
	mux.HandleFunc("GET /api/v1/chat/collections", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"collection_id":"k1","platform":"slack","file_name":"export.zip","message_count":40,"participants":["a","b"]}]`))
	})
	mux.HandleFunc("DELETE /api/v1/collection/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "c1" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Collection not found"}`))
			return
		}
		w.Write([]byte(`{"message":"deleted"}`))
	})
	mux.HandleFunc("DELETE /api/v1/chat/collection/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"chat deleted"}`))
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	pdfs, err := c.ListPDFCollections(ctx)
	if err != nil || len(pdfs) != 1 || pdfs[0].CreatedAt.Date() != "2024-05-01" {
		t.Errorf("unexpected pdf collections: %+v %v", pdfs, err)
	}
	chats, err := c.ListChatCollections(ctx)
	if err != nil || len(chats) != 1 || chats[0].Platform != entities.PlatformSlack {
		t.Errorf("unexpected chat collections: %+v %v", chats, err)
	}

	del, err := c.DeletePDFCollection(ctx, "c1")
	if err != nil || del.Message != "deleted" {
		t.Errorf("unexpected delete: %+v %v", del, err)
	}
	_, err = c.DeletePDFCollection(ctx, "zz")
	if code, ok := rest.StatusCode(err); !ok || code != http.StatusNotFound {
		t.Errorf("expected 404 status error, got %v", err)
	}
	if del, err := c.DeleteChatCollection(ctx, "k1"); err != nil || del.Message != "chat deleted" {
		t.Errorf("unexpected chat delete: %+v %v", del, err)
	}
}

func TestClient_Tables(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/database/tables", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tables":[{"name":"orders","row_count":12}]}`))
	})
	mux.HandleFunc("GET /api/v1/database/table/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"columns":[{"name":"id","type":"INTEGER"}],"sample_data":[{"id":1}]}`))
	})
	c := newTestClient(t, mux)

	tables, err := c.ListTables(context.Background())
	if err != nil || len(tables) != 1 || tables[0].RowCount != 12 {
		t.Fatalf("unexpected tables: %+v %v", tables, err)
	}
	detail, err := c.DescribeTable(context.Background(), "orders")
	if err != nil {
		t.Fatalf("describe failed: %v", err)
	}
	if detail.Name != "orders" || len(detail.Columns) != 1 || len(detail.SampleData) != 1 {
		t.Errorf("unexpected detail: %+v", detail)
	}
}

func TestClient_ProbeAndFetchFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/files/c1/policy.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	c := New(server.URL, Options{})
	ctx := context.Background()

	code, err := c.ProbeFile(ctx, server.URL+"/api/v1/files/c1/policy.pdf")
	if err != nil || code != http.StatusOK {
		t.Errorf("probe: %d %v", code, err)
	}
	code, err = c.ProbeFile(ctx, server.URL+"/api/v1/files/c1/missing.pdf")
	if err != nil || code != http.StatusNotFound {
		t.Errorf("probe missing: %d %v", code, err)
	}

	var buf bytes.Buffer
	if _, err := c.FetchFile(ctx, server.URL+"/api/v1/files/c1/policy.pdf", &buf); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if buf.String() != "%PDF-1.4" {
		t.Errorf("unexpected body: %q", buf.String())
	}

	_, err = c.FetchFile(ctx, server.URL+"/nope.pdf", io.Discard)
	if code, ok := rest.StatusCode(err); !ok || code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}

	buf.Reset()
	if _, err := c.DownloadFile(ctx, "c1", "policy.pdf", &buf); err != nil || buf.Len() != 8 {
		t.Errorf("download: %d %v", buf.Len(), err)
	}
}

func TestClient_ProbeRejectsNonHTTP(t *testing.T) {
	c := New("", Options{})
	if _, err := c.ProbeFile(context.Background(), "file:///etc/passwd"); err == nil {
		t.Error("expected error for non-http url")
	}
}
