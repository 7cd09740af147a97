package chi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/quarry-labs/docquery/internal/domain"
	"github.com/quarry-labs/docquery/internal/embedding"
	"github.com/quarry-labs/docquery/internal/extract"
	"github.com/quarry-labs/docquery/internal/generation"
	"github.com/quarry-labs/docquery/internal/repository/docs"
	"github.com/quarry-labs/docquery/internal/repository/index"
	"github.com/quarry-labs/docquery/internal/splitter"
	"github.com/quarry-labs/docquery/internal/usecase/health"
	"github.com/quarry-labs/docquery/internal/usecase/ingest"
	"github.com/quarry-labs/docquery/internal/usecase/query"
)

// newTestRouter wires a full in-memory stack: hash embedder, extractive
// generator, plain text extractor.
func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	logger := zap.NewNop()
	tracker := docs.New()
	ix := index.New()
	embedder := embedding.NewHashEmbedder(embedding.DefaultDimensions)
	sp, err := splitter.New(200, 40)
	if err != nil {
		t.Fatalf("splitter.New failed: %v", err)
	}

	ingestSvc := ingest.New(tracker, extract.NewPlain(), sp, embedder, ix, logger)
	querySvc := query.New(embedder, ix, generation.NewExtractive(3), nil,
		query.Config{DefaultTopK: 5, MaxTopK: 20}, logger)
	healthSvc := health.New(nil, nil, ix)

	server := NewServer(ingestSvc, querySvc, tracker, healthSvc, 10*1024*1024, logger)

	r := chi.NewRouter()
	server.Mount(r)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func registerDocument(t *testing.T, r chi.Router, name string) string {
	t.Helper()
	rr := doJSON(t, r, "POST", "/api/documents", registerDocumentRequest{
		OriginalName: name,
		MimeType:     "text/plain",
		Size:         100,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: got %d, body %s", rr.Code, rr.Body.String())
	}
	var doc documentResponse
	if err := json.NewDecoder(rr.Body).Decode(&doc); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return doc.ID
}

func TestRegisterDocument(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, "POST", "/api/documents", registerDocumentRequest{
		OriginalName: "notes.txt",
		MimeType:     "text/plain",
		Size:         42,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("got %d, want 201; body %s", rr.Code, rr.Body.String())
	}

	var doc documentResponse
	if err := json.NewDecoder(rr.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.ID == "" {
		t.Error("expected generated id")
	}
	if doc.Status != "uploaded" || doc.ProcessingStage != "saved" {
		t.Errorf("doc = %s/%s, expected uploaded/saved", doc.Status, doc.ProcessingStage)
	}
	if doc.StageDescription == "" {
		t.Error("expected human-readable stage description")
	}
	if loc := rr.Header().Get("Location"); loc != "/api/documents/"+doc.ID {
		t.Errorf("Location = %q", loc)
	}
}

func TestRegisterDocument_Validation(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name       string
		req        registerDocumentRequest
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing name",
			req:        registerDocumentRequest{MimeType: "text/plain"},
			wantStatus: http.StatusBadRequest,
			wantCode:   codeValidationFailed,
		},
		{
			name:       "unsupported mime",
			req:        registerDocumentRequest{OriginalName: "x.png", MimeType: "image/png"},
			wantStatus: http.StatusUnsupportedMediaType,
			wantCode:   codeUnsupportedFormat,
		},
		{
			name: "oversize",
			req: registerDocumentRequest{
				OriginalName: "big.txt", MimeType: "text/plain", Size: 11 * 1024 * 1024,
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   codeValidationFailed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, r, "POST", "/api/documents", tc.req)
			if rr.Code != tc.wantStatus {
				t.Fatalf("got %d, want %d; body %s", rr.Code, tc.wantStatus, rr.Body.String())
			}
			var errResp errorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if errResp.Code != tc.wantCode {
				t.Errorf("code = %s, want %s", errResp.Code, tc.wantCode)
			}
		})
	}
}

func TestProcessDocument_FullLifecycle(t *testing.T) {
	r := newTestRouter(t)
	id := registerDocument(t, r, "guide.txt")

	rr := doJSON(t, r, "POST", "/api/documents/"+id+"/process", processDocumentRequest{
		RawText: "Go services use goroutines for concurrency.\n\nChannels carry messages between goroutines.",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("process: got %d, body %s", rr.Code, rr.Body.String())
	}

	var resp processDocumentResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Result.Success || resp.Result.FragmentCount == 0 {
		t.Errorf("unexpected result: %+v", resp.Result)
	}
	if resp.Document.ProcessingStage != "completed" || !resp.Document.Vectorized {
		t.Errorf("document not completed: %+v", resp.Document)
	}

	// Reprocessing is rejected.
	rr = doJSON(t, r, "POST", "/api/documents/"+id+"/process", processDocumentRequest{RawText: "again"})
	if rr.Code != http.StatusConflict {
		t.Errorf("reprocess: got %d, want 409; body %s", rr.Code, rr.Body.String())
	}
}

func TestProcessDocument_UnknownID(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, "POST", "/api/documents/ghost/process", processDocumentRequest{RawText: "text"})
	if rr.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404; body %s", rr.Code, rr.Body.String())
	}
}

func TestProcessDocument_MissingContent(t *testing.T) {
	r := newTestRouter(t)
	id := registerDocument(t, r, "empty.txt")

	rr := doJSON(t, r, "POST", "/api/documents/"+id+"/process", processDocumentRequest{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400; body %s", rr.Code, rr.Body.String())
	}
}

func TestListAndGetDocuments(t *testing.T) {
	r := newTestRouter(t)
	id1 := registerDocument(t, r, "a.txt")
	registerDocument(t, r, "b.txt")

	rr := doJSON(t, r, "GET", "/api/documents", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list: got %d", rr.Code)
	}
	var list listDocumentsResponse
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 2 || len(list.Items) != 2 {
		t.Errorf("list total = %d items = %d, want 2/2", list.Total, len(list.Items))
	}

	rr = doJSON(t, r, "GET", "/api/documents/"+id1, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get: got %d", rr.Code)
	}
	var doc documentResponse
	if err := json.NewDecoder(rr.Body).Decode(&doc); err != nil {
		t.Fatalf("decode get: %v", err)
	}
	if doc.OriginalName != "a.txt" {
		t.Errorf("OriginalName = %s", doc.OriginalName)
	}

	rr = doJSON(t, r, "GET", "/api/documents/ghost", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("get unknown: got %d, want 404", rr.Code)
	}
}

func TestDeleteDocument(t *testing.T) {
	r := newTestRouter(t)
	id := registerDocument(t, r, "gone.txt")

	rr := doJSON(t, r, "DELETE", "/api/documents/"+id, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d, want 204", rr.Code)
	}

	rr = doJSON(t, r, "GET", "/api/documents/"+id, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("get after delete: got %d, want 404", rr.Code)
	}

	rr = doJSON(t, r, "DELETE", "/api/documents/"+id, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("double delete: got %d, want 404", rr.Code)
	}
}

func TestChatQuery_EndToEnd(t *testing.T) {
	r := newTestRouter(t)
	id := registerDocument(t, r, "kb.txt")

	rr := doJSON(t, r, "POST", "/api/documents/"+id+"/process", processDocumentRequest{
		RawText: "The deploy pipeline runs on merge. Rollbacks use the previous image tag.",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("process: got %d", rr.Code)
	}

	rr = doJSON(t, r, "POST", "/api/chat/query", queryRequest{Query: "deploy pipeline"})
	if rr.Code != http.StatusOK {
		t.Fatalf("query: got %d, body %s", rr.Code, rr.Body.String())
	}

	var result domain.QueryResult
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Answer == "" {
		t.Error("expected a non-empty answer")
	}
	if len(result.Sources) == 0 {
		t.Error("expected sources")
	}
	if result.Confidence <= 0 {
		t.Errorf("confidence = %f, expected > 0", result.Confidence)
	}
}

func TestChatQuery_EmptyQuery(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, "POST", "/api/chat/query", queryRequest{Query: "  "})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400; body %s", rr.Code, rr.Body.String())
	}
	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if errResp.Code != codeValidationFailed {
		t.Errorf("code = %s, want %s", errResp.Code, codeValidationFailed)
	}
}

func TestChatQuery_NoDocuments(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, "POST", "/api/chat/query", queryRequest{Query: "anything at all"})
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}

	var result domain.QueryResult
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(result.Answer, "couldn't find any relevant information") {
		t.Errorf("unexpected answer: %q", result.Answer)
	}
	if result.Confidence != 0 {
		t.Errorf("confidence = %f, want 0", result.Confidence)
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, "GET", "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %s, want ok", resp.Status)
	}
}
