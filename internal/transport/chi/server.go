// Package chi implements the HTTP API on the go-chi router.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/quarry-labs/docquery/internal/domain"
	"github.com/quarry-labs/docquery/internal/repository/docs"
	"github.com/quarry-labs/docquery/internal/usecase/health"
	"github.com/quarry-labs/docquery/internal/usecase/ingest"
	"github.com/quarry-labs/docquery/internal/usecase/query"
	"github.com/quarry-labs/docquery/internal/version"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the retrieval pipeline over HTTP.
type Server struct {
	ingest  *ingest.Service
	query   *query.Service
	tracker *docs.Tracker
	health  *health.Service
	logger  *zap.Logger

	maxUploadBytes int64
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingestSvc *ingest.Service,
	querySvc *query.Service,
	tracker *docs.Tracker,
	healthSvc *health.Service,
	maxUploadBytes int64,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingest:         ingestSvc,
		query:          querySvc,
		tracker:        tracker,
		health:         healthSvc,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmptyContent, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmptyBatch, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidChunking, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrAlreadyProcessed, http.StatusConflict, codeAlreadyProcessed),
		sentinelHandler(domain.ErrInvalidTransition, http.StatusConflict, codeAlreadyProcessed),
		sentinelHandler(domain.ErrUnsupportedFormat, http.StatusUnsupportedMediaType, codeUnsupportedFormat),
		sentinelHandler(domain.ErrGenerationRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrGenerationAuth, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrGenerationProvider, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrExtractionFailed, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrGenerationUnavailable, http.StatusServiceUnavailable, codeProviderUnavailable),
	}
	return s
}

// Mount registers all routes on the router.
func (s *Server) Mount(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", s.registerDocument)
			r.Get("/", s.listDocuments)
			r.Route("/{documentID}", func(r chi.Router) {
				r.Get("/", s.getDocument)
				r.Delete("/", s.deleteDocument)
				r.Post("/process", s.processDocument)
			})
		})
		r.Post("/chat/query", s.chatQuery)
	})
	r.Get("/health", s.healthCheck)
	r.Get("/metrics", s.metrics)
}

// registerDocument handles POST /api/documents.
func (s *Server) registerDocument(w http.ResponseWriter, r *http.Request) {
	var req registerDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.OriginalName == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "originalName is required")
		return
	}
	if !domain.IsSupportedMimeType(req.MimeType) {
		writeError(w, http.StatusUnsupportedMediaType, codeUnsupportedFormat,
			fmt.Sprintf("mime type %q is not supported", req.MimeType))
		return
	}
	if req.Size > s.maxUploadBytes {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			fmt.Sprintf("file size %d exceeds the %d byte limit", req.Size, s.maxUploadBytes))
		return
	}

	doc, err := s.tracker.Create(r.Context(), domain.Document{
		ID:           uuid.NewString(),
		OriginalName: req.OriginalName,
		MimeType:     req.MimeType,
		Size:         req.Size,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/documents/"+doc.ID)
	writeJSON(w, http.StatusCreated, documentToResponse(doc))
}

// processDocument handles POST /api/documents/{id}/process.
func (s *Server) processDocument(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")

	var req processDocumentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxUploadBytes*2)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.RawText == "" && len(req.Data) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "rawText or data is required")
		return
	}
	if int64(len(req.Data)) > s.maxUploadBytes || int64(len(req.RawText)) > s.maxUploadBytes {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			fmt.Sprintf("content exceeds the %d byte limit", s.maxUploadBytes))
		return
	}

	doc, err := s.tracker.Get(r.Context(), documentID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	result, err := s.ingest.Ingest(r.Context(), ingest.Request{
		DocumentID:   documentID,
		OriginalName: doc.OriginalName,
		MimeType:     doc.MimeType,
		RawText:      req.RawText,
		Data:         req.Data,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	doc, err = s.tracker.Get(r.Context(), documentID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, processDocumentResponse{
		Document: documentToResponse(doc),
		Result:   result,
	})
}

// listDocuments handles GET /api/documents.
func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	items := s.tracker.List(r.Context())

	resp := listDocumentsResponse{
		Items: make([]documentResponse, len(items)),
		Total: len(items),
	}
	for i, doc := range items {
		resp.Items[i] = documentToResponse(doc)
	}
	writeJSON(w, http.StatusOK, resp)
}

// getDocument handles GET /api/documents/{id}.
func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.tracker.Get(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(doc))
}

// deleteDocument handles DELETE /api/documents/{id}.
func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.ingest.Delete(r.Context(), chi.URLParam(r, "documentID")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// chatQuery handles POST /api/chat/query.
func (s *Server) chatQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := s.query.Query(r.Context(), query.Request{
		Query:               req.Query,
		MaxResults:          req.MaxResults,
		SimilarityThreshold: req.SimilarityThreshold,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// healthCheck handles GET /health.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != health.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:       string(report.Status),
		Checks:       checks,
		IndexEntries: report.IndexEntries,
		Version:      version.Version,
	})
}

// metrics handles GET /metrics.
func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrEmptyContent,
		domain.ErrEmptyBatch,
		domain.ErrInvalidChunking,
		domain.ErrVectorDimMismatch,
		domain.ErrDocumentNotFound,
		domain.ErrAlreadyProcessed,
		domain.ErrInvalidTransition,
		domain.ErrUnsupportedFormat,
		domain.ErrExtractionFailed,
		domain.ErrEmbeddingProvider,
		domain.ErrGenerationAuth,
		domain.ErrGenerationRateLimited,
		domain.ErrGenerationUnavailable,
		domain.ErrGenerationProvider,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
