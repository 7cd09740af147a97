package chi

import (
	"time"

	"github.com/quarry-labs/docquery/internal/domain"
)

// Error codes returned in the error envelope.
const (
	codeBadRequest         = "bad_request"
	codeValidationFailed   = "validation_failed"
	codeUnauthorized       = "unauthorized"
	codeDocumentNotFound   = "document_not_found"
	codeAlreadyProcessed   = "already_processed"
	codeUnsupportedFormat  = "unsupported_format"
	codeRateLimited        = "rate_limited"
	codeProviderError      = "provider_error"
	codeProviderUnavailable = "provider_unavailable"
	codeInternalError      = "internal_error"
)

// errorResponse is the error envelope for every non-2xx reply.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// registerDocumentRequest is the body of POST /api/documents.
type registerDocumentRequest struct {
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
}

// processDocumentRequest is the body of POST /api/documents/{id}/process.
// Exactly one of rawText or data (base64) must be supplied.
type processDocumentRequest struct {
	RawText string `json:"rawText,omitempty"`
	Data    []byte `json:"data,omitempty"`
}

// documentResponse is the client view of a document record.
type documentResponse struct {
	ID               string     `json:"id"`
	OriginalName     string     `json:"originalName"`
	MimeType         string     `json:"mimeType"`
	Size             int64      `json:"size"`
	UploadedAt       time.Time  `json:"uploadedAt"`
	Status           string     `json:"status"`
	ProcessingStage  string     `json:"processingStage"`
	StageDescription string     `json:"stageDescription"`
	ProcessedAt      *time.Time `json:"processedAt,omitempty"`
	FragmentCount    int        `json:"fragmentCount"`
	TextLength       int        `json:"textLength"`
	Vectorized       bool       `json:"vectorized"`
	Error            string     `json:"error,omitempty"`
}

func documentToResponse(doc domain.Document) documentResponse {
	return documentResponse{
		ID:               doc.ID,
		OriginalName:     doc.OriginalName,
		MimeType:         doc.MimeType,
		Size:             doc.Size,
		UploadedAt:       doc.UploadedAt,
		Status:           string(doc.Status),
		ProcessingStage:  string(doc.Stage),
		StageDescription: doc.Stage.Description(),
		ProcessedAt:      doc.ProcessedAt,
		FragmentCount:    doc.FragmentCount,
		TextLength:       doc.TextLength,
		Vectorized:       doc.Vectorized,
		Error:            doc.Err,
	}
}

// processDocumentResponse is the body of a successful process call.
type processDocumentResponse struct {
	Document documentResponse    `json:"document"`
	Result   domain.IngestResult `json:"result"`
}

// listDocumentsResponse is the body of GET /api/documents.
type listDocumentsResponse struct {
	Items []documentResponse `json:"items"`
	Total int                `json:"total"`
}

// queryRequest is the body of POST /api/chat/query.
type queryRequest struct {
	Query               string   `json:"query"`
	MaxResults          int      `json:"maxResults,omitempty"`
	SimilarityThreshold *float32 `json:"similarityThreshold,omitempty"`
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status       string            `json:"status"`
	Checks       map[string]string `json:"checks"`
	IndexEntries int               `json:"indexEntries"`
	Version      string            `json:"version,omitempty"`
}
