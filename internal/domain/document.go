package domain

import "time"

// Status is the coarse document state reported to clients.
type Status string

const (
	// StatusUploaded means the document is registered but not processed.
	StatusUploaded Status = "uploaded"
	// StatusProcessing means the ingest pipeline is running.
	StatusProcessing Status = "processing"
	// StatusProcessed means the document is vectorized and searchable.
	StatusProcessed Status = "processed"
	// StatusError means the pipeline failed.
	StatusError Status = "error"
)

// Document is the lifecycle record owned by the document tracker.
type Document struct {
	ID            string     `json:"id"`
	OriginalName  string     `json:"originalName"`
	MimeType      string     `json:"mimeType"`
	Size          int64      `json:"size"`
	UploadedAt    time.Time  `json:"uploadedAt"`
	Status        Status     `json:"status"`
	Stage         Stage      `json:"processingStage"`
	ProcessedAt   *time.Time `json:"processedAt,omitempty"`
	FragmentIDs   []string   `json:"-"`
	FragmentCount int        `json:"fragmentCount"`
	TextLength    int        `json:"textLength"`
	Vectorized    bool       `json:"vectorized"`
	Err           string     `json:"error,omitempty"`
}
