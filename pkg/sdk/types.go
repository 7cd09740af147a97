package docquery

import "time"

// DocumentStatus is the coarse lifecycle state of a document.
type DocumentStatus string

// Document status constants.
const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusProcessed  DocumentStatus = "processed"
	StatusError      DocumentStatus = "error"
)

// Document is a tracked document record.
type Document struct {
	ID            string
	OriginalName  string
	MimeType      string
	Size          int64
	UploadedAt    time.Time
	Status        DocumentStatus
	Stage         string
	ProcessedAt   *time.Time
	FragmentCount int
	TextLength    int
	Vectorized    bool
	Err           string
}

// IngestResult summarizes a completed ingestion.
type IngestResult struct {
	FragmentCount int
	TextLength    int
}

// QueryRequest is one retrieval-augmented query.
type QueryRequest struct {
	Query               string
	MaxResults          int
	SimilarityThreshold *float32
}

// Citation ties a retrieved fragment to the generated answer.
type Citation struct {
	SourceNumber int
	FragmentID   string
	DocumentID   string
	DocumentName string
	Similarity   float32
	Excerpt      string
	Implicit     bool
}

// Snippet is a truncated view of a retrieved fragment.
type Snippet struct {
	FragmentID    string
	Content       string
	Similarity    float32
	DocumentID    string
	OriginalName  string
	FragmentIndex int
}

// Answer is the result of a retrieval-augmented query.
type Answer struct {
	Answer     string
	Sources    []Citation
	Context    []Snippet
	Confidence float32
	Degraded   bool
}
