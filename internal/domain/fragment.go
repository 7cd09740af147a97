package domain

import "time"

// FragmentMetadata describes the provenance of a fragment within its document.
type FragmentMetadata struct {
	DocumentID    string    `json:"documentId"`
	OriginalName  string    `json:"originalName"`
	MimeType      string    `json:"mimeType"`
	FragmentIndex int       `json:"fragmentIndex"`
	FragmentCount int       `json:"fragmentCount"`
	Length        int       `json:"length"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Fragment is an immutable slice of a document's text. Owned by the
// document it was split from; the vector index holds references only.
type Fragment struct {
	ID       string           `json:"id"`
	Content  string           `json:"content"`
	Metadata FragmentMetadata `json:"metadata"`
}

// SearchResult is a fragment scored against a query vector.
// Transient, produced per query, never persisted.
type SearchResult struct {
	Fragment   Fragment `json:"fragment"`
	Similarity float32  `json:"similarity"`
	Distance   float32  `json:"distance"`
}

// Citation ties a retrieved fragment to the generated answer.
// Implicit citations are emitted when the answer cites no source label
// at all, so retrieved sources are never silently dropped.
type Citation struct {
	SourceNumber int     `json:"sourceNumber"`
	FragmentID   string  `json:"fragmentId"`
	DocumentID   string  `json:"documentId"`
	DocumentName string  `json:"documentName"`
	Similarity   float32 `json:"similarity"`
	Excerpt      string  `json:"excerpt"`
	Implicit     bool    `json:"implicit,omitempty"`
}

// ContextSnippet is a truncated view of a retrieved fragment returned
// alongside the answer.
type ContextSnippet struct {
	FragmentID    string  `json:"fragmentId"`
	Content       string  `json:"content"`
	Similarity    float32 `json:"similarity"`
	DocumentID    string  `json:"documentId"`
	OriginalName  string  `json:"originalName"`
	FragmentIndex int     `json:"fragmentIndex"`
}

// QueryResult is the terminal output of the retrieval pipeline.
type QueryResult struct {
	Answer     string           `json:"answer"`
	Sources    []Citation       `json:"sources"`
	Context    []ContextSnippet `json:"context"`
	Confidence float32          `json:"confidence"`
	Degraded   bool             `json:"degraded,omitempty"`
}

// IngestResult summarizes a completed ingestion.
type IngestResult struct {
	FragmentCount int  `json:"fragmentCount"`
	TextLength    int  `json:"textLength"`
	Success       bool `json:"success"`
}
