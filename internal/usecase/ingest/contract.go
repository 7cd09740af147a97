package ingest

import (
	"context"

	"github.com/quarry-labs/docquery/internal/domain"
	"github.com/quarry-labs/docquery/internal/repository/index"
)

// Tracker defines the document lifecycle contract.
type Tracker interface {
	Create(ctx context.Context, doc domain.Document) (domain.Document, error)
	Get(ctx context.Context, id string) (domain.Document, error)
	BeginProcessing(ctx context.Context, id string) (domain.Document, error)
	Advance(ctx context.Context, id string, to domain.Stage) error
	Complete(ctx context.Context, id string, fragmentIDs []string, textLength int) error
	MarkFailed(ctx context.Context, id string, cause error)
	Delete(ctx context.Context, id string) error
}

// Extractor turns raw document bytes into plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Splitter cuts text into fragment contents.
type Splitter interface {
	Split(text string) ([]string, error)
}

// Embedder vectorizes fragment contents.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Indexer is the vector index write contract.
type Indexer interface {
	Add(ctx context.Context, entries []index.Entry) (int, error)
	RemoveByDocument(ctx context.Context, documentID string) int
}
