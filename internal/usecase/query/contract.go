package query

import (
	"context"

	"github.com/quarry-labs/docquery/internal/domain"
)

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Searcher is the vector index read contract.
type Searcher interface {
	Search(ctx context.Context, query []float32, topK int, threshold float32) ([]domain.SearchResult, error)
}

// Generator produces the final answer from an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
