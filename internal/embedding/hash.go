// Package embedding provides the deterministic fallback embedder used
// when no external provider is configured.
package embedding

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/quarry-labs/docquery/internal/domain"
	"github.com/quarry-labs/docquery/internal/vector"
)

// DefaultDimensions is the fallback vector width.
const DefaultDimensions = 384

// neighborSpread is how many indices after the base index receive a
// token's contribution.
const neighborSpread = 4

// HashEmbedder maps text to a fixed-width vector from token statistics
// alone. It has no semantic understanding: unrelated texts with similar
// token shapes may score spuriously close. It exists to keep the
// pipeline functional without an external provider; any real embedding
// model can be swapped in behind domain.Embedder.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder creates a fallback embedder. Non-positive dimensions
// fall back to DefaultDimensions.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Dimensions returns the vector width this embedder produces.
func (e *HashEmbedder) Dimensions() int { return e.dimensions }

// Embed implements domain.Embedder. Pure function of the input text:
// each lowercase whitespace token is hashed to a base index and its
// contribution accumulated there and at the four following indices,
// then the vector is L2-normalized.
func (e *HashEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	vec := make([]float32, e.dimensions)

	tokens := strings.Fields(strings.ToLower(text))
	for pos, token := range tokens {
		base := tokenIndex(token, e.dimensions)
		contribution := float32(len(token))*0.1 + float32(pos)*0.01
		for off := 0; off <= neighborSpread; off++ {
			vec[(base+off)%e.dimensions] += contribution
		}
	}

	return domain.EmbeddingResult{Embedding: vector.Normalize(vec)}, nil
}

// BatchEmbed implements domain.BatchEmbedder; there is no provider
// round-trip to amortize, so it simply iterates.
func (e *HashEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchFallback(ctx, e, texts)
}

func tokenIndex(token string, dimensions int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % uint32(dimensions))
}
