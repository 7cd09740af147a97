// Package query orchestrates retrieval-augmented answering: embed the
// question, retrieve fragments, assemble the prompt, generate, cite.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quarry-labs/docquery/internal/domain"
	"github.com/quarry-labs/docquery/internal/generation"
	"github.com/quarry-labs/docquery/internal/metrics"
	"github.com/quarry-labs/docquery/internal/vector"
)

const (
	noResultsAnswer = "I couldn't find any relevant information in the uploaded documents to answer your question."

	citationExcerptLen = 300
	contextExcerptLen  = 200
)

// Service answers questions against the indexed corpus.
type Service struct {
	embedder  Embedder
	searcher  Searcher
	generator Generator
	fallback  Generator

	defaultTopK      int
	maxTopK          int
	defaultThreshold float32

	logger *zap.Logger
	now    func() time.Time
}

// Config bounds retrieval per request.
type Config struct {
	DefaultTopK      int
	MaxTopK          int
	DefaultThreshold float32
}

// New creates a query service. fallback answers when the main generator
// reports ErrGenerationUnavailable; pass nil to disable degradation.
func New(embedder Embedder, searcher Searcher, generator, fallback Generator, cfg Config, logger *zap.Logger) *Service {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 5
	}
	if cfg.MaxTopK <= 0 {
		cfg.MaxTopK = 20
	}
	return &Service{
		embedder:         embedder,
		searcher:         searcher,
		generator:        generator,
		fallback:         fallback,
		defaultTopK:      cfg.DefaultTopK,
		maxTopK:          cfg.MaxTopK,
		defaultThreshold: cfg.DefaultThreshold,
		logger:           logger,
		now:              time.Now,
	}
}

// Request is one retrieval-augmented query.
type Request struct {
	Query               string
	MaxResults          int
	SimilarityThreshold *float32
}

// Query runs the full pipeline. Zero retrieved fragments is a terminal
// answer, not an error. When the generator is unavailable the extractive
// fallback produces a degraded answer over the same context.
func (s *Service) Query(ctx context.Context, req Request) (domain.QueryResult, error) {
	start := s.now()

	result, outcome, err := s.query(ctx, req)
	metrics.QueryDuration.WithLabelValues(outcome).Observe(s.now().Sub(start).Seconds())
	return result, err
}

func (s *Service) query(ctx context.Context, req Request) (domain.QueryResult, string, error) {
	if strings.TrimSpace(req.Query) == "" {
		return domain.QueryResult{}, "error", fmt.Errorf("query text is required: %w", domain.ErrEmptyQuery)
	}

	topK := req.MaxResults
	if topK <= 0 {
		topK = s.defaultTopK
	}
	if topK > s.maxTopK {
		topK = s.maxTopK
	}
	threshold := s.defaultThreshold
	if req.SimilarityThreshold != nil {
		threshold = *req.SimilarityThreshold
	}

	embedded, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return domain.QueryResult{}, "error", fmt.Errorf("embed query: %w", err)
	}
	queryVec := vector.Normalize(embedded.Embedding)

	results, err := s.searcher.Search(ctx, queryVec, topK, threshold)
	if err != nil {
		return domain.QueryResult{}, "error", fmt.Errorf("search index: %w", err)
	}
	metrics.QueryRetrievedResults.Observe(float64(len(results)))

	if len(results) == 0 {
		s.logger.Warn("No relevant fragments found", zap.String("query", truncate(req.Query, 100)))
		return domain.QueryResult{
			Answer:     noResultsAnswer,
			Sources:    []domain.Citation{},
			Context:    []domain.ContextSnippet{},
			Confidence: 0,
		}, "no_results", nil
	}

	prompt := generation.BuildPrompt(req.Query, buildContext(results))

	answer, degraded, err := s.generate(ctx, prompt)
	if err != nil {
		return domain.QueryResult{}, "error", err
	}

	result := domain.QueryResult{
		Answer:     answer,
		Sources:    extractCitations(results, answer),
		Context:    buildSnippets(results),
		Confidence: results[0].Similarity,
		Degraded:   degraded,
	}

	outcome := "answered"
	if degraded {
		outcome = "degraded"
	}
	s.logger.Info("Query answered",
		zap.Int("retrieved", len(results)),
		zap.Int("sources", len(result.Sources)),
		zap.Float32("confidence", result.Confidence),
		zap.Bool("degraded", degraded))
	return result, outcome, nil
}

// generate calls the main generator; only ErrGenerationUnavailable
// degrades to the fallback. Auth and rate-limit failures propagate.
func (s *Service) generate(ctx context.Context, prompt string) (answer string, degraded bool, err error) {
	answer, err = s.generator.Generate(ctx, prompt)
	if err == nil {
		return answer, false, nil
	}

	if s.fallback == nil || !errors.Is(err, domain.ErrGenerationUnavailable) {
		return "", false, fmt.Errorf("generate answer: %w", err)
	}

	s.logger.Warn("Generator unavailable, falling back to extractive answer", zap.Error(err))
	answer, fbErr := s.fallback.Generate(ctx, prompt)
	if fbErr != nil {
		return "", false, fmt.Errorf("fallback answer: %w", fbErr)
	}
	return answer, true, nil
}

// buildContext renders retrieved fragments as numbered source blocks.
func buildContext(results []domain.SearchResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[Source %d]: %s", i+1, r.Fragment.Content)
	}
	return strings.Join(parts, "\n\n")
}

// extractCitations matches "[Source N]" mentions in the answer against
// the retrieved fragments. When the answer cites nothing every fragment
// becomes an implicit citation so sources are never dropped.
func extractCitations(results []domain.SearchResult, answer string) []domain.Citation {
	lower := strings.ToLower(answer)

	var citations []domain.Citation
	for i, r := range results {
		marker := fmt.Sprintf("[source %d]", i+1)
		if strings.Contains(lower, marker) {
			citations = append(citations, newCitation(i+1, r, false))
		}
	}

	if len(citations) == 0 {
		for i, r := range results {
			citations = append(citations, newCitation(i+1, r, true))
		}
	}
	return citations
}

func newCitation(sourceNumber int, r domain.SearchResult, implicit bool) domain.Citation {
	return domain.Citation{
		SourceNumber: sourceNumber,
		FragmentID:   r.Fragment.ID,
		DocumentID:   r.Fragment.Metadata.DocumentID,
		DocumentName: r.Fragment.Metadata.OriginalName,
		Similarity:   r.Similarity,
		Excerpt:      excerpt(r.Fragment.Content, citationExcerptLen),
		Implicit:     implicit,
	}
}

func buildSnippets(results []domain.SearchResult) []domain.ContextSnippet {
	snippets := make([]domain.ContextSnippet, len(results))
	for i, r := range results {
		snippets[i] = domain.ContextSnippet{
			FragmentID:    r.Fragment.ID,
			Content:       excerpt(r.Fragment.Content, contextExcerptLen),
			Similarity:    r.Similarity,
			DocumentID:    r.Fragment.Metadata.DocumentID,
			OriginalName:  r.Fragment.Metadata.OriginalName,
			FragmentIndex: r.Fragment.Metadata.FragmentIndex,
		}
	}
	return snippets
}

func excerpt(content string, limit int) string {
	if len(content) <= limit {
		return content
	}
	return content[:limit] + "..."
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
