// Package ingest runs the document processing pipeline: extract text,
// split into fragments, vectorize, index.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quarry-labs/docquery/internal/domain"
	"github.com/quarry-labs/docquery/internal/metrics"
	"github.com/quarry-labs/docquery/internal/repository/index"
	"github.com/quarry-labs/docquery/internal/vector"
)

// Service orchestrates the ingest pipeline.
type Service struct {
	tracker   Tracker
	extractor Extractor
	splitter  Splitter
	embedder  Embedder
	index     Indexer
	logger    *zap.Logger
	now       func() time.Time
}

// New creates an ingest service.
func New(tracker Tracker, extractor Extractor, splitter Splitter, embedder Embedder, ix Indexer, logger *zap.Logger) *Service {
	return &Service{
		tracker:   tracker,
		extractor: extractor,
		splitter:  splitter,
		embedder:  embedder,
		index:     ix,
		logger:    logger,
		now:       time.Now,
	}
}

// Request carries a document and its content into the pipeline.
// RawText wins over Data: when both are set no extraction happens.
type Request struct {
	DocumentID   string
	OriginalName string
	MimeType     string
	RawText      string
	Data         []byte
}

// Ingest runs the pipeline for one document. The document is claimed
// atomically; a concurrent or repeated ingest of the same id fails with
// ErrAlreadyProcessed. Any stage failure marks the document failed and
// returns the cause with stage context.
func (s *Service) Ingest(ctx context.Context, req Request) (domain.IngestResult, error) {
	start := s.now()

	doc, err := s.claim(ctx, req)
	if err != nil {
		return domain.IngestResult{}, err
	}

	result, err := s.run(ctx, doc, req)
	if err != nil {
		s.tracker.MarkFailed(ctx, doc.ID, err)
		metrics.IngestDuration.WithLabelValues("failed").Observe(s.now().Sub(start).Seconds())
		s.logger.Error("Document ingestion failed",
			zap.String("document_id", doc.ID),
			zap.Error(err))
		return domain.IngestResult{}, err
	}

	metrics.IngestDuration.WithLabelValues("completed").Observe(s.now().Sub(start).Seconds())
	metrics.IngestFragmentsTotal.Add(float64(result.FragmentCount))
	s.logger.Info("Document ingested",
		zap.String("document_id", doc.ID),
		zap.Int("fragments", result.FragmentCount),
		zap.Int("text_length", result.TextLength))
	return result, nil
}

// claim resolves the document record, creating it on first sight, and
// takes ownership of the pipeline run.
func (s *Service) claim(ctx context.Context, req Request) (domain.Document, error) {
	if _, err := s.tracker.Get(ctx, req.DocumentID); err != nil {
		doc := domain.Document{
			ID:           req.DocumentID,
			OriginalName: req.OriginalName,
			MimeType:     req.MimeType,
			Size:         int64(len(req.Data) + len(req.RawText)),
		}
		if _, createErr := s.tracker.Create(ctx, doc); createErr != nil {
			return domain.Document{}, fmt.Errorf("create document: %w", createErr)
		}
	}

	doc, err := s.tracker.BeginProcessing(ctx, req.DocumentID)
	if err != nil {
		return domain.Document{}, fmt.Errorf("claim document: %w", err)
	}
	return doc, nil
}

func (s *Service) run(ctx context.Context, doc domain.Document, req Request) (domain.IngestResult, error) {
	text := req.RawText
	if text == "" {
		extracted, err := s.extractor.Extract(ctx, req.Data, req.MimeType)
		if err != nil {
			return domain.IngestResult{}, fmt.Errorf("extract text: %w", err)
		}
		text = extracted
	}

	if err := s.tracker.Advance(ctx, doc.ID, domain.StageTextExtracted); err != nil {
		return domain.IngestResult{}, err
	}

	contents, err := s.splitter.Split(text)
	if err != nil {
		return domain.IngestResult{}, fmt.Errorf("split text: %w", err)
	}

	if err := s.tracker.Advance(ctx, doc.ID, domain.StageChunked); err != nil {
		return domain.IngestResult{}, err
	}

	fragments := s.buildFragments(doc, req, contents)

	if err := s.tracker.Advance(ctx, doc.ID, domain.StageVectorizing); err != nil {
		return domain.IngestResult{}, err
	}

	entries, err := s.vectorize(ctx, fragments)
	if err != nil {
		return domain.IngestResult{}, fmt.Errorf("vectorize fragments: %w", err)
	}

	if _, err := s.index.Add(ctx, entries); err != nil {
		return domain.IngestResult{}, fmt.Errorf("index fragments: %w", err)
	}

	fragmentIDs := make([]string, len(fragments))
	for i, f := range fragments {
		fragmentIDs[i] = f.ID
	}
	if err := s.tracker.Complete(ctx, doc.ID, fragmentIDs, len(text)); err != nil {
		return domain.IngestResult{}, err
	}

	return domain.IngestResult{
		FragmentCount: len(fragments),
		TextLength:    len(text),
		Success:       true,
	}, nil
}

func (s *Service) buildFragments(doc domain.Document, req Request, contents []string) []domain.Fragment {
	name := req.OriginalName
	if name == "" {
		name = doc.OriginalName
	}
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = doc.MimeType
	}

	createdAt := s.now()
	fragments := make([]domain.Fragment, len(contents))
	for i, content := range contents {
		fragments[i] = domain.Fragment{
			ID:      uuid.NewString(),
			Content: content,
			Metadata: domain.FragmentMetadata{
				DocumentID:    doc.ID,
				OriginalName:  name,
				MimeType:      mimeType,
				FragmentIndex: i,
				FragmentCount: len(contents),
				Length:        len(content),
				CreatedAt:     createdAt,
			},
		}
	}
	return fragments
}

func (s *Service) vectorize(ctx context.Context, fragments []domain.Fragment) ([]index.Entry, error) {
	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Content
	}

	var embeddings [][]float32
	if be, ok := s.embedder.(domain.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return nil, err
		}
		embeddings = res.Embeddings
	} else {
		res, err := domain.BatchFallback(ctx, s.embedder, texts)
		if err != nil {
			return nil, err
		}
		embeddings = res.Embeddings
	}

	if len(embeddings) != len(fragments) {
		return nil, fmt.Errorf("embedding count mismatch: %d fragments, %d vectors: %w",
			len(fragments), len(embeddings), domain.ErrEmbeddingProvider)
	}

	entries := make([]index.Entry, len(fragments))
	for i, f := range fragments {
		vector.Normalize(embeddings[i])
		entries[i] = index.Entry{Fragment: f, Vector: embeddings[i]}
	}
	return entries, nil
}

// Delete removes a document's index entries and its tracker record.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.tracker.Get(ctx, id); err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	removed := s.index.RemoveByDocument(ctx, id)
	if err := s.tracker.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	s.logger.Info("Document deleted",
		zap.String("document_id", id),
		zap.Int("fragments_removed", removed))
	return nil
}
