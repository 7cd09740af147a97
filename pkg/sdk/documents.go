package docquery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quarry-labs/docquery/internal/domain"
	ingestuc "github.com/quarry-labs/docquery/internal/usecase/ingest"
)

// DocumentService manages the document lifecycle.
type DocumentService struct {
	tracker documentTracker
	ingest  ingestUseCase
	obs     *observer
}

// Register creates a document record in the uploaded state.
// The returned Document carries the generated ID used for ingestion.
func (s *DocumentService) Register(ctx context.Context, originalName, mimeType string) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.register", start, err) }()

	if !domain.IsSupportedMimeType(mimeType) {
		return Document{}, fmt.Errorf("register: mime type %q: %w", mimeType, domain.ErrUnsupportedFormat)
	}

	doc, err := s.tracker.Create(ctx, domain.Document{
		ID:           uuid.NewString(),
		OriginalName: originalName,
		MimeType:     mimeType,
	})
	if err != nil {
		return Document{}, fmt.Errorf("register: %w", err)
	}
	return fromInternalDocument(doc), nil
}

// IngestText runs the pipeline over already extracted text.
// If the document was not registered first, it is created on the fly.
func (s *DocumentService) IngestText(ctx context.Context, id, text string) (_ IngestResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.ingest", start, err) }()

	result, err := s.ingest.Ingest(ctx, ingestuc.Request{
		DocumentID: id,
		MimeType:   "text/plain",
		RawText:    text,
	})
	if err != nil {
		return IngestResult{}, fmt.Errorf("ingest text: %w", err)
	}
	return fromIngestResult(result), nil
}

// IngestBytes runs the pipeline over raw document bytes. Text is
// extracted according to the document's registered mime type.
func (s *DocumentService) IngestBytes(ctx context.Context, id string, data []byte) (_ IngestResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.ingest", start, err) }()

	doc, err := s.tracker.Get(ctx, id)
	if err != nil {
		return IngestResult{}, fmt.Errorf("ingest bytes: %w", err)
	}

	result, err := s.ingest.Ingest(ctx, ingestuc.Request{
		DocumentID:   id,
		OriginalName: doc.OriginalName,
		MimeType:     doc.MimeType,
		Data:         data,
	})
	if err != nil {
		return IngestResult{}, fmt.Errorf("ingest bytes: %w", err)
	}
	return fromIngestResult(result), nil
}

// Get retrieves a document record by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.get", start, err) }()

	doc, err := s.tracker.Get(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(doc), nil
}

// List returns all tracked documents.
func (s *DocumentService) List(ctx context.Context) []Document {
	start := time.Now()
	defer func() { s.obs.observe("document.list", start, nil) }()

	docs := s.tracker.List(ctx)
	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = fromInternalDocument(d)
	}
	return out
}

// Delete removes a document and all its index entries.
func (s *DocumentService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.delete", start, err) }()

	if err = s.ingest.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func fromInternalDocument(d domain.Document) Document {
	return Document{
		ID:            d.ID,
		OriginalName:  d.OriginalName,
		MimeType:      d.MimeType,
		Size:          d.Size,
		UploadedAt:    d.UploadedAt,
		Status:        DocumentStatus(d.Status),
		Stage:         string(d.Stage),
		ProcessedAt:   d.ProcessedAt,
		FragmentCount: d.FragmentCount,
		TextLength:    d.TextLength,
		Vectorized:    d.Vectorized,
		Err:           d.Err,
	}
}

func fromIngestResult(r domain.IngestResult) IngestResult {
	return IngestResult{
		FragmentCount: r.FragmentCount,
		TextLength:    r.TextLength,
	}
}

func fromQueryResult(r domain.QueryResult) Answer {
	sources := make([]Citation, len(r.Sources))
	for i, c := range r.Sources {
		sources[i] = Citation{
			SourceNumber: c.SourceNumber,
			FragmentID:   c.FragmentID,
			DocumentID:   c.DocumentID,
			DocumentName: c.DocumentName,
			Similarity:   c.Similarity,
			Excerpt:      c.Excerpt,
			Implicit:     c.Implicit,
		}
	}
	snippets := make([]Snippet, len(r.Context))
	for i, s := range r.Context {
		snippets[i] = Snippet{
			FragmentID:    s.FragmentID,
			Content:       s.Content,
			Similarity:    s.Similarity,
			DocumentID:    s.DocumentID,
			OriginalName:  s.OriginalName,
			FragmentIndex: s.FragmentIndex,
		}
	}
	return Answer{
		Answer:     r.Answer,
		Sources:    sources,
		Context:    snippets,
		Confidence: r.Confidence,
		Degraded:   r.Degraded,
	}
}
