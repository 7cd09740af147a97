// Package docs implements the document lifecycle tracker. Records live
// in process memory: durable storage is out of scope, the tracker only
// has to survive as long as the index it describes.
package docs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/quarry-labs/docquery/internal/domain"
)

// Tracker owns document metadata and status transitions.
type Tracker struct {
	mu   sync.Mutex
	docs map[string]*domain.Document
	now  func() time.Time
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{
		docs: make(map[string]*domain.Document),
		now:  time.Now,
	}
}

// Create registers a document in stage saved.
func (t *Tracker) Create(_ context.Context, doc domain.Document) (domain.Document, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.docs[doc.ID]; ok {
		return domain.Document{}, fmt.Errorf("document %s: %w", doc.ID, domain.ErrAlreadyProcessed)
	}

	doc.UploadedAt = t.now()
	doc.Status = domain.StatusUploaded
	doc.Stage = domain.StageSaved
	stored := doc
	t.docs[doc.ID] = &stored
	return doc, nil
}

// Get returns a copy of the document record.
func (t *Tracker) Get(_ context.Context, id string) (domain.Document, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, ok := t.docs[id]
	if !ok {
		return domain.Document{}, fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	return *doc, nil
}

// List returns all documents ordered by upload time.
func (t *Tracker) List(_ context.Context) []domain.Document {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.Document, 0, len(t.docs))
	for _, doc := range t.docs {
		out = append(out, *doc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out
}

// BeginProcessing atomically claims a document for the ingest pipeline.
// A document that is already vectorized, mid-pipeline, or completed is
// rejected with ErrAlreadyProcessed; concurrent claims for the same id
// cannot both succeed.
func (t *Tracker) BeginProcessing(_ context.Context, id string) (domain.Document, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, ok := t.docs[id]
	if !ok {
		return domain.Document{}, fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	if doc.Vectorized || doc.Status == domain.StatusProcessing || doc.Stage == domain.StageCompleted {
		return domain.Document{}, fmt.Errorf("document %s: %w", id, domain.ErrAlreadyProcessed)
	}

	doc.Status = domain.StatusProcessing
	doc.Stage = domain.StageSaved
	doc.Err = ""
	return *doc, nil
}

// Advance moves a document to the next lifecycle stage, validated
// against the transition table.
func (t *Tracker) Advance(_ context.Context, id string, to domain.Stage) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, ok := t.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}

	next, err := domain.Transition(doc.Stage, to)
	if err != nil {
		return fmt.Errorf("advance document %s: %w", id, err)
	}
	doc.Stage = next
	return nil
}

// Complete marks a document fully processed and searchable.
func (t *Tracker) Complete(_ context.Context, id string, fragmentIDs []string, textLength int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, ok := t.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}

	next, err := domain.Transition(doc.Stage, domain.StageCompleted)
	if err != nil {
		return fmt.Errorf("complete document %s: %w", id, err)
	}

	processedAt := t.now()
	doc.Stage = next
	doc.Status = domain.StatusProcessed
	doc.ProcessedAt = &processedAt
	doc.FragmentIDs = append([]string(nil), fragmentIDs...)
	doc.FragmentCount = len(fragmentIDs)
	doc.TextLength = textLength
	doc.Vectorized = true
	return nil
}

// MarkFailed records a pipeline failure. The stage moves to failed
// regardless of where the pipeline stopped.
func (t *Tracker) MarkFailed(_ context.Context, id string, cause error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, ok := t.docs[id]
	if !ok {
		return
	}

	doc.Status = domain.StatusError
	doc.Stage = domain.StageFailed
	if cause != nil {
		doc.Err = cause.Error()
	}
}

// Delete removes a document record.
func (t *Tracker) Delete(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.docs[id]; !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	delete(t.docs, id)
	return nil
}
