// Package index implements the in-memory vector index. Brute-force
// linear scan by design: the corpus regime is small and the ordering
// and threshold semantics must stay exact.
package index

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/quarry-labs/docquery/internal/domain"
	"github.com/quarry-labs/docquery/internal/vector"
)

// Entry pairs a fragment with its embedding for insertion.
type Entry struct {
	Fragment domain.Fragment
	Vector   []float32
}

// Index stores (id, vector, fragment) tuples in parallel slices.
// Searches take the read lock; Add and RemoveByDocument serialize
// behind the write lock so partial writes can never interleave.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	ids        []string
	vectors    [][]float32
	fragments  []domain.Fragment

	sizeGauge prometheus.Gauge
}

// New creates an empty index. The dimensionality is pinned by the
// first inserted batch.
func New() *Index {
	return &Index{}
}

// WithSizeGauge wires a gauge tracking the current entry count.
func (ix *Index) WithSizeGauge(g prometheus.Gauge) *Index {
	ix.sizeGauge = g
	return ix
}

// Add inserts entries and makes them immediately searchable.
// Returns the number inserted.
func (ix *Index) Add(_ context.Context, entries []Entry) (int, error) {
	if len(entries) == 0 {
		return 0, fmt.Errorf("no entries to index: %w", domain.ErrEmptyBatch)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.dimensions == 0 {
		ix.dimensions = len(entries[0].Vector)
	}
	for _, e := range entries {
		if len(e.Vector) != ix.dimensions {
			return 0, fmt.Errorf("entry %s has %d dimensions, index has %d: %w",
				e.Fragment.ID, len(e.Vector), ix.dimensions, domain.ErrVectorDimMismatch)
		}
	}

	for _, e := range entries {
		ix.ids = append(ix.ids, e.Fragment.ID)
		ix.vectors = append(ix.vectors, e.Vector)
		ix.fragments = append(ix.fragments, e.Fragment)
	}

	ix.reportSize()
	return len(entries), nil
}

// Search scores every stored vector against query by cosine similarity,
// filters below threshold, and returns at most topK results ordered by
// descending similarity. Ties keep insertion order. An empty index
// yields an empty result, never an error.
func (ix *Index) Search(_ context.Context, query []float32, topK int, threshold float32) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	type scored struct {
		pos int
		sim float32
	}
	matches := make([]scored, 0, len(ix.vectors))
	for i, v := range ix.vectors {
		sim := vector.Cosine(query, v)
		if sim >= threshold {
			matches = append(matches, scored{pos: i, sim: sim})
		}
	}

	// Stable sort preserves insertion order among equal similarities.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].sim > matches[j].sim
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}

	results := make([]domain.SearchResult, len(matches))
	for i, m := range matches {
		results[i] = domain.SearchResult{
			Fragment:   ix.fragments[m.pos],
			Similarity: m.sim,
			Distance:   1 - m.sim,
		}
	}
	return results, nil
}

// RemoveByDocument drops every entry whose fragment belongs to the
// document. Removing an unknown document is a no-op.
func (ix *Index) RemoveByDocument(_ context.Context, documentID string) int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	kept := 0
	for i := range ix.ids {
		if ix.fragments[i].Metadata.DocumentID == documentID {
			continue
		}
		ix.ids[kept] = ix.ids[i]
		ix.vectors[kept] = ix.vectors[i]
		ix.fragments[kept] = ix.fragments[i]
		kept++
	}

	removed := len(ix.ids) - kept
	ix.ids = ix.ids[:kept]
	ix.vectors = ix.vectors[:kept]
	ix.fragments = ix.fragments[:kept]

	if removed > 0 {
		ix.reportSize()
	}
	return removed
}

// Count returns the current number of entries.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.ids)
}

func (ix *Index) reportSize() {
	if ix.sizeGauge != nil {
		ix.sizeGauge.Set(float64(len(ix.ids)))
	}
}
