package index

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/quarry-labs/docquery/internal/domain"
)

func entry(id, docID string, vec []float32) Entry {
	return Entry{
		Fragment: domain.Fragment{
			ID:      id,
			Content: "content of " + id,
			Metadata: domain.FragmentMetadata{
				DocumentID: docID,
			},
		},
		Vector: vec,
	}
}

func TestAdd_EmptyBatch(t *testing.T) {
	ix := New()
	if _, err := ix.Add(context.Background(), nil); !errors.Is(err, domain.ErrEmptyBatch) {
		t.Errorf("Add(nil): err = %v, want ErrEmptyBatch", err)
	}
}

func TestAdd_DimensionMismatch(t *testing.T) {
	ix := New()
	ctx := context.Background()

	if _, err := ix.Add(ctx, []Entry{entry("a", "doc", []float32{1, 0, 0})}); err != nil {
		t.Fatal(err)
	}
	_, err := ix.Add(ctx, []Entry{entry("b", "doc", []float32{1, 0})})
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("err = %v, want ErrVectorDimMismatch", err)
	}
	if ix.Count() != 1 {
		t.Errorf("count = %d after failed add, want 1", ix.Count())
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	ix := New()
	results, err := ix.Search(context.Background(), []float32{1, 0}, 5, 0)
	if err != nil {
		t.Fatalf("empty index search must not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %d, want 0", len(results))
	}
}

func TestSearch_OrderingThresholdTopK(t *testing.T) {
	ix := New()
	ctx := context.Background()

	// Unit vectors at known angles to the query [1, 0]:
	// a ~0.9, b ~0.5, c ~0.1 similarity.
	_, err := ix.Add(ctx, []Entry{
		entry("a", "doc", []float32{0.9, 0.43589}),
		entry("b", "doc", []float32{0.5, 0.86603}),
		entry("c", "doc", []float32{0.1, 0.99499}),
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := ix.Search(ctx, []float32{1, 0}, 2, 0.3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want exactly 2", len(results))
	}
	if results[0].Fragment.ID != "a" || results[1].Fragment.ID != "b" {
		t.Errorf("result order = [%s %s], want [a b]", results[0].Fragment.ID, results[1].Fragment.ID)
	}
	if results[0].Similarity < results[1].Similarity {
		t.Error("similarities not descending")
	}
	for _, r := range results {
		if r.Similarity < 0.3 {
			t.Errorf("result %s below threshold: %v", r.Fragment.ID, r.Similarity)
		}
		if got := r.Distance; got != 1-r.Similarity {
			t.Errorf("distance = %v, want 1-similarity", got)
		}
	}
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	ix := New()
	ctx := context.Background()

	same := []float32{0.6, 0.8}
	_, err := ix.Add(ctx, []Entry{
		entry("first", "doc", same),
		entry("second", "doc", same),
		entry("third", "doc", same),
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := ix.Search(ctx, []float32{0.6, 0.8}, 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "second", "third"}
	for i, id := range want {
		if results[i].Fragment.ID != id {
			t.Errorf("results[%d] = %s, want %s (insertion order on ties)", i, results[i].Fragment.ID, id)
		}
	}
}

func TestSearch_IdenticalVectorRanksFirstWithFullSimilarity(t *testing.T) {
	ix := New()
	ctx := context.Background()

	target := []float32{0.26726, 0.53452, 0.80178}
	_, err := ix.Add(ctx, []Entry{
		entry("other", "doc", []float32{0.80178, 0.53452, 0.26726}),
		entry("target", "doc", target),
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := ix.Search(ctx, target, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Fragment.ID != "target" {
		t.Fatalf("top result = %s, want target", results[0].Fragment.ID)
	}
	if results[0].Similarity != 1.0 {
		t.Errorf("self similarity = %v, want exactly 1.0", results[0].Similarity)
	}
}

func TestRemoveByDocument(t *testing.T) {
	ix := New()
	ctx := context.Background()

	_, err := ix.Add(ctx, []Entry{
		entry("a1", "doc-a", []float32{1, 0}),
		entry("b1", "doc-b", []float32{0, 1}),
		entry("a2", "doc-a", []float32{1, 1}),
	})
	if err != nil {
		t.Fatal(err)
	}

	if removed := ix.RemoveByDocument(ctx, "doc-a"); removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if ix.Count() != 1 {
		t.Errorf("count = %d, want 1", ix.Count())
	}

	// Unknown document is a no-op, not an error.
	if removed := ix.RemoveByDocument(ctx, "doc-missing"); removed != 0 {
		t.Errorf("removed = %d for unknown document, want 0", removed)
	}

	results, err := ix.Search(ctx, []float32{0, 1}, 5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Fragment.ID != "b1" {
		t.Errorf("surviving entry = %v, want b1", results)
	}
}

func TestIndex_ConcurrentSearchDuringWrites(t *testing.T) {
	ix := New()
	ctx := context.Background()

	if _, err := ix.Add(ctx, []Entry{entry("seed", "doc-0", []float32{1, 0})}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, _ = ix.Add(ctx, []Entry{entry("w", "doc-w", []float32{0, 1})})
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if _, err := ix.Search(ctx, []float32{1, 0}, 3, 0); err != nil {
					t.Errorf("concurrent search: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if got := ix.Count(); got != 1+4*50 {
		t.Errorf("count = %d, want %d", got, 1+4*50)
	}
}
