package docs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/quarry-labs/docquery/internal/domain"
)

func newDoc(id string) domain.Document {
	return domain.Document{
		ID:           id,
		OriginalName: id + ".txt",
		MimeType:     "text/plain",
	}
}

func TestCreateAndGet(t *testing.T) {
	tr := New()
	ctx := context.Background()

	created, err := tr.Create(ctx, newDoc("d1"))
	if err != nil {
		t.Fatal(err)
	}
	if created.Stage != domain.StageSaved || created.Status != domain.StatusUploaded {
		t.Errorf("new document stage/status = %s/%s", created.Stage, created.Status)
	}

	got, err := tr.Get(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if got.OriginalName != "d1.txt" {
		t.Errorf("OriginalName = %q", got.OriginalName)
	}
}

func TestGet_NotFound(t *testing.T) {
	tr := New()
	if _, err := tr.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("err = %v, want ErrDocumentNotFound", err)
	}
}

func TestBeginProcessing_RejectsVectorized(t *testing.T) {
	tr := New()
	ctx := context.Background()

	if _, err := tr.Create(ctx, newDoc("d1")); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.BeginProcessing(ctx, "d1"); err != nil {
		t.Fatal(err)
	}

	for _, stage := range []domain.Stage{
		domain.StageTextExtracted, domain.StageChunked, domain.StageVectorizing,
	} {
		if err := tr.Advance(ctx, "d1", stage); err != nil {
			t.Fatal(err)
		}
	}
	if err := tr.Complete(ctx, "d1", []string{"f1", "f2"}, 42); err != nil {
		t.Fatal(err)
	}

	if _, err := tr.BeginProcessing(ctx, "d1"); !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Errorf("err = %v, want ErrAlreadyProcessed", err)
	}
}

func TestBeginProcessing_RejectsConcurrentClaim(t *testing.T) {
	tr := New()
	ctx := context.Background()

	if _, err := tr.Create(ctx, newDoc("d1")); err != nil {
		t.Fatal(err)
	}

	const claimers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	won := 0

	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tr.BeginProcessing(ctx, "d1"); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if won != 1 {
		t.Errorf("%d concurrent claims succeeded, want exactly 1", won)
	}
}

func TestAdvance_InvalidTransition(t *testing.T) {
	tr := New()
	ctx := context.Background()

	if _, err := tr.Create(ctx, newDoc("d1")); err != nil {
		t.Fatal(err)
	}
	err := tr.Advance(ctx, "d1", domain.StageVectorizing)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestComplete_SetsProcessedFields(t *testing.T) {
	tr := New()
	ctx := context.Background()

	if _, err := tr.Create(ctx, newDoc("d1")); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.BeginProcessing(ctx, "d1"); err != nil {
		t.Fatal(err)
	}
	for _, stage := range []domain.Stage{
		domain.StageTextExtracted, domain.StageChunked, domain.StageVectorizing,
	} {
		if err := tr.Advance(ctx, "d1", stage); err != nil {
			t.Fatal(err)
		}
	}
	if err := tr.Complete(ctx, "d1", []string{"f1", "f2", "f3"}, 1234); err != nil {
		t.Fatal(err)
	}

	doc, _ := tr.Get(ctx, "d1")
	if !doc.Vectorized || doc.Status != domain.StatusProcessed {
		t.Errorf("status = %s vectorized = %v", doc.Status, doc.Vectorized)
	}
	if doc.FragmentCount != 3 || doc.TextLength != 1234 {
		t.Errorf("FragmentCount = %d TextLength = %d", doc.FragmentCount, doc.TextLength)
	}
	if doc.ProcessedAt == nil {
		t.Error("ProcessedAt not set")
	}
}

func TestMarkFailed(t *testing.T) {
	tr := New()
	ctx := context.Background()

	if _, err := tr.Create(ctx, newDoc("d1")); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.BeginProcessing(ctx, "d1"); err != nil {
		t.Fatal(err)
	}
	tr.MarkFailed(ctx, "d1", errors.New("extraction exploded"))

	doc, _ := tr.Get(ctx, "d1")
	if doc.Stage != domain.StageFailed || doc.Status != domain.StatusError {
		t.Errorf("stage/status = %s/%s, want failed/error", doc.Stage, doc.Status)
	}
	if doc.Err == "" {
		t.Error("failure cause not recorded")
	}

	// A failed document may be retried.
	if _, err := tr.BeginProcessing(ctx, "d1"); err != nil {
		t.Errorf("retry after failure rejected: %v", err)
	}
}

func TestDelete(t *testing.T) {
	tr := New()
	ctx := context.Background()

	if _, err := tr.Create(ctx, newDoc("d1")); err != nil {
		t.Fatal(err)
	}
	if err := tr.Delete(ctx, "d1"); err != nil {
		t.Fatal(err)
	}
	if err := tr.Delete(ctx, "d1"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("second delete err = %v, want ErrDocumentNotFound", err)
	}
}

func TestList_OrderedByUpload(t *testing.T) {
	tr := New()
	ctx := context.Background()

	for _, id := range []string{"b", "a", "c"} {
		if _, err := tr.Create(ctx, newDoc(id)); err != nil {
			t.Fatal(err)
		}
	}

	list := tr.List(ctx)
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
}
