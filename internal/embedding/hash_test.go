package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/quarry-labs/docquery/internal/vector"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(0)
	ctx := context.Background()

	first, err := e.Embed(ctx, "the quick brown fox")
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Embed(ctx, "the quick brown fox")
	if err != nil {
		t.Fatal(err)
	}

	if len(first.Embedding) != len(second.Embedding) {
		t.Fatalf("dimension changed between calls: %d vs %d", len(first.Embedding), len(second.Embedding))
	}
	for i := range first.Embedding {
		if first.Embedding[i] != second.Embedding[i] {
			t.Fatalf("embed not deterministic at index %d: %v vs %v",
				i, first.Embedding[i], second.Embedding[i])
		}
	}
}

func TestHashEmbedder_DefaultDimensions(t *testing.T) {
	e := NewHashEmbedder(0)
	res, err := e.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Embedding) != DefaultDimensions {
		t.Errorf("dimensions = %d, want %d", len(res.Embedding), DefaultDimensions)
	}
}

func TestHashEmbedder_Normalized(t *testing.T) {
	e := NewHashEmbedder(64)
	res, err := e.Embed(context.Background(), "normalization keeps vectors comparable across documents")
	if err != nil {
		t.Fatal(err)
	}
	if n := vector.Norm(res.Embedding); math.Abs(n-1) > 1e-5 {
		t.Errorf("norm = %v, want 1", n)
	}
}

func TestHashEmbedder_EmptyTextYieldsZeroVector(t *testing.T) {
	e := NewHashEmbedder(16)
	res, err := e.Embed(context.Background(), "   ")
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range res.Embedding {
		if v != 0 {
			t.Fatalf("zero-token text produced non-zero component at %d: %v", i, v)
		}
	}
}

func TestHashEmbedder_CaseInsensitiveTokens(t *testing.T) {
	e := NewHashEmbedder(128)
	ctx := context.Background()

	a, _ := e.Embed(ctx, "Retrieval Augmented Generation")
	b, _ := e.Embed(ctx, "retrieval augmented generation")

	for i := range a.Embedding {
		if a.Embedding[i] != b.Embedding[i] {
			t.Fatalf("case should not change the embedding (index %d)", i)
		}
	}
}

func TestHashEmbedder_DifferentTextsDiffer(t *testing.T) {
	e := NewHashEmbedder(384)
	ctx := context.Background()

	a, _ := e.Embed(ctx, "cats purr on warm windowsills")
	b, _ := e.Embed(ctx, "distributed consensus requires quorum")

	if sim := vector.Cosine(a.Embedding, b.Embedding); sim > 0.99 {
		t.Errorf("unrelated texts nearly identical: similarity %v", sim)
	}
}

func TestHashEmbedder_BatchMatchesSingle(t *testing.T) {
	e := NewHashEmbedder(64)
	ctx := context.Background()

	texts := []string{"first fragment", "second fragment"}
	batch, err := e.BatchEmbed(ctx, texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Embeddings) != 2 {
		t.Fatalf("batch size = %d, want 2", len(batch.Embeddings))
	}

	for i, text := range texts {
		single, _ := e.Embed(ctx, text)
		for j := range single.Embedding {
			if batch.Embeddings[i][j] != single.Embedding[j] {
				t.Fatalf("batch[%d] differs from single embed at %d", i, j)
			}
		}
	}
}
