package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/quarry-labs/docquery/internal/domain"
)

func TestPlainExtractor(t *testing.T) {
	e := NewPlain()
	ctx := context.Background()

	t.Run("plain text passes through", func(t *testing.T) {
		text, err := e.Extract(ctx, []byte("hello world"), "text/plain")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text != "hello world" {
			t.Errorf("unexpected text: %q", text)
		}
	})

	t.Run("pdf needs tika", func(t *testing.T) {
		_, err := e.Extract(ctx, []byte("%PDF"), "application/pdf")
		if !errors.Is(err, domain.ErrExtractionFailed) {
			t.Errorf("expected ErrExtractionFailed, got %v", err)
		}
	})

	t.Run("unknown mime type rejected", func(t *testing.T) {
		_, err := e.Extract(ctx, []byte("x"), "image/png")
		if !errors.Is(err, domain.ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})
}
