// Package extract provides a text extractor for deployments without a
// Tika server. Only plain text passes through; binary formats need Tika.
package extract

import (
	"context"
	"fmt"

	"github.com/quarry-labs/docquery/internal/domain"
)

// PlainExtractor handles text/plain uploads without external services.
type PlainExtractor struct{}

// NewPlain creates a plain-text-only extractor.
func NewPlain() *PlainExtractor {
	return &PlainExtractor{}
}

// Extract implements domain.TextExtractor.
func (e *PlainExtractor) Extract(_ context.Context, data []byte, mimeType string) (string, error) {
	if !domain.IsSupportedMimeType(mimeType) {
		return "", fmt.Errorf("mime type %q: %w", mimeType, domain.ErrUnsupportedFormat)
	}
	if mimeType != "text/plain" {
		return "", fmt.Errorf("mime type %q requires a tika server: %w", mimeType, domain.ErrExtractionFailed)
	}
	return string(data), nil
}
