// Package tika extracts plain text from binary documents via an Apache
// Tika server.
package tika

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quarry-labs/docquery/internal/domain"
)

// Extractor calls a Tika server's /tika endpoint.
type Extractor struct {
	serverURL string
	client    *http.Client
	logger    *zap.Logger
}

// Config holds the Tika client settings.
type Config struct {
	ServerURL string
	Timeout   time.Duration
	Logger    *zap.Logger
}

// New creates a Tika-backed extractor.
func New(cfg *Config) *Extractor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Extractor{
		serverURL: strings.TrimRight(cfg.ServerURL, "/"),
		client:    &http.Client{Timeout: timeout},
		logger:    cfg.Logger,
	}
}

// Extract implements domain.TextExtractor. Rejects unsupported mime types
// before touching the network.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType string) (string, error) {
	if !domain.IsSupportedMimeType(mimeType) {
		return "", fmt.Errorf("mime type %q: %w", mimeType, domain.ErrUnsupportedFormat)
	}

	// Plain text needs no Tika round trip.
	if mimeType == "text/plain" {
		return string(data), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.serverURL+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create tika request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Content-Type", mimeType)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call tika: %v: %w", err, domain.ErrExtractionFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		e.logger.Warn("Tika returned non-OK status",
			zap.Int("status", resp.StatusCode),
			zap.String("mime_type", mimeType))
		return "", fmt.Errorf("tika status %d: %s: %w", resp.StatusCode, string(body), domain.ErrExtractionFailed)
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read tika response: %v: %w", err, domain.ErrExtractionFailed)
	}

	return string(text), nil
}
