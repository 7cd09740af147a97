package domain

import "errors"

var (
	// ErrEmptyQuery signals a blank query string.
	ErrEmptyQuery = errors.New("empty query")
	// ErrEmptyBatch signals an index insertion with no entries.
	ErrEmptyBatch = errors.New("empty batch")
	// ErrEmptyContent signals text with no splittable content.
	ErrEmptyContent = errors.New("empty content")
	// ErrInvalidChunking signals a bad splitter configuration.
	ErrInvalidChunking = errors.New("invalid chunking configuration")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")

	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrAlreadyProcessed signals a re-ingestion attempt for a vectorized document.
	ErrAlreadyProcessed = errors.New("document already processed")
	// ErrInvalidTransition signals a lifecycle stage transition outside the table.
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrUnsupportedFormat signals an unrecognized document mime type.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrExtractionFailed signals a text extraction parser failure.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrGenerationAuth signals rejected provider credentials. Never retried.
	ErrGenerationAuth = errors.New("answer provider authentication failed")
	// ErrGenerationRateLimited signals a provider rate limit. Retry with backoff.
	ErrGenerationRateLimited = errors.New("answer provider rate limited")
	// ErrGenerationUnavailable signals transient provider overload.
	// The orchestrator may downgrade this to a degraded answer.
	ErrGenerationUnavailable = errors.New("answer provider unavailable")
	// ErrGenerationProvider signals any other answer provider failure.
	ErrGenerationProvider = errors.New("answer provider error")
)
