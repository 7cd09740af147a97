package docquery

import "github.com/quarry-labs/docquery/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyQuery            = domain.ErrEmptyQuery
	ErrEmptyContent          = domain.ErrEmptyContent
	ErrInvalidChunking       = domain.ErrInvalidChunking
	ErrVectorDimMismatch     = domain.ErrVectorDimMismatch
	ErrDocumentNotFound      = domain.ErrDocumentNotFound
	ErrAlreadyProcessed      = domain.ErrAlreadyProcessed
	ErrUnsupportedFormat     = domain.ErrUnsupportedFormat
	ErrExtractionFailed      = domain.ErrExtractionFailed
	ErrEmbeddingProvider     = domain.ErrEmbeddingProvider
	ErrGenerationAuth        = domain.ErrGenerationAuth
	ErrGenerationRateLimited = domain.ErrGenerationRateLimited
	ErrGenerationUnavailable = domain.ErrGenerationUnavailable
	ErrGenerationProvider    = domain.ErrGenerationProvider
)
