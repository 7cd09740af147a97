package docquery

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	cacheAddrs    []string
	cachePassword string
	cachePrefix   string

	embedder  Embedder
	generator Generator

	embeddingDimensions int
	chunkSize           int
	chunkOverlap        int

	defaultTopK      int
	maxTopK          int
	defaultThreshold float32

	tikaURL string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedisCache enables a Redis-backed embedding cache. Without it
// every ingest and query embeds from scratch.
func WithRedisCache(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
	})
}

// WithCachePrefix sets the key prefix for cached embeddings.
// Default: "docquery:".
func WithCachePrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cachePrefix = prefix
	})
}

// WithEmbedder sets the text embedding provider. Without it a
// deterministic local hash embedder is used, which retrieves by
// lexical overlap only.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithGenerator sets the answer generator. Without it answers are
// assembled extractively from the retrieved fragments.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithEmbeddingDimensions sets the vector width of the built-in hash
// embedder. Ignored when WithEmbedder is used. Default: 384.
func WithEmbeddingDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embeddingDimensions = dim
	})
}

// WithChunking sets the splitter chunk size and overlap in bytes.
// Defaults: 1000 and 200.
func WithChunking(chunkSize, overlap int) Option {
	return optionFunc(func(c *clientConfig) {
		c.chunkSize = chunkSize
		c.chunkOverlap = overlap
	})
}

// WithRetrieval bounds how many fragments a query retrieves.
// Defaults: 5 and 20.
func WithRetrieval(defaultTopK, maxTopK int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultTopK = defaultTopK
		c.maxTopK = maxTopK
	})
}

// WithSimilarityThreshold sets the minimum cosine similarity for
// retrieved fragments. Default: 0 (no filtering).
func WithSimilarityThreshold(t float32) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultThreshold = t
	})
}

// WithTika points the client at an Apache Tika server for PDF and
// Word extraction. Without it only plain text documents can be
// ingested from raw bytes.
func WithTika(serverURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.tikaURL = serverURL
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
