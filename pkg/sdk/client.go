package docquery

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quarry-labs/docquery/internal/db"
	dbRedis "github.com/quarry-labs/docquery/internal/db/redis"
	"github.com/quarry-labs/docquery/internal/domain"
	"github.com/quarry-labs/docquery/internal/embedding"
	"github.com/quarry-labs/docquery/internal/extract"
	"github.com/quarry-labs/docquery/internal/generation"
	"github.com/quarry-labs/docquery/internal/repository/docs"
	"github.com/quarry-labs/docquery/internal/repository/embcache"
	"github.com/quarry-labs/docquery/internal/repository/index"
	"github.com/quarry-labs/docquery/internal/splitter"
	"github.com/quarry-labs/docquery/internal/transport/tika"
	healthuc "github.com/quarry-labs/docquery/internal/usecase/health"
	ingestuc "github.com/quarry-labs/docquery/internal/usecase/ingest"
	queryuc "github.com/quarry-labs/docquery/internal/usecase/query"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCachePrefix      = "docquery:"
	fallbackSentences       = 3
)

// Internal interfaces for test substitution.
type ingestUseCase interface {
	Ingest(ctx context.Context, req ingestuc.Request) (domain.IngestResult, error)
	Delete(ctx context.Context, id string) error
}

type queryUseCase interface {
	Query(ctx context.Context, req queryuc.Request) (domain.QueryResult, error)
}

type documentTracker interface {
	Create(ctx context.Context, doc domain.Document) (domain.Document, error)
	Get(ctx context.Context, id string) (domain.Document, error)
	List(ctx context.Context) []domain.Document
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the docquery SDK entry point.
type Client struct {
	store     db.Store
	tracker   documentTracker
	ingestSvc ingestUseCase
	querySvc  queryUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a docquery Client. The provided context is used for the
// cache readiness check when WithRedisCache is set.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		embeddingDimensions: embedding.DefaultDimensions,
		chunkSize:           splitter.DefaultChunkSize,
		chunkOverlap:        splitter.DefaultOverlap,
		cachePrefix:         defaultCachePrefix,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	var store db.Store
	if len(cfg.cacheAddrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.cacheAddrs,
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("docquery: create cache store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("docquery: cache not ready: %w", err)
		}
		store = s
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}

	return wireClient(store, cfg, obs)
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	sp, err := splitter.New(cfg.chunkSize, cfg.chunkOverlap)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("docquery: %w", err)
	}

	embedder := buildEmbedder(cfg, store)
	generator := buildGenerator(cfg)

	var extractor domain.TextExtractor
	if cfg.tikaURL != "" {
		extractor = tika.New(&tika.Config{ServerURL: cfg.tikaURL, Logger: zap.NewNop()})
	} else {
		extractor = extract.NewPlain()
	}

	tracker := docs.New()
	ix := index.New()

	nop := zap.NewNop()
	ingestSvc := ingestuc.New(tracker, extractor, sp, embedder, ix, nop)
	querySvc := queryuc.New(embedder, ix, generator, generation.NewExtractive(fallbackSentences), queryuc.Config{
		DefaultTopK:      cfg.defaultTopK,
		MaxTopK:          cfg.maxTopK,
		DefaultThreshold: cfg.defaultThreshold,
	}, nop)

	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(cachePinger, nil, ix)

	return &Client{
		store:     store,
		tracker:   tracker,
		ingestSvc: ingestSvc,
		querySvc:  querySvc,
		healthSvc: healthSvc,
		obs:       obs,
	}, nil
}

func buildEmbedder(cfg *clientConfig, store db.Store) domain.Embedder {
	var base domain.Embedder
	if cfg.embedder != nil {
		base = wrapEmbedder(cfg.embedder)
	} else {
		base = embedding.NewHashEmbedder(cfg.embeddingDimensions)
	}

	if store == nil {
		return base
	}
	return embcache.New(base, store, cfg.cachePrefix, nil, zap.NewNop())
}

func buildGenerator(cfg *clientConfig) domain.AnswerGenerator {
	if cfg.generator != nil {
		return cfg.generator
	}
	return generation.NewExtractive(fallbackSentences)
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks cache connectivity. Returns nil when no cache is configured.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if c.store == nil {
		return nil
	}
	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Documents returns the document management service.
func (c *Client) Documents() *DocumentService {
	return &DocumentService{
		tracker: c.tracker,
		ingest:  c.ingestSvc,
		obs:     c.obs,
	}
}

// Query answers a question against the ingested corpus.
func (c *Client) Query(ctx context.Context, req QueryRequest) (_ Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("query", start, err) }()

	result, err := c.querySvc.Query(ctx, queryuc.Request{
		Query:               req.Query,
		MaxResults:          req.MaxResults,
		SimilarityThreshold: req.SimilarityThreshold,
	})
	if err != nil {
		return Answer{}, fmt.Errorf("query: %w", err)
	}
	return fromQueryResult(result), nil
}

// wrapEmbedder adapts a public Embedder to the internal contract,
// preserving native batch support when present.
func wrapEmbedder(e Embedder) domain.Embedder {
	adapter := &embedderAdapter{inner: e}
	if be, ok := e.(BatchEmbedder); ok {
		return &batchEmbedderAdapter{embedderAdapter: adapter, batch: be}
	}
	return adapter
}

type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

type batchEmbedderAdapter struct {
	*embedderAdapter
	batch BatchEmbedder
}

func (a *batchEmbedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	r, err := a.batch.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
