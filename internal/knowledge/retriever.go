package knowledge

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/verdanthealth/medguard/internal/embeddings"
	"github.com/verdanthealth/medguard/internal/logging"
)

// NoKnowledgeSentinel is returned for every query when the store is
// unavailable or empty. Callers treat it as valid, empty context.
const NoKnowledgeSentinel = "No knowledge base available."

var retrieverTracer = otel.Tracer("medguard.knowledge.retriever")

// Retriever answers queries against a loaded store. It never fails at
// call time: every failure path degrades to NoKnowledgeSentinel.
//
// A Retriever is safe for concurrent use; the store is read-only.
type Retriever struct {
	store    *Store
	embedder embeddings.Embedder
	logger   *logging.Logger
	metrics  *Metrics
}

// NewRetriever creates a Retriever over an already-loaded store. A nil
// store produces a permanently degraded retriever.
func NewRetriever(store *Store, embedder embeddings.Embedder, logger *logging.Logger) *Retriever {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Named("retriever")
	return &Retriever{
		store:    store,
		embedder: embedder,
		logger:   logger,
		metrics:  NewMetrics(logger.Underlying()),
	}
}

// OpenRetriever loads the store from dir and wraps it in a Retriever.
// A store that cannot be loaded (absent, corrupt, or misaligned) is
// logged at error level and yields a degraded retriever, never an
// error: the serving process starts regardless.
func OpenRetriever(ctx context.Context, dir string, embedder embeddings.Embedder, logger *logging.Logger) *Retriever {
	if logger == nil {
		logger = logging.NewNop()
	}

	store, err := LoadStore(dir)
	if err != nil {
		logger.Named("retriever").Error(ctx, "knowledge store unavailable, retrieval degraded",
			zap.String("dir", dir),
			zap.Error(err),
		)
		return NewRetriever(nil, embedder, logger)
	}

	logger.Named("retriever").Info(ctx, "knowledge store loaded",
		zap.String("dir", dir),
		zap.String("build_id", store.BuildID()),
		zap.Int("chunks", store.Len()),
	)
	return NewRetriever(store, embedder, logger)
}

// Degraded reports whether the retriever is serving the sentinel for
// every query because no store could be loaded.
func (r *Retriever) Degraded() bool { return r.store == nil }

// Retrieve embeds the query, finds the topK nearest chunks, and
// returns their contents joined most-similar-first with a paragraph
// break. The caller's context bounds the embedding sub-call; on
// timeout or any embedding failure the sentinel is returned.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) string {
	ctx, span := retrieverTracer.Start(ctx, "knowledge.retrieve")
	defer span.End()
	span.SetAttributes(attribute.Int("top_k", topK))
	start := time.Now()

	if r.store == nil || r.store.Len() == 0 {
		r.metrics.RecordRetrieve(ctx, time.Since(start), "degraded")
		span.SetAttributes(attribute.String("outcome", "degraded"))
		return NoKnowledgeSentinel
	}

	queryVec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		r.logger.Warn(ctx, "query embedding failed, returning degraded result", zap.Error(err))
		r.metrics.RecordRetrieve(ctx, time.Since(start), "embed_error")
		span.RecordError(err)
		return NoKnowledgeSentinel
	}

	var contents []string
	for _, idx := range r.store.Search(queryVec, topK) {
		if idx < 0 || idx >= r.store.Len() {
			continue
		}
		contents = append(contents, r.store.Chunk(idx).Content)
	}
	if len(contents) == 0 {
		r.metrics.RecordRetrieve(ctx, time.Since(start), "empty")
		return NoKnowledgeSentinel
	}

	r.metrics.RecordRetrieve(ctx, time.Since(start), "ok")
	span.SetAttributes(attribute.Int("results", len(contents)))
	return strings.Join(contents, "\n\n")
}
